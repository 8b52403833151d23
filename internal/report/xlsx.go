// Package report renders stored schedules into XLSX and CSV artefacts.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vkarev/rotagen/internal/engine"
)

// cellLook is the fill/font pair of one shift code family.
type cellLook struct {
	fill      string
	fontColor string
}

// lookFor returns the rendering rules: office B text is red, nights grey,
// morning shorts blue, evening shorts green, the N8 carry black with white
// text, vacations orange.
func lookFor(code engine.Code) cellLook {
	look := cellLook{fontColor: "000000"}
	if code.Office() == engine.OfficeB {
		look.fontColor = "FF0000"
	}
	switch {
	case code == engine.CodeNA || code == engine.CodeNB || code.IsSplitTail():
		look.fill = "DDDDDD"
	case code == engine.CodeM8A || code == engine.CodeM8B:
		look.fill = "00BFFF"
	case code == engine.CodeE8A || code == engine.CodeE8B:
		look.fill = "00FF00"
	case code.IsSplitCarry():
		look.fill = "000000"
		if code.Office() == engine.OfficeA {
			look.fontColor = "FFFFFF"
		}
	case code == engine.CodeVAC8 || code == engine.CodeVAC0:
		look.fill = "FEC97F"
		look.fontColor = "000000"
	case code == engine.CodeOFF:
		look.fontColor = "E2F0D9"
	}
	return look
}

// WriteWorkbook writes the employees-by-days grid as a styled XLSX sheet.
// Weekend and calendar-off columns get a light green background.
func WriteWorkbook(w io.Writer, yearMonth string, employees []engine.Employee, s *engine.Schedule, cal engine.WorkCalendar) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, yearMonth); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	sheet = yearMonth

	days := s.Days()
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	cell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := f.SetCellValue(sheet, cell, "Сотрудник"); err != nil {
		return err
	}
	for i, d := range days {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		if err := f.SetCellValue(sheet, cell, d.Day()); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheet, cell, cell, header)
	}
	totalCol := len(days) + 2
	cell, _ = excelize.CoordinatesToCellName(totalCol, 1)
	if err := f.SetCellValue(sheet, cell, "Часы"); err != nil {
		return err
	}
	_ = f.SetCellStyle(sheet, cell, cell, header)

	styleCache := make(map[string]int)
	styleOf := func(code engine.Code, offDay bool) (int, error) {
		look := lookFor(code)
		fill := look.fill
		if fill == "" && offDay {
			fill = "E2F0D9"
		}
		key := fill + "/" + look.fontColor
		if id, ok := styleCache[key]; ok {
			return id, nil
		}
		style := &excelize.Style{
			Font:      &excelize.Font{Color: look.fontColor},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border: []excelize.Border{
				{Type: "left", Color: "DDDDDD", Style: 1},
				{Type: "right", Color: "DDDDDD", Style: 1},
				{Type: "top", Color: "DDDDDD", Style: 1},
				{Type: "bottom", Color: "DDDDDD", Style: 1},
			},
		}
		if fill != "" {
			style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}}
		}
		id, err := f.NewStyle(style)
		if err != nil {
			return 0, err
		}
		styleCache[key] = id
		return id, nil
	}

	isOffDay := func(d time.Time) bool {
		if cal != nil {
			return cal.AllowsShortening(d)
		}
		wd := d.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	}

	for rowIdx, e := range employees {
		nameCell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetCellValue(sheet, nameCell, fmt.Sprintf("%s — %s", e.ID, e.Name)); err != nil {
			return err
		}
		for colIdx, d := range days {
			code := s.CodeOn(e.ID, d)
			cell, _ := excelize.CoordinatesToCellName(colIdx+2, rowIdx+2)
			value := string(code)
			if code == engine.CodeOFF {
				value = ""
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
			style, err := styleOf(code, isOffDay(d))
			if err != nil {
				return err
			}
			_ = f.SetCellStyle(sheet, cell, cell, style)
		}
		cell, _ := excelize.CoordinatesToCellName(totalCol, rowIdx+2)
		if err := f.SetCellValue(sheet, cell, s.HoursFor(e.ID)); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
