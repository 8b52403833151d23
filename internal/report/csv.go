package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/vkarev/rotagen/internal/engine"
)

// WriteCSVGrid writes the plain employees-by-days grid: first column the
// employee, then one column per day of the month.
func WriteCSVGrid(w io.Writer, employees []engine.Employee, s *engine.Schedule) error {
	cw := csv.NewWriter(w)
	days := s.Days()

	header := make([]string, 0, len(days)+1)
	header = append(header, "Сотрудник")
	for _, d := range days {
		header = append(header, strconv.Itoa(d.Day()))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range employees {
		row := make([]string, 0, len(days)+1)
		row = append(row, fmt.Sprintf("%s — %s", e.ID, e.Name))
		for _, d := range days {
			code := s.CodeOn(e.ID, d)
			if code == engine.CodeOFF {
				row = append(row, "")
			} else {
				row = append(row, string(code))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsEmployeesCSV writes per-employee hour metrics: total hours,
// monthly overtime, solo days, and the share of the roster average.
func WriteMetricsEmployeesCSV(w io.Writer, employees []engine.Employee, s *engine.Schedule, normHours int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"employee", "name", "hours", "overtime", "solo_days", "vs_avg"}); err != nil {
		return err
	}

	hours := s.HoursByEmployee()
	solo := engine.SoloDays(s)

	total := 0
	for _, e := range employees {
		total += hours[e.ID]
	}
	avg := decimal.Zero
	if len(employees) > 0 {
		avg = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(len(employees))))
	}

	for _, e := range employees {
		h := hours[e.ID]
		overtime := 0
		if normHours > 0 && h > normHours {
			overtime = h - normHours
		}
		vsAvg := ""
		if !avg.IsZero() {
			vsAvg = decimal.NewFromInt(int64(h)).Div(avg).Round(2).String()
		}
		err := cw.Write([]string{
			e.ID,
			e.Name,
			strconv.Itoa(h),
			strconv.Itoa(overtime),
			strconv.Itoa(solo[e.ID]),
			vsAvg,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsDaysCSV writes per-day headcounts. The split night halves count
// as nights; N8 is also tracked separately.
func WriteMetricsDaysCSV(w io.Writer, s *engine.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "DA", "DB", "M8", "E8", "NA", "NB", "N8"}); err != nil {
		return err
	}
	for _, d := range s.Days() {
		var da, db, m8, e8, na, nb, n8 int
		for _, a := range s.At(d) {
			switch a.Code {
			case engine.CodeDA:
				da++
			case engine.CodeDB:
				db++
			case engine.CodeM8A, engine.CodeM8B:
				m8++
			case engine.CodeE8A, engine.CodeE8B:
				e8++
			case engine.CodeNA, engine.CodeN4A:
				na++
			case engine.CodeNB, engine.CodeN4B:
				nb++
			case engine.CodeN8A:
				na++
				n8++
			case engine.CodeN8B:
				nb++
				n8++
			}
		}
		err := cw.Write([]string{
			d.Format("2006-01-02"),
			strconv.Itoa(da), strconv.Itoa(db),
			strconv.Itoa(m8), strconv.Itoa(e8),
			strconv.Itoa(na), strconv.Itoa(nb),
			strconv.Itoa(n8),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePairsCSV writes the pair overlap table, strongest pairs first.
func WritePairsCSV(w io.Writer, pairs []engine.PairOverlap) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"employee_1", "employee_2", "overlap_days", "overlap_nights"}); err != nil {
		return err
	}
	for _, p := range pairs {
		err := cw.Write([]string{p.A, p.B, strconv.Itoa(p.Days), strconv.Itoa(p.Nights)})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNormsReport writes the shortener outcome as a plain text report.
func WriteNormsReport(w io.Writer, res engine.ShortenResult, employees []engine.Employee) error {
	fmt.Fprintf(w, "Месяц: %s\n", res.Month)
	fmt.Fprintf(w, "Норма: %dч, лимит месяца: %dч, лимит года: %dч\n\n", res.NormHours, res.MonthlyCap, res.YearlyCap)

	if len(res.Operations) > 0 {
		fmt.Fprintln(w, "Сокращения:")
		for _, op := range res.Operations {
			fmt.Fprintf(w, " %s %s: %s→%s (%dч)\n",
				op.Date.Format("2006-01-02"), op.EmployeeID, op.FromCode, op.ToCode, op.HoursDelta)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Часы по сотрудникам:")
	for _, e := range employees {
		info := res.PerEmployee[e.ID]
		line := fmt.Sprintf(" %s — %s: %dч, переработка %dч", e.ID, e.Name, info.Hours, info.OvertimeMonth)
		if info.YearlyLeft != nil {
			line += fmt.Sprintf(", остаток по году %dч", *info.YearlyLeft)
		}
		fmt.Fprintln(w, line)
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Предупреждения:")
		for _, warn := range res.Warnings {
			fmt.Fprintf(w, " - %s\n", warn)
		}
	}
	return nil
}

// WriteLogTxt writes plain log lines.
func WriteLogTxt(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
