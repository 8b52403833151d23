package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/vkarev/rotagen/internal/engine"
	"github.com/vkarev/rotagen/internal/report"
)

// ReportService renders stored months into downloadable artefacts.
type ReportService struct {
	schedules *ScheduleService
	employees employeeLister
	calendar  MonthCalendar
}

// NewReportService creates a new report service.
func NewReportService(schedules *ScheduleService, employees employeeLister, calendar MonthCalendar) *ReportService {
	return &ReportService{schedules: schedules, employees: employees, calendar: calendar}
}

// load resolves the engine schedule and roster of a stored month.
func (s *ReportService) load(ctx context.Context, yearMonth string) (*engine.Schedule, []engine.Employee, error) {
	sched, err := s.schedules.loadStored(ctx, yearMonth)
	if err != nil {
		return nil, nil, err
	}
	if sched == nil {
		return nil, nil, ErrMonthNotFound
	}
	rows, err := s.employees.List(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	present := make(map[string]bool)
	for _, id := range sched.EmployeeIDs() {
		present[id] = true
	}
	var roster []engine.Employee
	for i := range rows {
		if present[rows[i].Code] {
			roster = append(roster, rows[i].ToEngine())
		}
	}
	// Cells can reference employees deleted from the roster since; keep them
	// visible in reports.
	known := make(map[string]bool, len(roster))
	for _, e := range roster {
		known[e.ID] = true
	}
	for _, id := range sched.EmployeeIDs() {
		if !known[id] {
			roster = append(roster, engine.Employee{ID: id, Name: id})
		}
	}
	return sched, roster, nil
}

// Workbook renders the XLSX grid of a month.
func (s *ReportService) Workbook(ctx context.Context, yearMonth string) ([]byte, error) {
	sched, roster, err := s.load(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, yearMonth, roster, sched, s.calendar); err != nil {
		return nil, fmt.Errorf("rendering workbook for %s: %w", yearMonth, err)
	}
	return buf.Bytes(), nil
}

// CSVGrid renders the plain CSV grid of a month.
func (s *ReportService) CSVGrid(ctx context.Context, yearMonth string) ([]byte, error) {
	sched, roster, err := s.load(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteCSVGrid(&buf, roster, sched); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EmployeeMetricsCSV renders per-employee hour metrics.
func (s *ReportService) EmployeeMetricsCSV(ctx context.Context, yearMonth string) ([]byte, error) {
	sched, roster, err := s.load(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	norm := 0
	if mp, err := s.schedules.schedules.GetMonth(ctx, yearMonth); err == nil {
		norm = mp.NormHours
	}
	var buf bytes.Buffer
	if err := report.WriteMetricsEmployeesCSV(&buf, roster, sched, norm); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DayMetricsCSV renders per-day headcounts.
func (s *ReportService) DayMetricsCSV(ctx context.Context, yearMonth string) ([]byte, error) {
	sched, _, err := s.load(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteMetricsDaysCSV(&buf, sched); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PairsCSV renders the pair overlap table of a month.
func (s *ReportService) PairsCSV(ctx context.Context, yearMonth string) ([]byte, error) {
	sched, _, err := s.load(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WritePairsCSV(&buf, engine.ComputePairs(sched)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
