// Package main is the batch scenario runner: it replays YAML scenarios
// month by month without a database and writes the full report set per month.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/vkarev/rotagen/internal/engine"
	"github.com/vkarev/rotagen/internal/report"
	"github.com/vkarev/rotagen/internal/workcal"
)

type scenarioFile struct {
	Name      string             `yaml:"name"`
	Calendar  string             `yaml:"calendar"`
	Employees []scenarioEmployee `yaml:"employees"`
	Months    []scenarioMonth    `yaml:"months"`

	PairBreaking struct {
		Enabled          bool           `yaml:"enabled"`
		OverlapThreshold int            `yaml:"overlap_threshold"`
		WindowDays       int            `yaml:"window_days"`
		MaxOps           int            `yaml:"max_ops"`
		HoursBudget      int            `yaml:"hours_budget"`
		AntiAlign        *bool          `yaml:"anti_align"`
		PostDesyncAll    *bool          `yaml:"post_desync_all"`
		FixedPairs       [][2]string    `yaml:"fixed_pairs"`
		InternIDs        []string       `yaml:"intern_ids"`
		NormByEmployee   map[string]int `yaml:"norm_by_employee"`
	} `yaml:"pair_breaking"`

	MonthlyOvertimeMax int `yaml:"monthly_overtime_max"`
	YearlyOvertimeMax  int `yaml:"yearly_overtime_max"`

	PrevTail map[string][]string `yaml:"prev_tail"`
	CarryIn  []scenarioCarry     `yaml:"carry_in"`
}

type scenarioEmployee struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	IsTrainee   bool   `yaml:"is_trainee"`
	MentorID    string `yaml:"mentor_id"`
	YTDOvertime int    `yaml:"ytd_overtime"`
}

type scenarioMonth struct {
	Month     string                  `yaml:"month"`
	NormHours int                     `yaml:"norm_hours"`
	Vacations map[string][]vacationIn `yaml:"vacations"`
}

// vacationIn is either a single {date} or a {from, to} range; a bare scalar
// date is not accepted.
type vacationIn struct {
	Date string `yaml:"date"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

func (v vacationIn) expand() ([]time.Time, error) {
	if v.Date != "" {
		d, err := time.Parse("2006-01-02", v.Date)
		if err != nil {
			return nil, err
		}
		return []time.Time{d}, nil
	}
	from, err := time.Parse("2006-01-02", v.From)
	if err != nil {
		return nil, err
	}
	to := from
	if v.To != "" {
		if to, err = time.Parse("2006-01-02", v.To); err != nil {
			return nil, err
		}
	}
	if to.Before(from) {
		from, to = to, from
	}
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}

type scenarioCarry struct {
	Employee string `yaml:"employee"`
	Code     string `yaml:"code"`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:  "rotagen-scenario",
		Usage: "replay scheduling scenarios from YAML files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "reports", Usage: "output directory"},
		},
		ArgsUsage: "scenario.yaml [scenario.yaml...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("no scenario files given", 1)
			}
			for _, path := range c.Args().Slice() {
				if err := runScenarioFile(path, c.String("out")); err != nil {
					return cli.Exit(fmt.Sprintf("%s: %v", path, err), 1)
				}
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Scenario run failed")
	}
}

func runScenarioFile(path, outRoot string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var scn scenarioFile
	if err := yaml.Unmarshal(raw, &scn); err != nil {
		return fmt.Errorf("parsing scenario: %w", err)
	}
	if scn.Name == "" {
		scn.Name = filepath.Base(path)
	}
	if len(scn.Employees) == 0 {
		return fmt.Errorf("scenario has no employees")
	}
	if len(scn.Months) == 0 {
		return fmt.Errorf("scenario has no months")
	}

	var cal *workcal.Calendar
	if scn.Calendar != "" {
		calPath := scn.Calendar
		if !filepath.IsAbs(calPath) {
			calPath = filepath.Join(filepath.Dir(path), calPath)
		}
		if cal, err = workcal.Load(calPath); err != nil {
			return err
		}
	}

	roster := make([]engine.Employee, 0, len(scn.Employees))
	for _, e := range scn.Employees {
		roster = append(roster, engine.Employee{
			ID:          e.ID,
			Name:        e.Name,
			IsTrainee:   e.IsTrainee,
			MentorID:    e.MentorID,
			YTDOvertime: e.YTDOvertime,
		})
	}

	outDir := filepath.Join(outRoot, scn.Name)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	prevTail, carryIn, err := bootstrapState(scn)
	if err != nil {
		return err
	}

	var prevPairs []engine.PairOverlap
	soloMonths := map[string]int{}

	for _, ms := range scn.Months {
		result, err := runMonth(scn, ms, roster, cal, prevTail, carryIn, prevPairs, outDir)
		if err != nil {
			return fmt.Errorf("month %s: %w", ms.Month, err)
		}
		prevTail = result.tail
		carryIn = result.carryOut
		prevPairs = result.pairs

		for emp, cnt := range engine.SoloDays(result.schedule) {
			if cnt > 0 {
				soloMonths[emp]++
			}
		}
		log.Info().
			Str("scenario", scn.Name).
			Str("month", ms.Month).
			Int("pair_score_before", result.scoreBefore).
			Int("pair_score_after", result.scoreAfter).
			Msg("Month done")
	}

	soloEmps := make([]string, 0, len(soloMonths))
	for emp := range soloMonths {
		soloEmps = append(soloEmps, emp)
	}
	sort.Strings(soloEmps)
	for _, emp := range soloEmps {
		log.Warn().Str("scenario", scn.Name).Str("employee", emp).Int("months", soloMonths[emp]).Msg("Employee had solo days")
	}
	log.Info().Str("scenario", scn.Name).Str("out", outDir).Int("months", len(scn.Months)).Msg("Scenario done")
	return nil
}

func bootstrapState(scn scenarioFile) (map[string][]engine.Code, []engine.Assignment, error) {
	prevTail := make(map[string][]engine.Code, len(scn.PrevTail))
	for emp, codes := range scn.PrevTail {
		for _, raw := range codes {
			code, err := engine.ParseCode(raw)
			if err != nil {
				return nil, nil, err
			}
			prevTail[emp] = append(prevTail[emp], code)
		}
	}

	var carryIn []engine.Assignment
	if len(scn.CarryIn) > 0 {
		year, month, err := engine.ParseYearMonth(scn.Months[0].Month)
		if err != nil {
			return nil, nil, err
		}
		day1 := engine.DateOf(year, month, 1)
		for _, c := range scn.CarryIn {
			code, err := engine.ParseCode(c.Code)
			if err != nil {
				return nil, nil, err
			}
			carryIn = append(carryIn, engine.Assignment{
				EmployeeID: c.Employee,
				Date:       day1,
				Code:       code,
				Hours:      code.Hours(),
				Source:     engine.SourceTemplate,
			})
		}
	}
	return prevTail, carryIn, nil
}

type monthResult struct {
	schedule    *engine.Schedule
	tail        map[string][]engine.Code
	carryOut    []engine.Assignment
	pairs       []engine.PairOverlap
	scoreBefore int
	scoreAfter  int
}

func runMonth(scn scenarioFile, ms scenarioMonth, roster []engine.Employee, cal *workcal.Calendar,
	prevTail map[string][]engine.Code, carryIn []engine.Assignment,
	prevPairs []engine.PairOverlap, outDir string) (*monthResult, error) {

	year, month, err := engine.ParseYearMonth(ms.Month)
	if err != nil {
		return nil, err
	}
	norm := ms.NormHours
	if norm == 0 && cal != nil {
		norm = cal.NormHours(year, month)
	}

	sched, _, err := engine.GenerateMonth(engine.MonthSpec{YearMonth: ms.Month, NormHours: norm}, roster, carryIn, prevTail)
	if err != nil {
		return nil, err
	}

	baseline := engine.ValidateBaseline(ms.Month, roster, sched)

	antiAlign := true
	if scn.PairBreaking.AntiAlign != nil {
		antiAlign = *scn.PairBreaking.AntiAlign
	}
	postDesync := true
	if scn.PairBreaking.PostDesyncAll != nil {
		postDesync = *scn.PairBreaking.PostDesyncAll
	}
	balRes := engine.ApplyPairBreaking(sched, roster, engine.PairBreakingPolicy{
		Enabled:          scn.PairBreaking.Enabled,
		OverlapThreshold: scn.PairBreaking.OverlapThreshold,
		WindowDays:       scn.PairBreaking.WindowDays,
		MaxOps:           scn.PairBreaking.MaxOps,
		HoursBudget:      scn.PairBreaking.HoursBudget,
		AntiAlign:        antiAlign,
		PostDesync:       postDesync,
		FixedPairs:       scn.PairBreaking.FixedPairs,
		InternIDs:        internIDs(scn),
		NormByEmployee:   scn.PairBreaking.NormByEmployee,
		PrevPairs:        prevPairs,
		NormHours:        norm,
	})
	sched = balRes.Schedule

	vacations := make(map[string][]time.Time)
	for emp, entries := range ms.Vacations {
		for _, entry := range entries {
			days, err := entry.expand()
			if err != nil {
				return nil, fmt.Errorf("vacation for %s: %w", emp, err)
			}
			vacations[emp] = append(vacations[emp], days...)
		}
	}
	engine.ApplyVacations(sched, vacations)

	carryOut := engine.CarryOutFromSchedule(sched)

	monthlyAllowance := scn.MonthlyOvertimeMax
	if monthlyAllowance == 0 {
		monthlyAllowance = 10
	}
	yearlyCap := scn.YearlyOvertimeMax
	if yearlyCap == 0 {
		yearlyCap = 120
	}
	var shortCal engine.WorkCalendar
	if cal != nil {
		shortCal = cal
	}
	shorten := engine.EnforceHoursCaps(roster, sched, norm, ms.Month, shortCal, engine.ShorteningPolicy{
		MonthlyAllowance: monthlyAllowance,
		YearlyCap:        yearlyCap,
	})

	if err := sched.CheckInvariants(roster); err != nil {
		return nil, err
	}

	if err := writeMonthReports(outDir, scn.Name, ms.Month, roster, sched, cal, norm, shorten, balRes, baseline, carryOut); err != nil {
		return nil, err
	}

	return &monthResult{
		schedule:    sched,
		tail:        engine.ExtractTail(sched, roster),
		carryOut:    carryOut,
		pairs:       engine.ComputePairs(sched),
		scoreBefore: balRes.PairScoreBefore,
		scoreAfter:  balRes.PairScoreAfter,
	}, nil
}

func internIDs(scn scenarioFile) []string {
	ids := append([]string(nil), scn.PairBreaking.InternIDs...)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, e := range scn.Employees {
		if e.IsTrainee && !seen[e.ID] {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func writeMonthReports(outDir, name, ym string, roster []engine.Employee, sched *engine.Schedule,
	cal *workcal.Calendar, norm int, shorten engine.ShortenResult, balRes engine.BalanceResult,
	baseline []string, carryOut []engine.Assignment) error {

	base := filepath.Join(outDir, fmt.Sprintf("%s_%s", name, ym))

	write := func(suffix string, fn func(f *os.File) error) error {
		f, err := os.Create(base + suffix)
		if err != nil {
			return err
		}
		defer f.Close()
		return fn(f)
	}

	var reportCal engine.WorkCalendar
	if cal != nil {
		reportCal = cal
	}
	if err := write(".xlsx", func(f *os.File) error {
		return report.WriteWorkbook(f, ym, roster, sched, reportCal)
	}); err != nil {
		return err
	}
	if err := write("_grid.csv", func(f *os.File) error {
		return report.WriteCSVGrid(f, roster, sched)
	}); err != nil {
		return err
	}
	if err := write("_metrics_employees.csv", func(f *os.File) error {
		return report.WriteMetricsEmployeesCSV(f, roster, sched, norm)
	}); err != nil {
		return err
	}
	if err := write("_metrics_days.csv", func(f *os.File) error {
		return report.WriteMetricsDaysCSV(f, sched)
	}); err != nil {
		return err
	}
	if err := write("_pairs.csv", func(f *os.File) error {
		return report.WritePairsCSV(f, engine.ComputePairs(sched))
	}); err != nil {
		return err
	}
	if err := write("_norms.txt", func(f *os.File) error {
		return report.WriteNormsReport(f, shorten, roster)
	}); err != nil {
		return err
	}

	var lines []string
	if len(balRes.OpsLog) > 0 {
		lines = append(lines, "[pair_breaking.ops]")
		for _, l := range balRes.OpsLog {
			lines = append(lines, " - "+l)
		}
		lines = append(lines, fmt.Sprintf("[pairs.score] before=%d after=%d", balRes.PairScoreBefore, balRes.PairScoreAfter))
	}
	if len(baseline) > 0 {
		lines = append(lines, "[validation.baseline.issues]")
		for _, l := range baseline {
			lines = append(lines, " - "+l)
		}
	}
	for _, row := range engine.CoverageSmoke(sched, 8) {
		lines = append(lines, fmt.Sprintf("[coverage] %s: DA=%d DB=%d NA=%d NB=%d", row.Date, row.DayA, row.DayB, row.NightA, row.NightB))
	}
	for _, l := range engine.PhaseTrace(roster, sched, 10) {
		lines = append(lines, "[trace] "+l)
	}
	if len(carryOut) > 0 {
		for _, c := range carryOut {
			lines = append(lines, fmt.Sprintf("[carry_out] %s=%s@%s", c.EmployeeID, c.Code, c.Date.Format("2006-01-02")))
		}
	}
	return write("_log.txt", func(f *os.File) error {
		return report.WriteLogTxt(f, lines)
	})
}
