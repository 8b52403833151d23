package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/vkarev/rotagen/internal/engine"
	"github.com/vkarev/rotagen/internal/model"
	"github.com/vkarev/rotagen/internal/repository"
	"github.com/vkarev/rotagen/internal/telemetry"
)

var (
	ErrNoEmployees   = errors.New("no active employees in the roster")
	ErrMonthNotFound = errors.New("month has no stored schedule")
)

type employeeLister interface {
	List(ctx context.Context, includeInactive bool) ([]model.Employee, error)
}

type scheduleRepository interface {
	EnsureMonth(ctx context.Context, yearMonth string) (*model.MonthPlan, error)
	GetMonth(ctx context.Context, yearMonth string) (*model.MonthPlan, error)
	UpdateMonth(ctx context.Context, mp *model.MonthPlan) error
	FetchMatrix(ctx context.Context, monthPlanID uuid.UUID) ([]model.ScheduleCell, error)
	ReplaceMonth(ctx context.Context, monthPlanID uuid.UUID, cells []model.ScheduleCell) error
	AddDraftEdits(ctx context.Context, monthPlanID uuid.UUID, edits []model.DraftEdit) error
	ListDraftEdits(ctx context.Context, monthPlanID uuid.UUID) ([]model.DraftEdit, error)
	ClearDraftEdits(ctx context.Context, monthPlanID uuid.UUID) error
	SaveRun(ctx context.Context, run *model.GenerationRun) error
	LatestRun(ctx context.Context, monthPlanID uuid.UUID) (*model.GenerationRun, error)
}

// MonthCalendar supplies norm hours and shortening eligibility.
type MonthCalendar interface {
	engine.WorkCalendar
	NormHours(year int, month time.Month) int
}

// ScheduleService orchestrates the generation pipeline and the stored
// matrices.
type ScheduleService struct {
	employees employeeLister
	schedules scheduleRepository
	settings  *SettingsService
	calendar  MonthCalendar // nil: weekends only, norms must be explicit
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(employees employeeLister, schedules scheduleRepository, settings *SettingsService, calendar MonthCalendar) *ScheduleService {
	return &ScheduleService{
		employees: employees,
		schedules: schedules,
		settings:  settings,
		calendar:  calendar,
	}
}

// GenerateInput parameterises one generation run.
type GenerateInput struct {
	YearMonth string
	NormHours int                 // 0: take from the calendar; a stored month plan norm is not consulted
	Vacations map[string][]string // employee code -> ISO dates
}

// GenerateResult is everything one pipeline run produced.
type GenerateResult struct {
	YearMonth       string              `json:"year_month"`
	NormHours       int                 `json:"norm_hours"`
	Cells           []engine.Assignment `json:"cells"`
	CarryOut        []engine.Assignment `json:"carry_out"`
	OpsLog          []string            `json:"ops_log"`
	Warnings        []string            `json:"warnings"`
	BaselineIssues  []string            `json:"baseline_issues"`
	PairScoreBefore int                 `json:"pair_score_before"`
	PairScoreAfter  int                 `json:"pair_score_after"`
}

// Generate runs the full pipeline for a month: base pattern, baseline
// validation, pair breaking, vacation colouring, carry-out recomputation and
// hour-cap shortening, then persists the matrix and the run log.
//
// Carry-in, the previous-month tail and the previous exclusive pairs all come
// from the stored schedule of the preceding month when one exists.
func (s *ScheduleService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	year, month, err := engine.ParseYearMonth(in.YearMonth)
	if err != nil {
		return nil, err
	}

	rows, err := s.employees.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoEmployees
	}
	roster := make([]engine.Employee, 0, len(rows))
	for i := range rows {
		roster = append(roster, rows[i].ToEngine())
	}

	policy, err := s.settings.Policy(ctx)
	if err != nil {
		return nil, err
	}

	norm := in.NormHours
	if norm == 0 && s.calendar != nil {
		norm = s.calendar.NormHours(year, month)
	}

	// Chain state from the stored previous month.
	var (
		prevTail  map[string][]engine.Code
		carryIn   []engine.Assignment
		prevPairs []engine.PairOverlap
	)
	if prev, err := s.loadStored(ctx, previousMonth(in.YearMonth)); err != nil {
		return nil, err
	} else if prev != nil {
		prevTail = engine.ExtractTail(prev, roster)
		carryIn = engine.CarryOutFromSchedule(prev)
		prevPairs = engine.ComputePairs(prev)
	}

	sched, _, err := engine.GenerateMonth(engine.MonthSpec{YearMonth: in.YearMonth, NormHours: norm}, roster, carryIn, prevTail)
	if err != nil {
		return nil, err
	}

	baseline := engine.ValidateBaseline(in.YearMonth, roster, sched)

	balRes := engine.ApplyPairBreaking(sched, roster, engine.PairBreakingPolicy{
		Enabled:          policy.PairBreaking.Enabled,
		OverlapThreshold: policy.PairBreaking.OverlapThreshold,
		WindowDays:       policy.PairBreaking.WindowDays,
		MaxOps:           policy.PairBreaking.MaxOps,
		HoursBudget:      policy.PairBreaking.HoursBudget,
		AntiAlign:        policy.PairBreaking.AntiAlign,
		PostDesync:       policy.PairBreaking.PostDesyncAll,
		FixedPairs:       policy.PairBreaking.FixedPairs,
		InternIDs:        policy.PairBreaking.InternIDs,
		NormByEmployee:   policy.PairBreaking.NormByEmployee,
		PrevPairs:        prevPairs,
		NormHours:        norm,
	})
	sched = balRes.Schedule

	vacations, err := parseVacations(in.Vacations)
	if err != nil {
		return nil, err
	}
	engine.ApplyVacations(sched, vacations)

	// Operators can move the split night, so the carry-out is rebuilt from
	// the final last-day cells.
	carryOut := engine.CarryOutFromSchedule(sched)

	shorten := engine.EnforceHoursCaps(roster, sched, norm, in.YearMonth, s.calendar, engine.ShorteningPolicy{
		MonthlyAllowance: policy.MonthlyOvertimeMax,
		YearlyCap:        policy.YearlyOvertimeMax,
	})

	if err := sched.CheckInvariants(roster); err != nil {
		return nil, err
	}

	mp, err := s.schedules.EnsureMonth(ctx, in.YearMonth)
	if err != nil {
		return nil, err
	}
	mp.NormHours = norm
	if err := s.schedules.UpdateMonth(ctx, mp); err != nil {
		return nil, err
	}
	if err := s.schedules.ReplaceMonth(ctx, mp.ID, cellsFromSchedule(sched)); err != nil {
		return nil, err
	}

	run := &model.GenerationRun{
		MonthPlanID:     mp.ID,
		OpsLog:          mustJSON(balRes.OpsLog),
		Warnings:        mustJSON(shorten.Warnings),
		BaselineIssues:  mustJSON(baseline),
		PairScoreBefore: balRes.PairScoreBefore,
		PairScoreAfter:  balRes.PairScoreAfter,
	}
	if err := s.schedules.SaveRun(ctx, run); err != nil {
		return nil, err
	}

	telemetry.GenerationsTotal.Inc()
	telemetry.BalancerOpsAccepted.Add(float64(balRes.OpsAccepted))
	telemetry.ShortenerOps.Add(float64(len(shorten.Operations)))
	log.Info().
		Str("month", in.YearMonth).
		Int("employees", len(roster)).
		Int("ops_accepted", balRes.OpsAccepted).
		Int("shortened", len(shorten.Operations)).
		Int("warnings", len(shorten.Warnings)).
		Msg("Schedule generated")

	result := &GenerateResult{
		YearMonth:       in.YearMonth,
		NormHours:       norm,
		CarryOut:        carryOut,
		OpsLog:          balRes.OpsLog,
		Warnings:        shorten.Warnings,
		BaselineIssues:  baseline,
		PairScoreBefore: balRes.PairScoreBefore,
		PairScoreAfter:  balRes.PairScoreAfter,
	}
	for _, d := range sched.Days() {
		result.Cells = append(result.Cells, sched.At(d)...)
	}
	return result, nil
}

// MatrixView is the stored matrix of a month plus its metadata.
type MatrixView struct {
	YearMonth string               `json:"year_month"`
	Days      int                  `json:"days"`
	NormHours int                  `json:"norm_hours"`
	Employees []model.Employee     `json:"employees"`
	Cells     []model.ScheduleCell `json:"cells"`
	Drafts    []model.DraftEdit    `json:"drafts"`
	Run       *model.GenerationRun `json:"run,omitempty"`
}

// Matrix returns the stored matrix of a month.
func (s *ScheduleService) Matrix(ctx context.Context, yearMonth string) (*MatrixView, error) {
	year, month, err := engine.ParseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}
	mp, err := s.schedules.GetMonth(ctx, yearMonth)
	if err != nil {
		return nil, ErrMonthNotFound
	}
	cells, err := s.schedules.FetchMatrix(ctx, mp.ID)
	if err != nil {
		return nil, err
	}
	drafts, err := s.schedules.ListDraftEdits(ctx, mp.ID)
	if err != nil {
		return nil, err
	}
	run, err := s.schedules.LatestRun(ctx, mp.ID)
	if err != nil {
		return nil, err
	}
	emps, err := s.employees.List(ctx, true)
	if err != nil {
		return nil, err
	}
	return &MatrixView{
		YearMonth: yearMonth,
		Days:      len(engine.MonthDays(year, month)),
		NormHours: mp.NormHours,
		Employees: emps,
		Cells:     cells,
		Drafts:    drafts,
		Run:       run,
	}, nil
}

// ApplyDraft stores pending editor overrides for a month.
func (s *ScheduleService) ApplyDraft(ctx context.Context, yearMonth string, edits []model.DraftEdit) error {
	for _, e := range edits {
		if e.NewCode != nil {
			if _, err := engine.ParseCode(*e.NewCode); err != nil {
				return err
			}
		}
	}
	mp, err := s.schedules.EnsureMonth(ctx, yearMonth)
	if err != nil {
		return err
	}
	return s.schedules.AddDraftEdits(ctx, mp.ID, edits)
}

// CommitDraft folds the pending edits into the stored matrix and clears them.
// Returns the number of applied edits.
func (s *ScheduleService) CommitDraft(ctx context.Context, yearMonth string) (int, error) {
	mp, err := s.schedules.GetMonth(ctx, yearMonth)
	if err != nil {
		return 0, ErrMonthNotFound
	}
	edits, err := s.schedules.ListDraftEdits(ctx, mp.ID)
	if err != nil {
		return 0, err
	}
	if len(edits) == 0 {
		return 0, nil
	}
	cells, err := s.schedules.FetchMatrix(ctx, mp.ID)
	if err != nil {
		return 0, err
	}

	type key struct {
		emp string
		day int
	}
	byKey := make(map[key]int, len(cells))
	for i := range cells {
		byKey[key{cells[i].EmployeeCode, cells[i].Day}] = i
	}
	for _, e := range edits {
		if e.NewCode == nil {
			continue
		}
		code, err := engine.ParseCode(*e.NewCode)
		if err != nil {
			return 0, err
		}
		k := key{e.EmployeeCode, e.Day}
		idx, ok := byKey[k]
		if !ok {
			cells = append(cells, model.ScheduleCell{
				MonthPlanID:  mp.ID,
				EmployeeCode: e.EmployeeCode,
				Day:          e.Day,
			})
			idx = len(cells) - 1
			byKey[k] = idx
		}
		cells[idx].ShiftCode = string(code)
		cells[idx].Hours = code.Hours()
		cells[idx].Source = string(engine.SourceOverride)
	}

	if err := s.schedules.ReplaceMonth(ctx, mp.ID, cells); err != nil {
		return 0, err
	}
	if err := s.schedules.ClearDraftEdits(ctx, mp.ID); err != nil {
		return 0, err
	}
	return len(edits), nil
}

// loadStored rebuilds an engine schedule from a stored month, or nil when the
// month has never been generated.
func (s *ScheduleService) loadStored(ctx context.Context, yearMonth string) (*engine.Schedule, error) {
	year, month, err := engine.ParseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}
	mp, err := s.schedules.GetMonth(ctx, yearMonth)
	if errors.Is(err, repository.ErrMonthNotFound) || errors.Is(err, ErrMonthNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cells, err := s.schedules.FetchMatrix(ctx, mp.ID)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, nil
	}

	sched := engine.NewSchedule(engine.MonthDays(year, month))
	for _, c := range cells {
		code, err := engine.ParseCode(c.ShiftCode)
		if err != nil {
			return nil, err
		}
		sched.Add(engine.Assignment{
			EmployeeID: c.EmployeeCode,
			Date:       engine.DateOf(year, month, c.Day),
			Code:       code,
			Hours:      code.Hours(),
			Source:     engine.Source(c.Source),
		})
	}
	return sched, nil
}

func cellsFromSchedule(s *engine.Schedule) []model.ScheduleCell {
	var out []model.ScheduleCell
	for _, d := range s.Days() {
		for _, a := range s.At(d) {
			meta := datatypes.JSON("{}")
			if a.RecoloredFromNight {
				meta = datatypes.JSON(`{"recolored_from_night":true}`)
			}
			out = append(out, model.ScheduleCell{
				EmployeeCode: a.EmployeeID,
				Day:          a.Date.Day(),
				ShiftCode:    string(a.Code),
				Hours:        a.Hours,
				Source:       string(a.Source),
				Meta:         meta,
			})
		}
	}
	return out
}

func parseVacations(raw map[string][]string) (map[string][]time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string][]time.Time, len(raw))
	for emp, dates := range raw {
		for _, iso := range dates {
			d, err := time.Parse("2006-01-02", iso)
			if err != nil {
				return nil, fmt.Errorf("invalid vacation date %q for %s: %w", iso, emp, err)
			}
			out[emp] = append(out[emp], d)
		}
	}
	return out, nil
}

// previousMonth returns the tag of the month before ym.
func previousMonth(ym string) string {
	year, month, err := engine.ParseYearMonth(ym)
	if err != nil {
		return ym
	}
	prev := engine.DateOf(year, month, 1).AddDate(0, -1, 0)
	return prev.Format("2006-01")
}

func mustJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
