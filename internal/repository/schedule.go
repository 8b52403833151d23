package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vkarev/rotagen/internal/model"
)

var (
	ErrMonthNotFound = errors.New("month not found")
)

// ScheduleRepository handles month plans, matrix cells and draft edits.
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// EnsureMonth returns the month plan for a tag, creating it when missing.
func (r *ScheduleRepository) EnsureMonth(ctx context.Context, yearMonth string) (*model.MonthPlan, error) {
	var mp model.MonthPlan
	err := r.db.GORM.WithContext(ctx).Where("year_month = ?", yearMonth).First(&mp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		mp = model.MonthPlan{YearMonth: yearMonth}
		if err := r.db.GORM.WithContext(ctx).Create(&mp).Error; err != nil {
			return nil, fmt.Errorf("failed to create month plan: %w", err)
		}
		return &mp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get month plan: %w", err)
	}
	return &mp, nil
}

// GetMonth returns the month plan for a tag.
func (r *ScheduleRepository) GetMonth(ctx context.Context, yearMonth string) (*model.MonthPlan, error) {
	var mp model.MonthPlan
	err := r.db.GORM.WithContext(ctx).Where("year_month = ?", yearMonth).First(&mp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMonthNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get month plan: %w", err)
	}
	return &mp, nil
}

// UpdateMonth persists month plan changes.
func (r *ScheduleRepository) UpdateMonth(ctx context.Context, mp *model.MonthPlan) error {
	return r.db.GORM.WithContext(ctx).Save(mp).Error
}

// FetchMatrix loads the stored cells of a month, ordered by employee and day.
func (r *ScheduleRepository) FetchMatrix(ctx context.Context, monthPlanID uuid.UUID) ([]model.ScheduleCell, error) {
	var cells []model.ScheduleCell
	err := r.db.GORM.WithContext(ctx).
		Where("month_plan_id = ?", monthPlanID).
		Order("employee_code ASC, day ASC").
		Find(&cells).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matrix: %w", err)
	}
	return cells, nil
}

// ReplaceMonth swaps the whole matrix of a month in one transaction.
func (r *ScheduleRepository) ReplaceMonth(ctx context.Context, monthPlanID uuid.UUID, cells []model.ScheduleCell) error {
	return r.db.GORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("month_plan_id = ?", monthPlanID).Delete(&model.ScheduleCell{}).Error; err != nil {
			return fmt.Errorf("failed to clear matrix: %w", err)
		}
		if len(cells) == 0 {
			return nil
		}
		for i := range cells {
			cells[i].MonthPlanID = monthPlanID
		}
		if err := tx.CreateInBatches(cells, 200).Error; err != nil {
			return fmt.Errorf("failed to insert matrix: %w", err)
		}
		return nil
	})
}

// AddDraftEdits appends pending editor overrides.
func (r *ScheduleRepository) AddDraftEdits(ctx context.Context, monthPlanID uuid.UUID, edits []model.DraftEdit) error {
	if len(edits) == 0 {
		return nil
	}
	for i := range edits {
		edits[i].MonthPlanID = monthPlanID
	}
	return r.db.GORM.WithContext(ctx).Create(&edits).Error
}

// ListDraftEdits returns pending edits in application order.
func (r *ScheduleRepository) ListDraftEdits(ctx context.Context, monthPlanID uuid.UUID) ([]model.DraftEdit, error) {
	var edits []model.DraftEdit
	err := r.db.GORM.WithContext(ctx).
		Where("month_plan_id = ?", monthPlanID).
		Order("created_at ASC, id ASC").
		Find(&edits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list draft edits: %w", err)
	}
	return edits, nil
}

// ClearDraftEdits drops all pending edits of a month.
func (r *ScheduleRepository) ClearDraftEdits(ctx context.Context, monthPlanID uuid.UUID) error {
	return r.db.GORM.WithContext(ctx).
		Where("month_plan_id = ?", monthPlanID).
		Delete(&model.DraftEdit{}).Error
}

// SaveRun stores a generation run log.
func (r *ScheduleRepository) SaveRun(ctx context.Context, run *model.GenerationRun) error {
	return r.db.GORM.WithContext(ctx).Create(run).Error
}

// LatestRun returns the most recent generation run of a month, or nil.
func (r *ScheduleRepository) LatestRun(ctx context.Context, monthPlanID uuid.UUID) (*model.GenerationRun, error) {
	var run model.GenerationRun
	err := r.db.GORM.WithContext(ctx).
		Where("month_plan_id = ?", monthPlanID).
		Order("created_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return &run, nil
}
