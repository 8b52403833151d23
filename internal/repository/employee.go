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
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeExists   = errors.New("employee code already exists")
)

// EmployeeRepository handles roster data access.
type EmployeeRepository struct {
	db *DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create creates a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, e *model.Employee) error {
	var count int64
	if err := r.db.GORM.WithContext(ctx).Model(&model.Employee{}).
		Where("code = ?", e.Code).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check employee code: %w", err)
	}
	if count > 0 {
		return ErrEmployeeExists
	}
	return r.db.GORM.WithContext(ctx).
		Select("Code", "Name", "IsTrainee", "MentorCode", "YTDOvertime", "SortOrder", "IsActive", "Attrs").
		Create(e).Error
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	err := r.db.GORM.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

// GetByCode retrieves an employee by its short code.
func (r *EmployeeRepository) GetByCode(ctx context.Context, code string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.GORM.WithContext(ctx).First(&e, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee by code: %w", err)
	}
	return &e, nil
}

// List retrieves employees in stable roster order.
func (r *EmployeeRepository) List(ctx context.Context, includeInactive bool) ([]model.Employee, error) {
	q := r.db.GORM.WithContext(ctx).Order("sort_order ASC, code ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var out []model.Employee
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return out, nil
}

// Update updates an employee.
func (r *EmployeeRepository) Update(ctx context.Context, e *model.Employee) error {
	return r.db.GORM.WithContext(ctx).Save(e).Error
}

// Delete deletes an employee by ID.
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.GORM.WithContext(ctx).Delete(&model.Employee{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete employee: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
