package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vkarev/rotagen/internal/model"
)

var (
	ErrEmployeeCodeRequired = errors.New("employee code is required")
	ErrEmployeeNameRequired = errors.New("employee name is required")
)

type employeeRepository interface {
	Create(ctx context.Context, e *model.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	GetByCode(ctx context.Context, code string) (*model.Employee, error)
	List(ctx context.Context, includeInactive bool) ([]model.Employee, error)
	Update(ctx context.Context, e *model.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EmployeeService manages the roster.
type EmployeeService struct {
	repo employeeRepository
}

// NewEmployeeService creates a new employee service.
func NewEmployeeService(repo employeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

// CreateEmployeeInput is the input for creating a roster member.
type CreateEmployeeInput struct {
	Code        string
	Name        string
	IsTrainee   bool
	MentorCode  *string
	YTDOvertime int
	SortOrder   int
}

// Create validates and stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, in CreateEmployeeInput) (*model.Employee, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, ErrEmployeeCodeRequired
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrEmployeeNameRequired
	}
	e := &model.Employee{
		Code:        code,
		Name:        strings.TrimSpace(in.Name),
		IsTrainee:   in.IsTrainee,
		MentorCode:  in.MentorCode,
		YTDOvertime: in.YTDOvertime,
		SortOrder:   in.SortOrder,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns the roster in stable order.
func (s *EmployeeService) List(ctx context.Context, includeInactive bool) ([]model.Employee, error) {
	return s.repo.List(ctx, includeInactive)
}

// GetByID returns one employee.
func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateEmployeeInput carries partial updates.
type UpdateEmployeeInput struct {
	Name        *string
	IsTrainee   *bool
	MentorCode  *string
	YTDOvertime *int
	SortOrder   *int
	IsActive    *bool
}

// Update applies partial changes to an employee.
func (s *EmployeeService) Update(ctx context.Context, id uuid.UUID, in UpdateEmployeeInput) (*model.Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, ErrEmployeeNameRequired
		}
		e.Name = strings.TrimSpace(*in.Name)
	}
	if in.IsTrainee != nil {
		e.IsTrainee = *in.IsTrainee
	}
	if in.MentorCode != nil {
		e.MentorCode = in.MentorCode
	}
	if in.YTDOvertime != nil {
		e.YTDOvertime = *in.YTDOvertime
	}
	if in.SortOrder != nil {
		e.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an employee.
func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
