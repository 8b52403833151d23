package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MonthPlan is one generated (or hand-edited) month.
type MonthPlan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	YearMonth string    `gorm:"type:varchar(7);not null;uniqueIndex" json:"year_month"`
	NormHours int       `gorm:"default:0" json:"norm_hours"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

func (MonthPlan) TableName() string {
	return "month_plans"
}

// ScheduleCell is one (employee, day) cell of a stored month matrix.
type ScheduleCell struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MonthPlanID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_cells_month_emp_day,unique" json:"month_plan_id"`
	EmployeeCode string         `gorm:"type:varchar(16);not null;index:idx_cells_month_emp_day,unique" json:"employee_code"`
	Day          int            `gorm:"not null;index:idx_cells_month_emp_day,unique" json:"day"`
	ShiftCode    string         `gorm:"type:varchar(8);not null" json:"shift_code"`
	Hours        int            `gorm:"not null;default:0" json:"hours"`
	Source       string         `gorm:"type:varchar(32);not null;default:'template'" json:"source"`
	Meta         datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"meta"`
	CreatedAt    time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:now()" json:"updated_at"`
}

func (ScheduleCell) TableName() string {
	return "schedule_cells"
}

// DraftEdit is a pending editor override that has not been committed into the
// matrix yet.
type DraftEdit struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MonthPlanID  uuid.UUID `gorm:"type:uuid;not null;index" json:"month_plan_id"`
	EmployeeCode string    `gorm:"type:varchar(16);not null" json:"employee_code"`
	Day          int       `gorm:"not null" json:"day"`
	NewCode      *string   `gorm:"type:varchar(8)" json:"new_code,omitempty"`
	Op           string    `gorm:"type:varchar(64);not null;default:'edit'" json:"op"`
	CreatedAt    time.Time `gorm:"default:now()" json:"created_at"`
}

func (DraftEdit) TableName() string {
	return "draft_edits"
}

// GenerationRun records one run of the generation pipeline for a month: the
// operator log, shortener warnings and the pair score movement.
type GenerationRun struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MonthPlanID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"month_plan_id"`
	OpsLog          datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"ops_log"`
	Warnings        datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"warnings"`
	BaselineIssues  datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"baseline_issues"`
	PairScoreBefore int            `gorm:"default:0" json:"pair_score_before"`
	PairScoreAfter  int            `gorm:"default:0" json:"pair_score_after"`
	CreatedAt       time.Time      `gorm:"default:now()" json:"created_at"`
}

func (GenerationRun) TableName() string {
	return "generation_runs"
}
