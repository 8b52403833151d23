package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vkarev/rotagen/internal/engine"
)

// Employee is a roster member. Code is the short stable id used inside
// schedules and reports (E01, E02, ...); SortOrder fixes the roster order the
// generator depends on.
type Employee struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code        string         `gorm:"type:varchar(16);not null;uniqueIndex" json:"code"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	IsTrainee   bool           `gorm:"default:false" json:"is_trainee"`
	MentorCode  *string        `gorm:"type:varchar(16)" json:"mentor_code,omitempty"`
	YTDOvertime int            `gorm:"default:0" json:"ytd_overtime"`
	SortOrder   int            `gorm:"not null;default:0;index" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Attrs       datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"attrs"`
	CreatedAt   time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:now()" json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// ToEngine maps the row onto the engine's roster entry.
func (e *Employee) ToEngine() engine.Employee {
	mentor := ""
	if e.MentorCode != nil {
		mentor = *e.MentorCode
	}
	return engine.Employee{
		ID:          e.Code,
		Name:        e.Name,
		IsTrainee:   e.IsTrainee,
		MentorID:    mentor,
		YTDOvertime: e.YTDOvertime,
	}
}
