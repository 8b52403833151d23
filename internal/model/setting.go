package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Setting is one key of the policy bag, stored as JSON so nested structures
// (the pair_breaking block) round-trip unchanged.
type Setting struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Key       string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"default:now()" json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
