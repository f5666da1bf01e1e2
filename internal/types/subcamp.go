package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubcampStats is a derived rollup cached on the subcamp row. It is
// recomputed from evaluation rows and never authored directly.
type SubcampStats struct {
	TotalEvaluations      int `gorm:"column:stats_total_evaluations;not null;default:0" json:"total_evaluations"`
	CompletedEvaluations  int `gorm:"column:stats_completed_evaluations;not null;default:0" json:"completed_evaluations"`
	InProgressEvaluations int `gorm:"column:stats_in_progress_evaluations;not null;default:0" json:"in_progress_evaluations"`
	CompletionPercentage  int `gorm:"column:stats_completion_percentage;not null;default:0" json:"completion_percentage"`
}

type Subcamp struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	Description    string         `gorm:"column:description" json:"description,omitempty"`
	CampID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"camp_id"`
	Camp           *Camp          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CampID;references:ID" json:"camp,omitempty"`
	Color          string         `gorm:"column:color;not null;default:'#667eea'" json:"color"`
	MaxLeaders     int            `gorm:"column:max_leaders;not null;default:10" json:"max_leaders"`
	CurrentLeaders int            `gorm:"column:current_leaders;not null;default:0" json:"current_leaders"`
	TotalKids      int            `gorm:"column:total_kids;not null;default:0" json:"total_kids"`
	Stats          SubcampStats   `gorm:"embedded" json:"evaluation_stats"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Subcamp) TableName() string { return "subcamp" }
