package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProgressNotStarted = "not-started"
	ProgressInProgress = "in-progress"
	ProgressCompleted  = "completed"
)

// MaxKidsPerLeader caps a leader's roster.
const MaxKidsPerLeader = 5

// LeaderProgress is a derived rollup cached on the leader row. It is a
// pure projection of evaluation rows for that leader.
type LeaderProgress struct {
	TotalKids          int        `gorm:"column:progress_total_kids;not null;default:0" json:"total_kids"`
	CompletedKids      int        `gorm:"column:progress_completed_kids;not null;default:0" json:"completed_kids"`
	TotalQuestions     int        `gorm:"column:progress_total_questions;not null;default:0" json:"total_questions"`
	CompletedQuestions int        `gorm:"column:progress_completed_questions;not null;default:0" json:"completed_questions"`
	Percentage         int        `gorm:"column:progress_percentage;not null;default:0" json:"percentage"`
	Status             string     `gorm:"column:progress_status;not null;default:'not-started'" json:"status"`
	LastUpdated        *time.Time `gorm:"column:progress_last_updated" json:"last_updated,omitempty"`
	SubmittedAt        *time.Time `gorm:"column:progress_submitted_at" json:"submitted_at,omitempty"`
}

type Leader struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Email       string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	SubcampID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"subcamp_id"`
	Subcamp     *Subcamp       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubcampID;references:ID" json:"subcamp,omitempty"`
	Phone       string         `gorm:"column:phone" json:"phone,omitempty"`
	Nationality string         `gorm:"column:nationality" json:"nationality,omitempty"`
	Experience  datatypes.JSON `gorm:"type:jsonb;column:experience" json:"experience,omitempty"`
	KidsCount   int            `gorm:"column:kids_count;not null;default:0" json:"kids_count"`
	Progress    LeaderProgress `gorm:"embedded" json:"evaluation_progress"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Leader) TableName() string { return "leader" }

// StatusForPercentage maps a completion percentage onto the progress
// status enum.
func StatusForPercentage(pct int) string {
	switch {
	case pct <= 0:
		return ProgressNotStarted
	case pct < 100:
		return ProgressInProgress
	default:
		return ProgressCompleted
	}
}
