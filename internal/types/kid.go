package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KidStatus is a derived rollup cached on the kid row.
type KidStatus struct {
	IsStarted          bool       `gorm:"column:status_is_started;not null;default:false" json:"is_started"`
	IsCompleted        bool       `gorm:"column:status_is_completed;not null;default:false" json:"is_completed"`
	CompletedQuestions int        `gorm:"column:status_completed_questions;not null;default:0" json:"completed_questions"`
	TotalQuestions     int        `gorm:"column:status_total_questions;not null;default:0" json:"total_questions"`
	Percentage         int        `gorm:"column:status_percentage;not null;default:0" json:"percentage"`
	LastEvaluated      *time.Time `gorm:"column:status_last_evaluated" json:"last_evaluated,omitempty"`
	SubmittedAt        *time.Time `gorm:"column:status_submitted_at" json:"submitted_at,omitempty"`
}

type Kid struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	Age            int            `gorm:"column:age;not null" json:"age"`
	Gender         string         `gorm:"column:gender;not null" json:"gender"`
	Nationality    string         `gorm:"column:nationality;not null" json:"nationality"`
	SubcampID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"subcamp_id"`
	Subcamp        *Subcamp       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubcampID;references:ID" json:"subcamp,omitempty"`
	LeaderID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"leader_id"`
	Leader         *Leader        `gorm:"constraint:OnDelete:CASCADE;foreignKey:LeaderID;references:ID" json:"leader,omitempty"`
	ProfileImage   string         `gorm:"column:profile_image" json:"profile_image,omitempty"`
	DateOfBirth    *time.Time     `gorm:"column:date_of_birth" json:"date_of_birth,omitempty"`
	Languages      datatypes.JSON `gorm:"type:jsonb;column:languages" json:"languages,omitempty"`
	Interests      datatypes.JSON `gorm:"type:jsonb;column:interests" json:"interests,omitempty"`
	Allergies      datatypes.JSON `gorm:"type:jsonb;column:allergies" json:"allergies,omitempty"`
	MedicalInfo    datatypes.JSON `gorm:"type:jsonb;column:medical_info" json:"medical_info,omitempty"`
	ParentGuardian datatypes.JSON `gorm:"type:jsonb;column:parent_guardian" json:"parent_guardian,omitempty"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Status         KidStatus      `gorm:"embedded" json:"evaluation_status"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Kid) TableName() string { return "kid" }
