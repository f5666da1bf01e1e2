package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeRating  = "rating"
	QuestionTypeComment = "comment"
	QuestionTypeBoth    = "both"
)

var QuestionCategories = []string{
	"participation", "teamwork", "leadership", "communication",
	"behavior", "creativity", "problem-solving", "social-skills",
}

type Question struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Text        string         `gorm:"column:text;not null" json:"text"`
	Category    string         `gorm:"column:category;not null;default:'behavior';index:idx_question_category_order" json:"category"`
	Type        string         `gorm:"column:type;not null;default:'both'" json:"type"`
	ScaleMin    int            `gorm:"column:scale_min;not null;default:1" json:"scale_min"`
	ScaleMax    int            `gorm:"column:scale_max;not null;default:5" json:"scale_max"`
	Order       int            `gorm:"column:question_order;not null;default:0;index:idx_question_category_order" json:"order"`
	IsRequired  bool           `gorm:"column:is_required;not null;default:true" json:"is_required"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	Tips        datatypes.JSON `gorm:"type:jsonb;column:tips" json:"tips,omitempty"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

func ValidCategory(category string) bool {
	for _, c := range QuestionCategories {
		if c == category {
			return true
		}
	}
	return false
}
