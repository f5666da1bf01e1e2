package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Camp struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	Location    string         `gorm:"column:location" json:"location,omitempty"`
	StartDate   *time.Time     `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate     *time.Time     `gorm:"column:end_date" json:"end_date,omitempty"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Camp) TableName() string { return "camp" }
