package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxCommentLength bounds the freeform note on a single rating.
const MaxCommentLength = 2000

// Evaluation is one leader's rating of one kid on one question. The
// (leader, kid, question) triple is unique; all writes are upserts keyed
// on it. It is the single source of truth the rollups on Leader, Kid and
// Subcamp are derived from.
type Evaluation struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LeaderID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_leader_kid_question,unique" json:"leader_id"`
	Leader       *Leader        `gorm:"constraint:OnDelete:CASCADE;foreignKey:LeaderID;references:ID" json:"leader,omitempty"`
	KidID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_leader_kid_question,unique" json:"kid_id"`
	Kid          *Kid           `gorm:"constraint:OnDelete:CASCADE;foreignKey:KidID;references:ID" json:"kid,omitempty"`
	QuestionID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_leader_kid_question,unique" json:"question_id"`
	Question     *Question      `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	SubcampID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_subcamp_completed" json:"subcamp_id"`
	Rating       *int           `gorm:"column:rating" json:"rating,omitempty"`
	Comment      string         `gorm:"column:comment" json:"comment,omitempty"`
	IsCompleted  bool           `gorm:"column:is_completed;not null;default:false;index:idx_subcamp_completed" json:"is_completed"`
	Version      int            `gorm:"column:version;not null;default:1" json:"version"`
	SubmittedAt  *time.Time     `gorm:"column:submitted_at;index" json:"submitted_at,omitempty"`
	LastModified time.Time      `gorm:"column:last_modified;not null;default:now()" json:"last_modified"`
	AutoSaveMeta datatypes.JSON `gorm:"type:jsonb;column:auto_save_meta" json:"auto_save_meta,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Evaluation) TableName() string { return "evaluation" }

// EvaluationKey identifies a single rating record.
type EvaluationKey struct {
	LeaderID   uuid.UUID `json:"leader_id"`
	KidID      uuid.UUID `json:"kid_id"`
	QuestionID uuid.UUID `json:"question_id"`
}

func (k EvaluationKey) Valid() bool {
	return k.LeaderID != uuid.Nil && k.KidID != uuid.Nil && k.QuestionID != uuid.Nil
}

// Completed reports whether a rating value counts as a completed answer.
func Completed(rating *int) bool {
	return rating != nil && *rating > 0
}

// AutoSaveMeta mirrors the client metadata recorded alongside auto-saved
// ratings.
type AutoSaveMeta struct {
	SessionID  string `json:"session_id,omitempty"`
	DeviceInfo string `json:"device_info,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
}
