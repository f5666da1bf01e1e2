package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/types"
)

type QuestionRepo interface {
	GetAllActive(ctx context.Context, tx *gorm.DB) ([]*types.Question, error)
	GetActiveByCategory(ctx context.Context, tx *gorm.DB, category string) ([]*types.Question, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Question, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.Question) (*types.Question, error)
	CountActive(ctx context.Context, tx *gorm.DB) (int64, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) GetAllActive(ctx context.Context, tx *gorm.DB) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Question
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("question_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) GetActiveByCategory(ctx context.Context, tx *gorm.DB, category string) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Question
	if err := transaction.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true).
		Order("question_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Question
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Question
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Question) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *questionRepo) CountActive(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Question{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
