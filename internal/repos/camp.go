package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/types"
)

type CampRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Camp, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Camp, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.Camp) (*types.Camp, error)
}

type campRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCampRepo(db *gorm.DB, baseLog *logger.Logger) CampRepo {
	repoLog := baseLog.With("repo", "CampRepo")
	return &campRepo{db: db, log: repoLog}
}

func (r *campRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Camp, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Camp
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *campRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Camp, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Camp
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *campRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Camp) (*types.Camp, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
