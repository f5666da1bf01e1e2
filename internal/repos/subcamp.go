package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/types"
)

type SubcampRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Subcamp, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Subcamp, error)
	GetByCamp(ctx context.Context, tx *gorm.DB, campID uuid.UUID) ([]*types.Subcamp, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.Subcamp) (*types.Subcamp, error)
	UpdateStats(ctx context.Context, tx *gorm.DB, id uuid.UUID, stats types.SubcampStats) error
}

type subcampRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubcampRepo(db *gorm.DB, baseLog *logger.Logger) SubcampRepo {
	repoLog := baseLog.With("repo", "SubcampRepo")
	return &subcampRepo{db: db, log: repoLog}
}

func (r *subcampRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Subcamp, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subcamp
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subcampRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Subcamp, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Subcamp
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *subcampRepo) GetByCamp(ctx context.Context, tx *gorm.DB, campID uuid.UUID) ([]*types.Subcamp, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subcamp
	if campID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("camp_id = ?", campID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subcampRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Subcamp) (*types.Subcamp, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *subcampRepo) UpdateStats(ctx context.Context, tx *gorm.DB, id uuid.UUID, stats types.SubcampStats) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Subcamp{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stats_total_evaluations":       stats.TotalEvaluations,
			"stats_completed_evaluations":   stats.CompletedEvaluations,
			"stats_in_progress_evaluations": stats.InProgressEvaluations,
			"stats_completion_percentage":   stats.CompletionPercentage,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
