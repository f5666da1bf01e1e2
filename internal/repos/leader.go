package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/types"
)

type LeaderRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Leader, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Leader, error)
	GetBySubcamp(ctx context.Context, tx *gorm.DB, subcampID uuid.UUID) ([]*types.Leader, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.Leader) (*types.Leader, error)
	UpdateProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, progress types.LeaderProgress) error
	CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error)
}

type leaderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeaderRepo(db *gorm.DB, baseLog *logger.Logger) LeaderRepo {
	repoLog := baseLog.With("repo", "LeaderRepo")
	return &leaderRepo{db: db, log: repoLog}
}

func (r *leaderRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Leader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Leader
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *leaderRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Leader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Leader
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *leaderRepo) GetBySubcamp(ctx context.Context, tx *gorm.DB, subcampID uuid.UUID) ([]*types.Leader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Leader
	if subcampID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("subcamp_id = ?", subcampID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *leaderRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Leader) (*types.Leader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *leaderRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, progress types.LeaderProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Leader{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress_total_kids":          progress.TotalKids,
			"progress_completed_kids":      progress.CompletedKids,
			"progress_total_questions":     progress.TotalQuestions,
			"progress_completed_questions": progress.CompletedQuestions,
			"progress_percentage":          progress.Percentage,
			"progress_status":              progress.Status,
			"progress_last_updated":        progress.LastUpdated,
			"progress_submitted_at":        progress.SubmittedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *leaderRepo) CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(subcampIDs) == 0 {
		return 0, nil
	}
	q := transaction.WithContext(ctx).
		Model(&types.Leader{}).
		Where("subcamp_id IN ?", subcampIDs)
	if completedOnly {
		q = q.Where("progress_status = ?", types.ProgressCompleted)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
