package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/types"
)

type KidRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Kid, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Kid, error)
	GetByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) ([]*types.Kid, error)
	GetBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID) ([]*types.Kid, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.Kid) (*types.Kid, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.KidStatus) error
	CountByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (int64, error)
	CountCompletedByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (int64, error)
	CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error)
}

type kidRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKidRepo(db *gorm.DB, baseLog *logger.Logger) KidRepo {
	repoLog := baseLog.With("repo", "KidRepo")
	return &kidRepo{db: db, log: repoLog}
}

func (r *kidRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Kid, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Kid
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *kidRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Kid, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Kid
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *kidRepo) GetByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) ([]*types.Kid, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Kid
	if leaderID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("leader_id = ? AND is_active = ?", leaderID, true).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *kidRepo) GetBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID) ([]*types.Kid, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Kid
	if len(subcampIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("subcamp_id IN ? AND is_active = ?", subcampIDs, true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *kidRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Kid) (*types.Kid, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *kidRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(updates) == 0 {
		return nil
	}
	res := transaction.WithContext(ctx).
		Model(&types.Kid{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate is the soft delete used by DELETE /kids/:id.
func (r *kidRepo) Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.Update(ctx, tx, id, map[string]interface{}{"is_active": false})
}

func (r *kidRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.KidStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Kid{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status_is_started":          status.IsStarted,
			"status_is_completed":        status.IsCompleted,
			"status_completed_questions": status.CompletedQuestions,
			"status_total_questions":     status.TotalQuestions,
			"status_percentage":          status.Percentage,
			"status_last_evaluated":      status.LastEvaluated,
			"status_submitted_at":        status.SubmittedAt,
		}).Error
}

func (r *kidRepo) CountByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Kid{}).
		Where("leader_id = ? AND is_active = ?", leaderID, true).
		Count(&count).Error
	return count, err
}

func (r *kidRepo) CountCompletedByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Kid{}).
		Where("leader_id = ? AND is_active = ? AND status_is_completed = ?", leaderID, true, true).
		Count(&count).Error
	return count, err
}

func (r *kidRepo) CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(subcampIDs) == 0 {
		return 0, nil
	}
	q := transaction.WithContext(ctx).
		Model(&types.Kid{}).
		Where("subcamp_id IN ? AND is_active = ?", subcampIDs, true)
	if completedOnly {
		q = q.Where("status_is_completed = ?", true)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
