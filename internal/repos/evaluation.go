package repos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/types"
)

// EvaluationUpsert is the partial field set applied to a rating record.
// Nil pointers mean "leave the stored value alone".
type EvaluationUpsert struct {
	Key          types.EvaluationKey
	SubcampID    uuid.UUID
	Rating       *int
	Comment      *string
	SubmittedAt  *time.Time
	AutoSaveMeta []byte
}

// BulkOutcome reports per-record results of a bulk upsert. The batch is
// not atomic: earlier records stay applied when a later one fails.
type BulkOutcome struct {
	Saved   int
	Created int
	Failed  int
}

type LeaderboardRow struct {
	SubcampID            uuid.UUID
	SubcampName          string
	SubcampDescription   string
	TotalEvaluations     int
	CompletedEvaluations int
}

type SubcampAggregateRow struct {
	TotalEvaluations     int
	CompletedEvaluations int
	AverageRating        float64
}

type EvaluationRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, up EvaluationUpsert) (created bool, err error)
	BulkUpsert(ctx context.Context, tx *gorm.DB, ups []EvaluationUpsert) (BulkOutcome, error)
	GetByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) ([]*types.Evaluation, error)
	GetByKid(ctx context.Context, tx *gorm.DB, kidID uuid.UUID) ([]*types.Evaluation, error)
	MarkSubmitted(ctx context.Context, tx *gorm.DB, key types.EvaluationKey, at time.Time) error
	CountByKid(ctx context.Context, tx *gorm.DB, kidID uuid.UUID, completedOnly bool) (int64, error)
	CountByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID, completedOnly bool) (int64, error)
	CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error)
	CompletedKeysByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (map[types.EvaluationKey]bool, error)
	LeaderboardRows(ctx context.Context, tx *gorm.DB, campID uuid.UUID) ([]LeaderboardRow, error)
	SubcampAggregate(ctx context.Context, tx *gorm.DB, subcampID uuid.UUID) (SubcampAggregateRow, error)
}

type evaluationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRepo {
	repoLog := baseLog.With("repo", "EvaluationRepo")
	return &evaluationRepo{db: db, log: repoLog}
}

func (r *evaluationRepo) Upsert(ctx context.Context, tx *gorm.DB, up EvaluationUpsert) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if !up.Key.Valid() {
		return false, errors.New("evaluation key is incomplete")
	}

	updates := upsertUpdates(up)

	var existing types.Evaluation
	err := transaction.WithContext(ctx).
		Where("leader_id = ? AND kid_id = ? AND question_id = ?", up.Key.LeaderID, up.Key.KidID, up.Key.QuestionID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := &types.Evaluation{
			LeaderID:     up.Key.LeaderID,
			KidID:        up.Key.KidID,
			QuestionID:   up.Key.QuestionID,
			SubcampID:    up.SubcampID,
			Rating:       up.Rating,
			IsCompleted:  types.Completed(up.Rating),
			LastModified: time.Now().UTC(),
			SubmittedAt:  up.SubmittedAt,
		}
		if up.Comment != nil {
			row.Comment = *up.Comment
		}
		if up.SubmittedAt != nil {
			row.IsCompleted = true
		}
		if len(up.AutoSaveMeta) > 0 {
			row.AutoSaveMeta = up.AutoSaveMeta
		}
		createErr := transaction.WithContext(ctx).Create(row).Error
		if createErr != nil && isDuplicateKey(createErr) {
			// Lost a create race on the unique composite index; the
			// record exists now, so fall through to a merge.
			return false, transaction.WithContext(ctx).
				Model(&types.Evaluation{}).
				Where("leader_id = ? AND kid_id = ? AND question_id = ?", up.Key.LeaderID, up.Key.KidID, up.Key.QuestionID).
				Updates(updates).Error
		}
		return createErr == nil, createErr
	}
	if err != nil {
		return false, err
	}

	return false, transaction.WithContext(ctx).
		Model(&types.Evaluation{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error
}

// upsertUpdates builds the column merge for an existing record. The
// version bump rides along as a SQL expression so every merge path,
// including the create-race fallback, counts the write.
func upsertUpdates(up EvaluationUpsert) map[string]interface{} {
	updates := map[string]interface{}{
		"last_modified": time.Now().UTC(),
		"version":       gorm.Expr("version + 1"),
	}
	if up.SubcampID != uuid.Nil {
		updates["subcamp_id"] = up.SubcampID
	}
	if up.Rating != nil {
		updates["rating"] = *up.Rating
		updates["is_completed"] = types.Completed(up.Rating)
	}
	if up.Comment != nil {
		updates["comment"] = *up.Comment
	}
	if up.SubmittedAt != nil {
		updates["submitted_at"] = *up.SubmittedAt
		updates["is_completed"] = true
	}
	if len(up.AutoSaveMeta) > 0 {
		updates["auto_save_meta"] = up.AutoSaveMeta
	}
	return updates
}

func (r *evaluationRepo) BulkUpsert(ctx context.Context, tx *gorm.DB, ups []EvaluationUpsert) (BulkOutcome, error) {
	var outcome BulkOutcome
	var firstErr error
	for _, up := range ups {
		created, err := r.Upsert(ctx, tx, up)
		if err != nil {
			outcome.Failed++
			if firstErr == nil {
				firstErr = err
			}
			r.log.Warn("Bulk upsert record failed", "leader_id", up.Key.LeaderID, "question_id", up.Key.QuestionID, "error", err)
			continue
		}
		outcome.Saved++
		if created {
			outcome.Created++
		}
	}
	return outcome, firstErr
}

func (r *evaluationRepo) GetByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) ([]*types.Evaluation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Evaluation
	if leaderID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Kid").
		Preload("Question").
		Joins("JOIN question ON question.id = evaluation.question_id").
		Where("evaluation.leader_id = ?", leaderID).
		Order("question.question_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *evaluationRepo) GetByKid(ctx context.Context, tx *gorm.DB, kidID uuid.UUID) ([]*types.Evaluation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Evaluation
	if kidID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Leader").
		Preload("Question").
		Joins("JOIN question ON question.id = evaluation.question_id").
		Where("evaluation.kid_id = ?", kidID).
		Order("question.question_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *evaluationRepo) MarkSubmitted(ctx context.Context, tx *gorm.DB, key types.EvaluationKey, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Evaluation{}).
		Where("leader_id = ? AND kid_id = ? AND question_id = ?", key.LeaderID, key.KidID, key.QuestionID).
		Updates(map[string]interface{}{
			"submitted_at":  at,
			"is_completed":  true,
			"last_modified": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *evaluationRepo) CountByKid(ctx context.Context, tx *gorm.DB, kidID uuid.UUID, completedOnly bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Evaluation{}).Where("kid_id = ?", kidID)
	if completedOnly {
		q = q.Where("is_completed = ?", true)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *evaluationRepo) CountByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID, completedOnly bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Evaluation{}).Where("leader_id = ?", leaderID)
	if completedOnly {
		q = q.Where("is_completed = ?", true)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *evaluationRepo) CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(subcampIDs) == 0 {
		return 0, nil
	}
	q := transaction.WithContext(ctx).Model(&types.Evaluation{}).Where("subcamp_id IN ?", subcampIDs)
	if completedOnly {
		q = q.Where("is_completed = ?", true)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *evaluationRepo) CompletedKeysByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (map[types.EvaluationKey]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []types.Evaluation
	if err := transaction.WithContext(ctx).
		Select("leader_id", "kid_id", "question_id").
		Where("leader_id = ? AND is_completed = ?", leaderID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	keys := make(map[types.EvaluationKey]bool, len(rows))
	for _, row := range rows {
		keys[types.EvaluationKey{LeaderID: row.LeaderID, KidID: row.KidID, QuestionID: row.QuestionID}] = true
	}
	return keys, nil
}

func (r *evaluationRepo) LeaderboardRows(ctx context.Context, tx *gorm.DB, campID uuid.UUID) ([]LeaderboardRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []LeaderboardRow
	err := transaction.WithContext(ctx).
		Model(&types.Evaluation{}).
		Select(`evaluation.subcamp_id as subcamp_id,
			subcamp.name as subcamp_name,
			subcamp.description as subcamp_description,
			count(*) as total_evaluations,
			count(*) filter (where evaluation.is_completed) as completed_evaluations`).
		Joins("JOIN subcamp ON subcamp.id = evaluation.subcamp_id").
		Where("subcamp.camp_id = ?", campID).
		Group("evaluation.subcamp_id, subcamp.name, subcamp.description").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *evaluationRepo) SubcampAggregate(ctx context.Context, tx *gorm.DB, subcampID uuid.UUID) (SubcampAggregateRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row SubcampAggregateRow
	err := transaction.WithContext(ctx).
		Model(&types.Evaluation{}).
		Select(`count(*) as total_evaluations,
			count(*) filter (where is_completed) as completed_evaluations,
			coalesce(avg(rating) filter (where rating > 0), 0) as average_rating`).
		Where("subcamp_id = ?", subcampID).
		Scan(&row).Error
	return row, err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "sqlstate 23505")
}
