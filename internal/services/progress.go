package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/observability"
	"github.com/campstack/evalboard-backend/internal/platform/apierr"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/repos"
	"github.com/campstack/evalboard-backend/internal/types"
)

// ProgressService recomputes the derived rollups cached on kid, leader
// and subcamp rows. Rollups are projections of evaluation rows: a failed
// recompute leaves a stale cache, never a failed write, so the
// RecomputeAfterWrite entry point logs and swallows errors.
type ProgressService interface {
	RecomputeKid(ctx context.Context, tx *gorm.DB, kidID uuid.UUID) error
	RecomputeLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) error
	RecomputeSubcamp(ctx context.Context, tx *gorm.DB, subcampID uuid.UUID) error
	RecomputeAfterWrite(ctx context.Context, leaderID uuid.UUID, kidIDs []uuid.UUID)
	MarkLeaderSubmitted(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID, at time.Time) error
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	kidRepo      repos.KidRepo
	leaderRepo   repos.LeaderRepo
	questionRepo repos.QuestionRepo
	evalRepo     repos.EvaluationRepo
	subcampRepo  repos.SubcampRepo
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	kidRepo repos.KidRepo,
	leaderRepo repos.LeaderRepo,
	questionRepo repos.QuestionRepo,
	evalRepo repos.EvaluationRepo,
	subcampRepo repos.SubcampRepo,
) ProgressService {
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		kidRepo:      kidRepo,
		leaderRepo:   leaderRepo,
		questionRepo: questionRepo,
		evalRepo:     evalRepo,
		subcampRepo:  subcampRepo,
	}
}

func (s *progressService) RecomputeKid(ctx context.Context, tx *gorm.DB, kidID uuid.UUID) error {
	kid, err := s.kidRepo.GetByID(ctx, tx, kidID)
	if err != nil {
		return apierr.Aggregation(err)
	}

	totalQuestions, err := s.questionRepo.CountActive(ctx, tx)
	if err != nil {
		return apierr.Aggregation(err)
	}
	completed, err := s.evalRepo.CountByKid(ctx, tx, kidID, true)
	if err != nil {
		return apierr.Aggregation(err)
	}

	pct := types.Percentage(int(completed), int(totalQuestions))
	now := time.Now().UTC()
	status := types.KidStatus{
		IsStarted:          completed > 0,
		IsCompleted:        totalQuestions > 0 && pct == 100,
		CompletedQuestions: int(completed),
		TotalQuestions:     int(totalQuestions),
		Percentage:         pct,
		LastEvaluated:      &now,
		SubmittedAt:        kid.Status.SubmittedAt,
	}
	// First time the kid reaches 100%, pin the completion timestamp.
	if status.IsCompleted && kid.Status.SubmittedAt == nil {
		status.SubmittedAt = &now
	}

	if err := s.kidRepo.UpdateStatus(ctx, tx, kidID, status); err != nil {
		return apierr.Aggregation(err)
	}
	return nil
}

func (s *progressService) RecomputeLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) error {
	leader, err := s.leaderRepo.GetByID(ctx, tx, leaderID)
	if err != nil {
		return apierr.Aggregation(err)
	}

	kidCount, err := s.kidRepo.CountByLeader(ctx, tx, leaderID)
	if err != nil {
		return apierr.Aggregation(err)
	}
	completedKids, err := s.kidRepo.CountCompletedByLeader(ctx, tx, leaderID)
	if err != nil {
		return apierr.Aggregation(err)
	}
	activeQuestions, err := s.questionRepo.CountActive(ctx, tx)
	if err != nil {
		return apierr.Aggregation(err)
	}
	completedQuestions, err := s.evalRepo.CountByLeader(ctx, tx, leaderID, true)
	if err != nil {
		return apierr.Aggregation(err)
	}

	totalQuestions := int(kidCount) * int(activeQuestions)
	pct := types.Percentage(int(completedQuestions), totalQuestions)
	now := time.Now().UTC()
	progress := types.LeaderProgress{
		TotalKids:          int(kidCount),
		CompletedKids:      int(completedKids),
		TotalQuestions:     totalQuestions,
		CompletedQuestions: int(completedQuestions),
		Percentage:         pct,
		Status:             types.StatusForPercentage(pct),
		LastUpdated:        &now,
		SubmittedAt:        leader.Progress.SubmittedAt,
	}
	// A submitted leader stays submitted even if the rubric set shifts
	// underneath the percentage.
	if leader.Progress.SubmittedAt != nil {
		progress.Status = types.ProgressCompleted
	}

	if err := s.leaderRepo.UpdateProgress(ctx, tx, leaderID, progress); err != nil {
		return apierr.Aggregation(err)
	}
	return nil
}

func (s *progressService) RecomputeSubcamp(ctx context.Context, tx *gorm.DB, subcampID uuid.UUID) error {
	agg, err := s.evalRepo.SubcampAggregate(ctx, tx, subcampID)
	if err != nil {
		return apierr.Aggregation(err)
	}

	stats := types.SubcampStats{
		TotalEvaluations:      agg.TotalEvaluations,
		CompletedEvaluations:  agg.CompletedEvaluations,
		InProgressEvaluations: agg.TotalEvaluations - agg.CompletedEvaluations,
		CompletionPercentage:  types.Percentage(agg.CompletedEvaluations, agg.TotalEvaluations),
	}
	if err := s.subcampRepo.UpdateStats(ctx, tx, subcampID, stats); err != nil {
		return apierr.Aggregation(err)
	}
	return nil
}

// RecomputeAfterWrite is the post-write hook fired after every
// successful evaluation write. Failures must never surface to the write
// that triggered them.
func (s *progressService) RecomputeAfterWrite(ctx context.Context, leaderID uuid.UUID, kidIDs []uuid.UUID) {
	for _, kidID := range kidIDs {
		if err := s.RecomputeKid(ctx, nil, kidID); err != nil {
			observability.Current().IncAggregationFailure("kid")
			s.log.Warn("Kid rollup recompute failed", "kid_id", kidID, "error", err)
		}
	}
	if leaderID != uuid.Nil {
		if err := s.RecomputeLeader(ctx, nil, leaderID); err != nil {
			observability.Current().IncAggregationFailure("leader")
			s.log.Warn("Leader rollup recompute failed", "leader_id", leaderID, "error", err)
		}
	}
}

func (s *progressService) MarkLeaderSubmitted(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID, at time.Time) error {
	leader, err := s.leaderRepo.GetByID(ctx, tx, leaderID)
	if err != nil {
		return err
	}

	progress := leader.Progress
	progress.Status = types.ProgressCompleted
	progress.LastUpdated = &at
	if progress.SubmittedAt == nil {
		progress.SubmittedAt = &at
	}
	return s.leaderRepo.UpdateProgress(ctx, tx, leaderID, progress)
}
