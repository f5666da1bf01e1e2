package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/cache"
	"github.com/campstack/evalboard-backend/internal/observability"
	"github.com/campstack/evalboard-backend/internal/platform/apierr"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/repos"
	"github.com/campstack/evalboard-backend/internal/types"
)

// EvaluationEntry is one rating record in an auto-save or submission
// batch. Nil Rating/Comment mean the field was not touched.
type EvaluationEntry struct {
	KidID      uuid.UUID `json:"kid_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Rating     *int      `json:"rating,omitempty"`
	Comment    *string   `json:"comment,omitempty"`
}

type SaveBatchRequest struct {
	LeaderID   uuid.UUID         `json:"leader_id"`
	Entries    []EvaluationEntry `json:"entries"`
	SessionID  string            `json:"session_id,omitempty"`
	DeviceInfo string            `json:"device_info,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty"`
}

type SaveBatchResult struct {
	Saved   int `json:"saved"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

type SubmitResult struct {
	Submitted   int       `json:"submitted"`
	SubmittedAt time.Time `json:"submitted_at"`
	AlreadyDone bool      `json:"already_submitted"`
}

type SubmitReadiness struct {
	CanSubmit     bool `json:"can_submit"`
	TotalRequired int  `json:"total_required"`
	Completed     int  `json:"completed"`
	Incomplete    int  `json:"incomplete"`
}

type EvaluationService interface {
	ListByLeader(ctx context.Context, leaderID uuid.UUID) ([]*types.Evaluation, error)
	ListByKid(ctx context.Context, kidID uuid.UUID) ([]*types.Evaluation, error)
	AutoSave(ctx context.Context, req SaveBatchRequest) (SaveBatchResult, error)
	CanSubmit(ctx context.Context, leaderID uuid.UUID) (SubmitReadiness, error)
	Submit(ctx context.Context, req SaveBatchRequest) (SubmitResult, error)
}

type evaluationService struct {
	db           *gorm.DB
	log          *logger.Logger
	evalRepo     repos.EvaluationRepo
	kidRepo      repos.KidRepo
	leaderRepo   repos.LeaderRepo
	questionRepo repos.QuestionRepo
	subcampRepo  repos.SubcampRepo
	progress     ProgressService
	boardCache   cache.LeaderboardCache
}

func NewEvaluationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	evalRepo repos.EvaluationRepo,
	kidRepo repos.KidRepo,
	leaderRepo repos.LeaderRepo,
	questionRepo repos.QuestionRepo,
	subcampRepo repos.SubcampRepo,
	progress ProgressService,
	boardCache cache.LeaderboardCache,
) EvaluationService {
	return &evaluationService{
		db:           db,
		log:          baseLog.With("service", "EvaluationService"),
		evalRepo:     evalRepo,
		kidRepo:      kidRepo,
		leaderRepo:   leaderRepo,
		questionRepo: questionRepo,
		subcampRepo:  subcampRepo,
		progress:     progress,
		boardCache:   boardCache,
	}
}

func (s *evaluationService) ListByLeader(ctx context.Context, leaderID uuid.UUID) ([]*types.Evaluation, error) {
	if leaderID == uuid.Nil {
		return nil, apierr.Validation(errors.New("leader id is required"))
	}
	return s.evalRepo.GetByLeader(ctx, nil, leaderID)
}

func (s *evaluationService) ListByKid(ctx context.Context, kidID uuid.UUID) ([]*types.Evaluation, error) {
	if kidID == uuid.Nil {
		return nil, apierr.Validation(errors.New("kid id is required"))
	}
	return s.evalRepo.GetByKid(ctx, nil, kidID)
}

// validateBatch checks every entry before anything is written: the kid
// must belong to the leader, the rating must sit inside the question's
// scale, the comment must fit. It returns the upserts ready for the
// store plus the distinct kids touched.
func (s *evaluationService) validateBatch(ctx context.Context, req SaveBatchRequest, submittedAt *time.Time) ([]repos.EvaluationUpsert, []uuid.UUID, error) {
	if req.LeaderID == uuid.Nil {
		return nil, nil, apierr.Validation(errors.New("leader id is required"))
	}
	if len(req.Entries) == 0 {
		return nil, nil, apierr.Validation(errors.New("no evaluation entries provided"))
	}

	leader, err := s.leaderRepo.GetByID(ctx, nil, req.LeaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.NotFound(fmt.Errorf("leader %s not found", req.LeaderID))
		}
		return nil, nil, apierr.Transient(err)
	}

	kids, err := s.kidRepo.GetByLeader(ctx, nil, req.LeaderID)
	if err != nil {
		return nil, nil, apierr.Transient(err)
	}
	kidSubcamp := make(map[uuid.UUID]uuid.UUID, len(kids))
	for _, kid := range kids {
		kidSubcamp[kid.ID] = kid.SubcampID
	}

	questionIDs := make([]uuid.UUID, 0, len(req.Entries))
	seenQuestion := make(map[uuid.UUID]bool, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.QuestionID != uuid.Nil && !seenQuestion[entry.QuestionID] {
			seenQuestion[entry.QuestionID] = true
			questionIDs = append(questionIDs, entry.QuestionID)
		}
	}
	questions, err := s.questionRepo.GetByIDs(ctx, nil, questionIDs)
	if err != nil {
		return nil, nil, apierr.Transient(err)
	}
	questionByID := make(map[uuid.UUID]*types.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	var meta []byte
	if req.SessionID != "" || req.DeviceInfo != "" || req.IPAddress != "" {
		meta, err = json.Marshal(types.AutoSaveMeta{
			SessionID:  req.SessionID,
			DeviceInfo: req.DeviceInfo,
			IPAddress:  req.IPAddress,
		})
		if err != nil {
			return nil, nil, apierr.Validation(err)
		}
	}

	ups := make([]repos.EvaluationUpsert, 0, len(req.Entries))
	touched := make([]uuid.UUID, 0, len(kids))
	seenKid := make(map[uuid.UUID]bool, len(kids))
	for i, entry := range req.Entries {
		key := types.EvaluationKey{LeaderID: leader.ID, KidID: entry.KidID, QuestionID: entry.QuestionID}
		if !key.Valid() {
			return nil, nil, apierr.Validation(fmt.Errorf("entry %d: kid id and question id are required", i))
		}
		subcampID, ok := kidSubcamp[entry.KidID]
		if !ok {
			return nil, nil, apierr.Validation(fmt.Errorf("entry %d: kid %s is not assigned to leader %s", i, entry.KidID, leader.ID))
		}
		question, ok := questionByID[entry.QuestionID]
		if !ok {
			return nil, nil, apierr.Validation(fmt.Errorf("entry %d: question %s not found", i, entry.QuestionID))
		}
		if entry.Rating != nil {
			if *entry.Rating < question.ScaleMin || *entry.Rating > question.ScaleMax {
				return nil, nil, apierr.Validation(fmt.Errorf("entry %d: rating %d outside scale %d-%d", i, *entry.Rating, question.ScaleMin, question.ScaleMax))
			}
		}
		if entry.Comment != nil && len(*entry.Comment) > types.MaxCommentLength {
			return nil, nil, apierr.Validation(fmt.Errorf("entry %d: comment exceeds %d characters", i, types.MaxCommentLength))
		}

		ups = append(ups, repos.EvaluationUpsert{
			Key:          key,
			SubcampID:    subcampID,
			Rating:       entry.Rating,
			Comment:      entry.Comment,
			SubmittedAt:  submittedAt,
			AutoSaveMeta: meta,
		})
		if !seenKid[entry.KidID] {
			seenKid[entry.KidID] = true
			touched = append(touched, entry.KidID)
		}
	}
	return ups, touched, nil
}

func (s *evaluationService) AutoSave(ctx context.Context, req SaveBatchRequest) (SaveBatchResult, error) {
	ups, touched, err := s.validateBatch(ctx, req, nil)
	if err != nil {
		return SaveBatchResult{}, err
	}

	outcome, firstErr := s.evalRepo.BulkUpsert(ctx, nil, ups)
	result := SaveBatchResult{Saved: outcome.Saved, Created: outcome.Created, Failed: outcome.Failed}
	observability.Current().ObserveAutoSave(outcome.Saved, outcome.Failed)

	if outcome.Saved > 0 {
		s.progress.RecomputeAfterWrite(ctx, req.LeaderID, touched)
	}
	if outcome.Failed > 0 {
		s.log.Warn("Auto-save batch partially failed",
			"leader_id", req.LeaderID,
			"saved", outcome.Saved,
			"failed", outcome.Failed,
		)
		if outcome.Saved == 0 {
			return result, apierr.Transient(firstErr)
		}
	}
	return result, nil
}

// CanSubmit reports whether every kid/question pair assigned to the
// leader has a completed rating record.
func (s *evaluationService) CanSubmit(ctx context.Context, leaderID uuid.UUID) (SubmitReadiness, error) {
	if leaderID == uuid.Nil {
		return SubmitReadiness{}, apierr.Validation(errors.New("leader id is required"))
	}

	kids, err := s.kidRepo.GetByLeader(ctx, nil, leaderID)
	if err != nil {
		return SubmitReadiness{}, apierr.Transient(err)
	}
	questions, err := s.questionRepo.GetAllActive(ctx, nil)
	if err != nil {
		return SubmitReadiness{}, apierr.Transient(err)
	}
	completed, err := s.evalRepo.CompletedKeysByLeader(ctx, nil, leaderID)
	if err != nil {
		return SubmitReadiness{}, apierr.Transient(err)
	}

	readiness := SubmitReadiness{TotalRequired: len(kids) * len(questions)}
	for _, kid := range kids {
		for _, q := range questions {
			key := types.EvaluationKey{LeaderID: leaderID, KidID: kid.ID, QuestionID: q.ID}
			if completed[key] {
				readiness.Completed++
			}
		}
	}
	readiness.Incomplete = readiness.TotalRequired - readiness.Completed
	readiness.CanSubmit = readiness.TotalRequired > 0 && readiness.Incomplete == 0
	return readiness, nil
}

// Submit finalizes a leader's evaluations. The payload is applied
// first so last-second edits count, then readiness is checked against
// the store before anything is stamped. The stamp covers every record
// in the leader's set, including ones auto-saved earlier and absent
// from this payload. Re-submitting an already submitted leader is a
// no-op, not an error.
func (s *evaluationService) Submit(ctx context.Context, req SaveBatchRequest) (SubmitResult, error) {
	ups, touched, err := s.validateBatch(ctx, req, nil)
	if err != nil {
		observability.Current().IncSubmission("rejected")
		return SubmitResult{}, err
	}

	leader, err := s.leaderRepo.GetByID(ctx, nil, req.LeaderID)
	if err != nil {
		return SubmitResult{}, apierr.Transient(err)
	}
	if leader.Progress.SubmittedAt != nil {
		observability.Current().IncSubmission("duplicate")
		return SubmitResult{
			SubmittedAt: *leader.Progress.SubmittedAt,
			AlreadyDone: true,
		}, nil
	}

	if outcome, firstErr := s.evalRepo.BulkUpsert(ctx, nil, ups); outcome.Failed > 0 {
		observability.Current().IncSubmission("failed")
		return SubmitResult{}, apierr.Transient(firstErr)
	}
	for _, kidID := range touched {
		if err := s.progress.RecomputeKid(ctx, nil, kidID); err != nil {
			s.log.Warn("Kid rollup recompute failed during submit", "kid_id", kidID, "error", err)
		}
	}

	readiness, err := s.CanSubmit(ctx, req.LeaderID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !readiness.CanSubmit {
		observability.Current().IncSubmission("incomplete")
		return SubmitResult{}, apierr.Validation(
			fmt.Errorf("%d of %d evaluations incomplete", readiness.Incomplete, readiness.TotalRequired))
	}

	// The gate checked the store, so the stamp has to as well: every
	// completed record the leader owns gets submitted_at, not just the
	// ones this payload carried.
	now := time.Now().UTC()
	keys, err := s.evalRepo.CompletedKeysByLeader(ctx, nil, req.LeaderID)
	if err != nil {
		observability.Current().IncSubmission("failed")
		return SubmitResult{}, apierr.Transient(err)
	}
	for key := range keys {
		if err := s.evalRepo.MarkSubmitted(ctx, nil, key, now); err != nil {
			observability.Current().IncSubmission("failed")
			return SubmitResult{}, apierr.Transient(err)
		}
	}

	if err := s.progress.MarkLeaderSubmitted(ctx, nil, req.LeaderID, now); err != nil {
		return SubmitResult{}, apierr.Transient(err)
	}
	if err := s.progress.RecomputeSubcamp(ctx, nil, leader.SubcampID); err != nil {
		observability.Current().IncAggregationFailure("subcamp")
		s.log.Warn("Subcamp rollup recompute failed after submit", "subcamp_id", leader.SubcampID, "error", err)
	}
	s.invalidateLeaderboard(ctx, leader.SubcampID)

	observability.Current().IncSubmission("accepted")
	s.log.Info("Leader evaluations submitted",
		"leader_id", req.LeaderID,
		"records", len(keys),
	)
	return SubmitResult{Submitted: len(keys), SubmittedAt: now}, nil
}

func (s *evaluationService) invalidateLeaderboard(ctx context.Context, subcampID uuid.UUID) {
	subcamp, err := s.subcampRepo.GetByID(ctx, nil, subcampID)
	if err != nil {
		s.log.Warn("Leaderboard invalidation skipped", "subcamp_id", subcampID, "error", err)
		return
	}
	s.boardCache.Invalidate(ctx, subcamp.CampID)
}
