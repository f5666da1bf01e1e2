package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/campstack/evalboard-backend/internal/platform/apierr"
	"github.com/campstack/evalboard-backend/internal/types"
)

type evalScene struct {
	*progressScene
	cache  *fakeBoardCache
	eval   EvaluationService
	campID uuid.UUID
}

func newEvalScene(t *testing.T, questionCount int) *evalScene {
	t.Helper()
	ps := newProgressScene(t, questionCount)
	boardCache := newFakeBoardCache()
	eval := NewEvaluationService(nil, testLogger(t), ps.evals, ps.kids, ps.leaders, ps.questions, ps.subcamps, ps.svc, boardCache)
	return &evalScene{
		progressScene: ps,
		cache:         boardCache,
		eval:          eval,
		campID:        ps.subcamps.subcamps[ps.subcampID].CampID,
	}
}

func ratingEntry(kidID, questionID uuid.UUID, rating int) EvaluationEntry {
	return EvaluationEntry{KidID: kidID, QuestionID: questionID, Rating: intPtr(rating)}
}

func TestAutoSaveRejectsOutOfScaleRating(t *testing.T) {
	sc := newEvalScene(t, 1)

	_, err := sc.eval.AutoSave(context.Background(), SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries:  []EvaluationEntry{ratingEntry(sc.kidA.ID, sc.questionIDs[0], 9)},
	})
	if !apierr.IsValidation(err) {
		t.Fatalf("out-of-scale rating: want validation error, got %v", err)
	}
	if len(sc.evals.records) != 0 {
		t.Fatalf("records written on rejected batch: want=0 got=%d", len(sc.evals.records))
	}
}

func TestAutoSaveRejectsOversizedComment(t *testing.T) {
	sc := newEvalScene(t, 1)

	comment := strings.Repeat("x", types.MaxCommentLength+1)
	_, err := sc.eval.AutoSave(context.Background(), SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries:  []EvaluationEntry{{KidID: sc.kidA.ID, QuestionID: sc.questionIDs[0], Comment: &comment}},
	})
	if !apierr.IsValidation(err) {
		t.Fatalf("oversized comment: want validation error, got %v", err)
	}
}

func TestAutoSaveRejectsUnassignedKid(t *testing.T) {
	sc := newEvalScene(t, 1)
	stranger, err := sc.kids.Create(context.Background(), nil, &types.Kid{
		Name: "Stranger", SubcampID: sc.subcampID, LeaderID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create kid: %v", err)
	}

	_, err = sc.eval.AutoSave(context.Background(), SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries:  []EvaluationEntry{ratingEntry(stranger.ID, sc.questionIDs[0], 3)},
	})
	if !apierr.IsValidation(err) {
		t.Fatalf("kid outside roster: want validation error, got %v", err)
	}
}

func TestAutoSaveUnknownLeader(t *testing.T) {
	sc := newEvalScene(t, 1)

	_, err := sc.eval.AutoSave(context.Background(), SaveBatchRequest{
		LeaderID: uuid.New(),
		Entries:  []EvaluationEntry{ratingEntry(sc.kidA.ID, sc.questionIDs[0], 3)},
	})
	if !apierr.IsNotFound(err) {
		t.Fatalf("unknown leader: want not found error, got %v", err)
	}
}

func TestAutoSaveRejectsEmptyBatch(t *testing.T) {
	sc := newEvalScene(t, 1)

	_, err := sc.eval.AutoSave(context.Background(), SaveBatchRequest{LeaderID: sc.leader.ID})
	if !apierr.IsValidation(err) {
		t.Fatalf("empty batch: want validation error, got %v", err)
	}
}

func TestAutoSaveRollsUpProgress(t *testing.T) {
	sc := newEvalScene(t, 1)

	result, err := sc.eval.AutoSave(context.Background(), SaveBatchRequest{
		LeaderID:  sc.leader.ID,
		Entries:   []EvaluationEntry{ratingEntry(sc.kidA.ID, sc.questionIDs[0], 4)},
		SessionID: "session-1",
	})
	if err != nil {
		t.Fatalf("AutoSave: %v", err)
	}
	if result.Saved != 1 || result.Created != 1 || result.Failed != 0 {
		t.Fatalf("result: want saved=1 created=1 failed=0 got=%+v", result)
	}

	kidStatus := sc.kids.statuses[sc.kidA.ID]
	if !kidStatus.IsCompleted || kidStatus.Percentage != 100 {
		t.Fatalf("kid status: want completed at 100%% got=%+v", kidStatus)
	}

	// One of two kids rated on the single question: leader sits at 50%.
	progress := sc.leaders.progress[sc.leader.ID]
	if progress.Percentage != 50 {
		t.Fatalf("leader percentage: want=50 got=%d", progress.Percentage)
	}
	if progress.Status != types.ProgressInProgress {
		t.Fatalf("leader status: want=%q got=%q", types.ProgressInProgress, progress.Status)
	}
}

func TestAutoSaveUpdatesExistingRecord(t *testing.T) {
	sc := newEvalScene(t, 1)
	ctx := context.Background()

	req := SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries:  []EvaluationEntry{ratingEntry(sc.kidA.ID, sc.questionIDs[0], 2)},
	}
	if _, err := sc.eval.AutoSave(ctx, req); err != nil {
		t.Fatalf("first AutoSave: %v", err)
	}
	req.Entries[0].Rating = intPtr(5)
	result, err := sc.eval.AutoSave(ctx, req)
	if err != nil {
		t.Fatalf("second AutoSave: %v", err)
	}
	if result.Saved != 1 || result.Created != 0 {
		t.Fatalf("second save: want saved=1 created=0 got=%+v", result)
	}

	key := types.EvaluationKey{LeaderID: sc.leader.ID, KidID: sc.kidA.ID, QuestionID: sc.questionIDs[0]}
	record := sc.evals.records[key]
	if record == nil || record.Rating == nil || *record.Rating != 5 {
		t.Fatalf("record rating: want=5 got=%+v", record)
	}
	if len(sc.evals.records) != 1 {
		t.Fatalf("record count after upsert: want=1 got=%d", len(sc.evals.records))
	}
}

func TestCanSubmitFailClosed(t *testing.T) {
	sc := newEvalScene(t, 1)
	ctx := context.Background()

	if _, err := sc.eval.AutoSave(ctx, SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries:  []EvaluationEntry{ratingEntry(sc.kidA.ID, sc.questionIDs[0], 4)},
	}); err != nil {
		t.Fatalf("AutoSave: %v", err)
	}

	readiness, err := sc.eval.CanSubmit(ctx, sc.leader.ID)
	if err != nil {
		t.Fatalf("CanSubmit: %v", err)
	}
	if readiness.CanSubmit {
		t.Fatalf("CanSubmit with missing rating: want=false got=true")
	}
	if readiness.TotalRequired != 2 || readiness.Completed != 1 || readiness.Incomplete != 1 {
		t.Fatalf("readiness: want 1/2 complete got=%+v", readiness)
	}
}

func TestCanSubmitEmptyMatrix(t *testing.T) {
	sc := newEvalScene(t, 0)

	readiness, err := sc.eval.CanSubmit(context.Background(), sc.leader.ID)
	if err != nil {
		t.Fatalf("CanSubmit: %v", err)
	}
	if readiness.CanSubmit {
		t.Fatalf("CanSubmit with no active questions: want=false got=true")
	}
	if readiness.TotalRequired != 0 {
		t.Fatalf("TotalRequired: want=0 got=%d", readiness.TotalRequired)
	}
}

func TestSubmitIncompleteRejected(t *testing.T) {
	sc := newEvalScene(t, 1)

	_, err := sc.eval.Submit(context.Background(), SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries:  []EvaluationEntry{ratingEntry(sc.kidA.ID, sc.questionIDs[0], 4)},
	})
	if !apierr.IsValidation(err) {
		t.Fatalf("incomplete submit: want validation error, got %v", err)
	}
	if progress := sc.leaders.progress[sc.leader.ID]; progress.SubmittedAt != nil {
		t.Fatalf("leader stamped on rejected submit: got=%v", progress.SubmittedAt)
	}
	for key, record := range sc.evals.records {
		if record.SubmittedAt != nil {
			t.Fatalf("record %v stamped on rejected submit", key)
		}
	}
}

func TestSubmitStampsRecordsOutsidePayload(t *testing.T) {
	sc := newEvalScene(t, 1)
	ctx := context.Background()

	// Both kids were rated through earlier auto-saves.
	if _, err := sc.eval.AutoSave(ctx, SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries: []EvaluationEntry{
			ratingEntry(sc.kidA.ID, sc.questionIDs[0], 4),
			ratingEntry(sc.kidB.ID, sc.questionIDs[0], 5),
		},
	}); err != nil {
		t.Fatalf("AutoSave: %v", err)
	}

	// The submit payload only carries a last-second edit for kid A.
	result, err := sc.eval.Submit(ctx, SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries:  []EvaluationEntry{ratingEntry(sc.kidA.ID, sc.questionIDs[0], 3)},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Submitted != 2 {
		t.Fatalf("Submitted: want=2 got=%d", result.Submitted)
	}

	keyB := types.EvaluationKey{LeaderID: sc.leader.ID, KidID: sc.kidB.ID, QuestionID: sc.questionIDs[0]}
	if record := sc.evals.records[keyB]; record.SubmittedAt == nil {
		t.Fatalf("record outside payload has no submitted_at after accepted submission")
	}
	for key, record := range sc.evals.records {
		if record.SubmittedAt == nil {
			t.Fatalf("record %v missing submission stamp", key)
		}
	}
}

func TestSubmitCompleteAndIdempotent(t *testing.T) {
	sc := newEvalScene(t, 1)
	ctx := context.Background()

	req := SaveBatchRequest{
		LeaderID: sc.leader.ID,
		Entries: []EvaluationEntry{
			ratingEntry(sc.kidA.ID, sc.questionIDs[0], 4),
			ratingEntry(sc.kidB.ID, sc.questionIDs[0], 5),
		},
	}
	result, err := sc.eval.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.AlreadyDone {
		t.Fatalf("first submit flagged as duplicate")
	}
	if result.Submitted != 2 {
		t.Fatalf("Submitted: want=2 got=%d", result.Submitted)
	}

	progress := sc.leaders.progress[sc.leader.ID]
	if progress.Status != types.ProgressCompleted || progress.SubmittedAt == nil {
		t.Fatalf("leader progress after submit: got=%+v", progress)
	}
	for key, record := range sc.evals.records {
		if record.SubmittedAt == nil {
			t.Fatalf("record %v missing submission stamp", key)
		}
	}
	if len(sc.cache.invalidated) != 1 || sc.cache.invalidated[0] != sc.campID {
		t.Fatalf("cache invalidation: want camp %s got=%v", sc.campID, sc.cache.invalidated)
	}
	stats := sc.subcamps.stats[sc.subcampID]
	if stats.CompletionPercentage != 100 {
		t.Fatalf("subcamp completion: want=100 got=%d", stats.CompletionPercentage)
	}

	key := types.EvaluationKey{LeaderID: sc.leader.ID, KidID: sc.kidA.ID, QuestionID: sc.questionIDs[0]}
	versionBefore := sc.evals.records[key].Version

	again, err := sc.eval.Submit(ctx, req)
	if err != nil {
		t.Fatalf("repeat Submit: %v", err)
	}
	if !again.AlreadyDone {
		t.Fatalf("repeat submit: want already_submitted=true")
	}
	if !again.SubmittedAt.Equal(*progress.SubmittedAt) {
		t.Fatalf("repeat submit timestamp: want=%v got=%v", progress.SubmittedAt, again.SubmittedAt)
	}
	if got := sc.evals.records[key].Version; got != versionBefore {
		t.Fatalf("repeat submit rewrote records: version want=%d got=%d", versionBefore, got)
	}
}
