package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/repos"
	"github.com/campstack/evalboard-backend/internal/types"
)

func testLogger(t interface{ Fatalf(string, ...interface{}) }) *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// ---- fake repos ----

type fakeCampRepo struct {
	camps map[uuid.UUID]*types.Camp
	err   error
}

func newFakeCampRepo() *fakeCampRepo {
	return &fakeCampRepo{camps: map[uuid.UUID]*types.Camp{}}
}

func (f *fakeCampRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Camp, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Camp
	for _, c := range f.camps {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCampRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Camp, error) {
	if f.err != nil {
		return nil, f.err
	}
	camp, ok := f.camps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return camp, nil
}

func (f *fakeCampRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Camp) (*types.Camp, error) {
	if f.err != nil {
		return nil, f.err
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.camps[row.ID] = row
	return row, nil
}

type fakeSubcampRepo struct {
	subcamps map[uuid.UUID]*types.Subcamp
	stats    map[uuid.UUID]types.SubcampStats
	err      error
}

func newFakeSubcampRepo() *fakeSubcampRepo {
	return &fakeSubcampRepo{
		subcamps: map[uuid.UUID]*types.Subcamp{},
		stats:    map[uuid.UUID]types.SubcampStats{},
	}
}

func (f *fakeSubcampRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Subcamp, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Subcamp
	for _, s := range f.subcamps {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubcampRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Subcamp, error) {
	if f.err != nil {
		return nil, f.err
	}
	subcamp, ok := f.subcamps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return subcamp, nil
}

func (f *fakeSubcampRepo) GetByCamp(ctx context.Context, tx *gorm.DB, campID uuid.UUID) ([]*types.Subcamp, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Subcamp
	for _, s := range f.subcamps {
		if s.CampID == campID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubcampRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Subcamp) (*types.Subcamp, error) {
	if f.err != nil {
		return nil, f.err
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.subcamps[row.ID] = row
	return row, nil
}

func (f *fakeSubcampRepo) UpdateStats(ctx context.Context, tx *gorm.DB, id uuid.UUID, stats types.SubcampStats) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.subcamps[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.stats[id] = stats
	f.subcamps[id].Stats = stats
	return nil
}

type fakeLeaderRepo struct {
	leaders  map[uuid.UUID]*types.Leader
	progress map[uuid.UUID]types.LeaderProgress
	err      error
}

func newFakeLeaderRepo() *fakeLeaderRepo {
	return &fakeLeaderRepo{
		leaders:  map[uuid.UUID]*types.Leader{},
		progress: map[uuid.UUID]types.LeaderProgress{},
	}
}

func (f *fakeLeaderRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Leader, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Leader
	for _, l := range f.leaders {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLeaderRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Leader, error) {
	if f.err != nil {
		return nil, f.err
	}
	leader, ok := f.leaders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return leader, nil
}

func (f *fakeLeaderRepo) GetBySubcamp(ctx context.Context, tx *gorm.DB, subcampID uuid.UUID) ([]*types.Leader, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Leader
	for _, l := range f.leaders {
		if l.SubcampID == subcampID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeaderRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Leader) (*types.Leader, error) {
	if f.err != nil {
		return nil, f.err
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.leaders[row.ID] = row
	return row, nil
}

func (f *fakeLeaderRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, progress types.LeaderProgress) error {
	if f.err != nil {
		return f.err
	}
	leader, ok := f.leaders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.progress[id] = progress
	leader.Progress = progress
	return nil
}

func (f *fakeLeaderRepo) CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	inSet := map[uuid.UUID]bool{}
	for _, id := range subcampIDs {
		inSet[id] = true
	}
	var count int64
	for _, l := range f.leaders {
		if !inSet[l.SubcampID] {
			continue
		}
		if completedOnly && l.Progress.Status != types.ProgressCompleted {
			continue
		}
		count++
	}
	return count, nil
}

type fakeKidRepo struct {
	kids     map[uuid.UUID]*types.Kid
	statuses map[uuid.UUID]types.KidStatus
	err      error
}

func newFakeKidRepo() *fakeKidRepo {
	return &fakeKidRepo{
		kids:     map[uuid.UUID]*types.Kid{},
		statuses: map[uuid.UUID]types.KidStatus{},
	}
}

func (f *fakeKidRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Kid, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Kid
	for _, k := range f.kids {
		if k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeKidRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Kid, error) {
	if f.err != nil {
		return nil, f.err
	}
	kid, ok := f.kids[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return kid, nil
}

func (f *fakeKidRepo) GetByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) ([]*types.Kid, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Kid
	for _, k := range f.kids {
		if k.LeaderID == leaderID && k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeKidRepo) GetBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID) ([]*types.Kid, error) {
	if f.err != nil {
		return nil, f.err
	}
	inSet := map[uuid.UUID]bool{}
	for _, id := range subcampIDs {
		inSet[id] = true
	}
	var out []*types.Kid
	for _, k := range f.kids {
		if inSet[k.SubcampID] && k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeKidRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Kid) (*types.Kid, error) {
	if f.err != nil {
		return nil, f.err
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.IsActive = true
	f.kids[row.ID] = row
	return row, nil
}

func (f *fakeKidRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	kid, ok := f.kids[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		kid.Name = name
	}
	if active, ok := updates["is_active"].(bool); ok {
		kid.IsActive = active
	}
	return nil
}

func (f *fakeKidRepo) Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return f.Update(ctx, tx, id, map[string]interface{}{"is_active": false})
}

func (f *fakeKidRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.KidStatus) error {
	if f.err != nil {
		return f.err
	}
	kid, ok := f.kids[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.statuses[id] = status
	kid.Status = status
	return nil
}

func (f *fakeKidRepo) CountByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for _, k := range f.kids {
		if k.LeaderID == leaderID && k.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeKidRepo) CountCompletedByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for _, k := range f.kids {
		if k.LeaderID == leaderID && k.IsActive && k.Status.IsCompleted {
			count++
		}
	}
	return count, nil
}

func (f *fakeKidRepo) CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	inSet := map[uuid.UUID]bool{}
	for _, id := range subcampIDs {
		inSet[id] = true
	}
	var count int64
	for _, k := range f.kids {
		if !inSet[k.SubcampID] || !k.IsActive {
			continue
		}
		if completedOnly && !k.Status.IsCompleted {
			continue
		}
		count++
	}
	return count, nil
}

type fakeQuestionRepo struct {
	questions map[uuid.UUID]*types.Question
	err       error
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[uuid.UUID]*types.Question{}}
}

func (f *fakeQuestionRepo) GetAllActive(ctx context.Context, tx *gorm.DB) ([]*types.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Question
	for _, q := range f.questions {
		if q.IsActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) GetActiveByCategory(ctx context.Context, tx *gorm.DB, category string) ([]*types.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Question
	for _, q := range f.questions {
		if q.IsActive && q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	question, ok := f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (f *fakeQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Question
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Question) (*types.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.IsActive = true
	f.questions[row.ID] = row
	return row, nil
}

func (f *fakeQuestionRepo) CountActive(ctx context.Context, tx *gorm.DB) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for _, q := range f.questions {
		if q.IsActive {
			count++
		}
	}
	return count, nil
}

type fakeEvaluationRepo struct {
	records         map[types.EvaluationKey]*types.Evaluation
	leaderboardRows []repos.LeaderboardRow
	subcampAggs     map[uuid.UUID]repos.SubcampAggregateRow
	upsertErr       error
	err             error
}

func newFakeEvaluationRepo() *fakeEvaluationRepo {
	return &fakeEvaluationRepo{
		records:     map[types.EvaluationKey]*types.Evaluation{},
		subcampAggs: map[uuid.UUID]repos.SubcampAggregateRow{},
	}
}

func (f *fakeEvaluationRepo) Upsert(ctx context.Context, tx *gorm.DB, up repos.EvaluationUpsert) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	existing, ok := f.records[up.Key]
	if !ok {
		row := &types.Evaluation{
			ID:           uuid.New(),
			LeaderID:     up.Key.LeaderID,
			KidID:        up.Key.KidID,
			QuestionID:   up.Key.QuestionID,
			SubcampID:    up.SubcampID,
			Rating:       up.Rating,
			IsCompleted:  types.Completed(up.Rating),
			SubmittedAt:  up.SubmittedAt,
			LastModified: time.Now().UTC(),
			Version:      1,
		}
		if up.Comment != nil {
			row.Comment = *up.Comment
		}
		if up.SubmittedAt != nil {
			row.IsCompleted = true
		}
		f.records[up.Key] = row
		return true, nil
	}
	if up.Rating != nil {
		existing.Rating = up.Rating
		existing.IsCompleted = types.Completed(up.Rating)
	}
	if up.Comment != nil {
		existing.Comment = *up.Comment
	}
	if up.SubmittedAt != nil {
		existing.SubmittedAt = up.SubmittedAt
		existing.IsCompleted = true
	}
	existing.Version++
	existing.LastModified = time.Now().UTC()
	return false, nil
}

func (f *fakeEvaluationRepo) BulkUpsert(ctx context.Context, tx *gorm.DB, ups []repos.EvaluationUpsert) (repos.BulkOutcome, error) {
	var outcome repos.BulkOutcome
	var firstErr error
	for _, up := range ups {
		created, err := f.Upsert(ctx, tx, up)
		if err != nil {
			outcome.Failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		outcome.Saved++
		if created {
			outcome.Created++
		}
	}
	return outcome, firstErr
}

func (f *fakeEvaluationRepo) GetByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) ([]*types.Evaluation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Evaluation
	for _, e := range f.records {
		if e.LeaderID == leaderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvaluationRepo) GetByKid(ctx context.Context, tx *gorm.DB, kidID uuid.UUID) ([]*types.Evaluation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Evaluation
	for _, e := range f.records {
		if e.KidID == kidID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvaluationRepo) MarkSubmitted(ctx context.Context, tx *gorm.DB, key types.EvaluationKey, at time.Time) error {
	record, ok := f.records[key]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.SubmittedAt = &at
	record.IsCompleted = true
	record.LastModified = at
	return nil
}

func (f *fakeEvaluationRepo) CountByKid(ctx context.Context, tx *gorm.DB, kidID uuid.UUID, completedOnly bool) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for _, e := range f.records {
		if e.KidID != kidID {
			continue
		}
		if completedOnly && !e.IsCompleted {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeEvaluationRepo) CountByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID, completedOnly bool) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for _, e := range f.records {
		if e.LeaderID != leaderID {
			continue
		}
		if completedOnly && !e.IsCompleted {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeEvaluationRepo) CountBySubcamps(ctx context.Context, tx *gorm.DB, subcampIDs []uuid.UUID, completedOnly bool) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	inSet := map[uuid.UUID]bool{}
	for _, id := range subcampIDs {
		inSet[id] = true
	}
	var count int64
	for _, e := range f.records {
		if !inSet[e.SubcampID] {
			continue
		}
		if completedOnly && !e.IsCompleted {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeEvaluationRepo) CompletedKeysByLeader(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID) (map[types.EvaluationKey]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	keys := map[types.EvaluationKey]bool{}
	for key, e := range f.records {
		if e.LeaderID == leaderID && e.IsCompleted {
			keys[key] = true
		}
	}
	return keys, nil
}

func (f *fakeEvaluationRepo) LeaderboardRows(ctx context.Context, tx *gorm.DB, campID uuid.UUID) ([]repos.LeaderboardRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.leaderboardRows, nil
}

func (f *fakeEvaluationRepo) SubcampAggregate(ctx context.Context, tx *gorm.DB, subcampID uuid.UUID) (repos.SubcampAggregateRow, error) {
	if f.err != nil {
		return repos.SubcampAggregateRow{}, f.err
	}
	if agg, ok := f.subcampAggs[subcampID]; ok {
		return agg, nil
	}
	var agg repos.SubcampAggregateRow
	for _, e := range f.records {
		if e.SubcampID != subcampID {
			continue
		}
		agg.TotalEvaluations++
		if e.IsCompleted {
			agg.CompletedEvaluations++
		}
	}
	return agg, nil
}

// fakeBoardCache records invalidations; Get always misses unless primed.
type fakeBoardCache struct {
	boards      map[uuid.UUID]*types.Leaderboard
	invalidated []uuid.UUID
	hits        int
	misses      int
}

func newFakeBoardCache() *fakeBoardCache {
	return &fakeBoardCache{boards: map[uuid.UUID]*types.Leaderboard{}}
}

func (f *fakeBoardCache) Get(ctx context.Context, campID uuid.UUID) (*types.Leaderboard, bool) {
	board, ok := f.boards[campID]
	if ok {
		f.hits++
	} else {
		f.misses++
	}
	return board, ok
}

func (f *fakeBoardCache) Set(ctx context.Context, campID uuid.UUID, board *types.Leaderboard) {
	f.boards[campID] = board
}

func (f *fakeBoardCache) Invalidate(ctx context.Context, campID uuid.UUID) {
	delete(f.boards, campID)
	f.invalidated = append(f.invalidated, campID)
}
