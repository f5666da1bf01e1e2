package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campstack/evalboard-backend/internal/client/localstore"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/services"
)

const (
	StateIdle       = "idle"
	StateDirty      = "dirty"
	StateSaving     = "saving"
	StateSaveFailed = "save-failed"
)

const (
	nsBackup  = "autosave_backup"
	nsOffline = "offline_queue"
)

// DefaultInterval matches the frontend's 30-second auto-save cadence.
const DefaultInterval = 30 * time.Second

// Saver is the slice of the API client the session needs.
type Saver interface {
	AutoSave(ctx context.Context, req services.SaveBatchRequest) (services.SaveBatchResult, error)
}

// BackupStore is the slice of the localstore the session needs.
type BackupStore interface {
	Put(ctx context.Context, namespace, key string, value interface{}, needsSync bool) error
	Get(ctx context.Context, namespace, key string, out interface{}) (bool, error)
	Delete(ctx context.Context, namespace, key string) error
	PendingSync(ctx context.Context, namespace string) ([]localstore.Entry, error)
	ClearSync(ctx context.Context, namespace, key string) error
}

type entryKey struct {
	KidID      uuid.UUID
	QuestionID uuid.UUID
}

type SessionConfig struct {
	LeaderID  uuid.UUID
	SessionID string
	Interval  time.Duration
	API       Saver
	Store     BackupStore
	Log       *logger.Logger
}

// Session buffers a leader's edits and flushes them on a timer, the
// way the evaluation form auto-saves. Edits mark the session dirty;
// the ticker (or a manual Save) pushes the buffer to the backend.
// When the backend is unreachable the buffer lands in the offline
// queue and is replayed on the next tick or connectivity signal.
type Session struct {
	leaderID  uuid.UUID
	sessionID string
	api       Saver
	store     BackupStore
	log       *logger.Logger
	interval  time.Duration

	mu     sync.Mutex
	state  string
	dirty  bool
	buffer map[entryKey]services.EvaluationEntry

	// flushMu serializes flushes: a second caller blocks, then finds
	// the buffer clean and returns.
	flushMu sync.Mutex

	online chan bool
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(cfg SessionConfig) *Session {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	return &Session{
		leaderID:  cfg.LeaderID,
		sessionID: sessionID,
		api:       cfg.API,
		store:     cfg.Store,
		log:       cfg.Log.With("component", "AutoSaveSession", "leader_id", cfg.LeaderID),
		interval:  interval,
		state:     StateIdle,
		buffer:    map[entryKey]services.EvaluationEntry{},
		online:    make(chan bool, 1),
		done:      make(chan struct{}),
	}
}

// Start launches the auto-save loop. Stop cancels it.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SetRating(kidID, questionID uuid.UUID, rating int) {
	s.edit(kidID, questionID, func(e *services.EvaluationEntry) {
		r := rating
		e.Rating = &r
	})
}

func (s *Session) SetComment(kidID, questionID uuid.UUID, comment string) {
	s.edit(kidID, questionID, func(e *services.EvaluationEntry) {
		c := comment
		e.Comment = &c
	})
}

func (s *Session) edit(kidID, questionID uuid.UUID, apply func(*services.EvaluationEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entryKey{KidID: kidID, QuestionID: questionID}
	entry, ok := s.buffer[key]
	if !ok {
		entry = services.EvaluationEntry{KidID: kidID, QuestionID: questionID}
	}
	apply(&entry)
	s.buffer[key] = entry
	s.dirty = true
	if s.state != StateSaving {
		s.state = StateDirty
	}
}

// Save flushes the buffer immediately through the same path the ticker
// uses.
func (s *Session) Save(ctx context.Context) error {
	return s.flush(ctx)
}

// NotifyConnectivity signals a connectivity change. Coming back online
// replays the offline queue ahead of the next tick.
func (s *Session) NotifyConnectivity(isOnline bool) {
	select {
	case s.online <- isOnline:
	default:
	}
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncQueued(ctx)
			if err := s.flush(ctx); err != nil {
				s.log.Warn("Auto-save flush failed", "error", err)
			}
		case isOnline := <-s.online:
			if !isOnline {
				continue
			}
			s.syncQueued(ctx)
			if err := s.flush(ctx); err != nil {
				s.log.Warn("Auto-save flush failed after reconnect", "error", err)
			}
		}
	}
}

func (s *Session) snapshot() (services.SaveBatchRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || len(s.buffer) == 0 {
		return services.SaveBatchRequest{}, false
	}
	entries := make([]services.EvaluationEntry, 0, len(s.buffer))
	for _, entry := range s.buffer {
		entries = append(entries, entry)
	}
	s.dirty = false
	s.state = StateSaving
	return services.SaveBatchRequest{
		LeaderID:  s.leaderID,
		Entries:   entries,
		SessionID: s.sessionID,
	}, true
}

func (s *Session) flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	req, ok := s.snapshot()
	if !ok {
		return nil
	}

	_, err := s.api.AutoSave(ctx, req)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateSaveFailed
		s.dirty = true
		if s.store != nil {
			if qerr := s.store.Put(ctx, nsOffline, s.leaderID.String(), req, true); qerr != nil {
				s.log.Error("Offline queue write failed", "error", qerr)
			}
		}
		return err
	}

	if s.dirty {
		// Edits arrived mid-flight; they go out on the next pass.
		s.state = StateDirty
	} else {
		s.state = StateIdle
	}
	if s.store != nil {
		if berr := s.store.Put(ctx, nsBackup, s.leaderID.String(), req, false); berr != nil {
			s.log.Warn("Auto-save backup write failed", "error", berr)
		}
		if derr := s.store.Delete(ctx, nsOffline, s.leaderID.String()); derr != nil {
			s.log.Warn("Offline queue clear failed", "error", derr)
		}
	}
	return nil
}

// syncQueued replays offline batches that never reached the backend.
// An accepted batch keeps its row but drops the sync tag, so the last
// synced payload stays readable as a local backup.
func (s *Session) syncQueued(ctx context.Context) {
	if s.store == nil {
		return
	}
	pending, err := s.store.PendingSync(ctx, nsOffline)
	if err != nil {
		s.log.Warn("Offline queue read failed", "error", err)
		return
	}
	for _, entry := range pending {
		var req services.SaveBatchRequest
		if _, err := s.store.Get(ctx, nsOffline, entry.Key, &req); err != nil {
			s.log.Warn("Offline queue entry unreadable", "key", entry.Key, "error", err)
			continue
		}
		if _, err := s.api.AutoSave(ctx, req); err != nil {
			if !Transient(err) {
				// The server rejected the batch outright; keeping it
				// queued would retry forever.
				s.log.Error("Offline batch rejected, dropping", "key", entry.Key, "error", err)
				_ = s.store.Delete(ctx, nsOffline, entry.Key)
			}
			continue
		}
		if err := s.store.ClearSync(ctx, nsOffline, entry.Key); err != nil {
			s.log.Warn("Offline queue clear failed", "key", entry.Key, "error", err)
		}
	}
}
