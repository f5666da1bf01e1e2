package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
)

// Entry is one durable key/value row. Namespaces keep unrelated
// buffers (rating drafts, offline queue) apart; NeedsSync marks rows
// written while the backend was unreachable.
type Entry struct {
	Namespace string    `gorm:"primaryKey;column:namespace"`
	Key       string    `gorm:"primaryKey;column:key"`
	Value     []byte    `gorm:"column:value"`
	NeedsSync bool      `gorm:"column:needs_sync;not null;default:false;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Entry) TableName() string { return "local_entry" }

// Store is a namespaced durable KV on sqlite, the client-side stand-in
// for browser localStorage.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func Open(path string, baseLog *logger.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("localstore path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db, log: baseLog.With("component", "LocalStore")}, nil
}

func (s *Store) Put(ctx context.Context, namespace, key string, value interface{}, needsSync bool) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := Entry{
		Namespace: namespace,
		Key:       key,
		Value:     raw,
		NeedsSync: needsSync,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Save(&entry).Error
}

// Get decodes the stored value into out. The second return is false
// when the key does not exist.
func (s *Store) Get(ctx context.Context, namespace, key string, out interface{}) (bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out != nil && len(entry.Value) > 0 {
		if err := json.Unmarshal(entry.Value, out); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	return s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Delete(&Entry{}).Error
}

// PendingSync returns the rows in a namespace still waiting to reach
// the backend, oldest first.
func (s *Store) PendingSync(ctx context.Context, namespace string) ([]Entry, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND needs_sync = ?", namespace, true).
		Order("updated_at ASC").
		Find(&entries).Error
	return entries, err
}

// ClearSync drops the needs_sync mark after a queued row lands.
func (s *Store) ClearSync(ctx context.Context, namespace, key string) error {
	return s.db.WithContext(ctx).
		Model(&Entry{}).
		Where("namespace = ? AND key = ?", namespace, key).
		Update("needs_sync", false).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
