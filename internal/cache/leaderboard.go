package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/campstack/evalboard-backend/internal/platform/envutil"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/types"
)

// LeaderboardCache holds rendered leaderboards between recomputes. A
// miss (or any cache failure) falls back to the database: the cache is
// never allowed to fail a read.
type LeaderboardCache interface {
	Get(ctx context.Context, campID uuid.UUID) (*types.Leaderboard, bool)
	Set(ctx context.Context, campID uuid.UUID, board *types.Leaderboard)
	Invalidate(ctx context.Context, campID uuid.UUID)
}

type redisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisLeaderboardCache(client *redis.Client, baseLog *logger.Logger) LeaderboardCache {
	cacheLog := baseLog.With("cache", "LeaderboardCache")
	ttlSeconds := envutil.GetEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 30, baseLog)
	if ttlSeconds <= 0 {
		ttlSeconds = 30
	}
	return &redisLeaderboardCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
		log:    cacheLog,
	}
}

func cacheKey(campID uuid.UUID) string {
	return "leaderboard:" + campID.String()
}

func (c *redisLeaderboardCache) Get(ctx context.Context, campID uuid.UUID) (*types.Leaderboard, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(campID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Leaderboard cache read failed", "camp_id", campID, "error", err)
		}
		return nil, false
	}
	var board types.Leaderboard
	if err := json.Unmarshal(raw, &board); err != nil {
		c.log.Warn("Leaderboard cache entry corrupt", "camp_id", campID, "error", err)
		return nil, false
	}
	return &board, true
}

func (c *redisLeaderboardCache) Set(ctx context.Context, campID uuid.UUID, board *types.Leaderboard) {
	if c.client == nil || board == nil {
		return
	}
	raw, err := json.Marshal(board)
	if err != nil {
		c.log.Warn("Leaderboard cache encode failed", "camp_id", campID, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(campID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Leaderboard cache write failed", "camp_id", campID, "error", err)
	}
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context, campID uuid.UUID) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(campID)).Err(); err != nil {
		c.log.Warn("Leaderboard cache invalidate failed", "camp_id", campID, "error", err)
	}
}

// NoopLeaderboardCache satisfies LeaderboardCache when redis is not
// configured.
type NoopLeaderboardCache struct{}

func (NoopLeaderboardCache) Get(ctx context.Context, campID uuid.UUID) (*types.Leaderboard, bool) {
	return nil, false
}
func (NoopLeaderboardCache) Set(ctx context.Context, campID uuid.UUID, board *types.Leaderboard) {}
func (NoopLeaderboardCache) Invalidate(ctx context.Context, campID uuid.UUID)                    {}
