package scheduler

import (
	"context"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/store"
	redisstore "github.com/mgaillard/cooloff/internal/store/redis"
)

// RedisSyncer seeds the in-memory store from Redis at startup.
type RedisSyncer struct {
	persisted *redisstore.Store
	store     *store.Memory
	fallback  domain.Settings
	logger    logger.Logger
}

// NewRedisSyncer creates a new Redis syncer. fallback supplies the
// settings used when Redis holds none.
func NewRedisSyncer(
	persisted *redisstore.Store,
	st *store.Memory,
	fallback domain.Settings,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		persisted: persisted,
		store:     st,
		fallback:  fallback,
		logger:    log,
	}
}

// Sync loads the persisted site list and settings into memory. Missing
// or malformed payloads degrade to empty state and the fallback inside
// the persistence layer, so Sync cannot fail.
func (rs *RedisSyncer) Sync(ctx context.Context) {
	sites := rs.persisted.LoadSites(ctx)
	settings := rs.persisted.LoadSettings(ctx, rs.fallback)

	rs.store.Seed(sites, settings)

	rs.logger.Info("loaded persisted state from redis",
		logger.Int("sites", len(sites)),
		logger.Int64("default_duration_ms", settings.DefaultDurationMs),
		logger.Bool("sound_on", settings.SoundOn))
}
