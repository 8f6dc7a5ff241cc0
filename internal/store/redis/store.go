package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/logger"
)

// Store is the durable persistence channel. The whole site list lives as
// one JSON blob under a single key, settings under a second key.
type Store struct {
	client *redis.Client
	logger logger.Logger
}

// NewStore creates a new Redis store.
func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log,
	}
}

// SaveSites overwrites the persisted site list.
func (s *Store) SaveSites(ctx context.Context, sites []*domain.Site) error {
	data, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("failed to marshal sites: %w", err)
	}
	if err := s.client.Set(ctx, KeySites, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save sites: %w", err)
	}
	return nil
}

// LoadSites retrieves the persisted site list. A missing key, an
// unreadable payload or malformed JSON all degrade to an empty list
// rather than an error: persisted garbage must never block startup.
func (s *Store) LoadSites(ctx context.Context) []*domain.Site {
	data, err := s.client.Get(ctx, KeySites).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to load sites, starting empty", logger.Error(err))
		}
		return []*domain.Site{}
	}

	var sites []*domain.Site
	if err := json.Unmarshal(data, &sites); err != nil {
		s.logger.Warn("persisted sites are malformed, starting empty", logger.Error(err))
		return []*domain.Site{}
	}

	// Drop individual records that no longer parse as valid sites.
	out := make([]*domain.Site, 0, len(sites))
	for _, site := range sites {
		if site == nil || site.ID == "" || site.URL == "" {
			s.logger.Warn("dropping malformed persisted site record")
			continue
		}
		out = append(out, site)
	}
	return out
}

// SaveSettings overwrites the persisted settings object.
func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.client.Set(ctx, KeySettings, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// LoadSettings retrieves persisted settings merged over the hard
// defaults, degrading to the given fallback on any failure.
func (s *Store) LoadSettings(ctx context.Context, fallback domain.Settings) domain.Settings {
	data, err := s.client.Get(ctx, KeySettings).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to load settings, using defaults", logger.Error(err))
		}
		return fallback.Merge()
	}

	// Decoded as a patch so fields absent from an older persisted shape
	// keep their defaults.
	var patch domain.SettingsPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		s.logger.Warn("persisted settings are malformed, using defaults", logger.Error(err))
		return fallback.Merge()
	}
	return patch.Merge()
}
