package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/logger"
)

// ErrNotFound is returned by site lookups for unknown ids.
var ErrNotFound = errors.New("site not found")

// Persister is the durable channel behind the store. A write failure is
// a degraded mode, not a hard error: the in-memory state stays
// authoritative for the session.
type Persister interface {
	SaveSites(ctx context.Context, sites []*domain.Site) error
	SaveSettings(ctx context.Context, settings domain.Settings) error
}

// Memory is the canonical site store plus global settings.
//
// Every mutation funnels through a single primitive that applies a
// transition under the lock and then writes through to the Persister, so
// readers always observe either the pre-mutation or fully post-mutation
// state, never a mix.
type Memory struct {
	mu        sync.RWMutex
	sites     map[string]*domain.Site
	settings  domain.Settings
	persister Persister
	logger    logger.Logger
}

// NewMemory creates an empty store. persister may be nil (no durability,
// e.g. in tests).
func NewMemory(persister Persister, log logger.Logger) *Memory {
	return &Memory{
		sites:     make(map[string]*domain.Site),
		settings:  domain.DefaultSettings(),
		persister: persister,
		logger:    log,
	}
}

// Seed installs previously persisted state without writing it back.
// Called once at startup before any mutation.
func (m *Memory) Seed(sites []*domain.Site, settings domain.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sites = make(map[string]*domain.Site, len(sites))
	for _, s := range sites {
		m.sites[s.ID] = s.Clone()
	}
	m.settings = settings.Merge()
}

// mutate applies fn under the lock and, when fn reports a change, writes
// the full site list through to the persister before returning.
func (m *Memory) mutate(ctx context.Context, fn func(sites map[string]*domain.Site) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !fn(m.sites) {
		return
	}
	m.persistSitesLocked(ctx)
}

// persistSitesLocked saves the current site list. Callers hold the lock.
func (m *Memory) persistSitesLocked(ctx context.Context) {
	if m.persister == nil {
		return
	}
	if err := m.persister.SaveSites(ctx, m.snapshotLocked()); err != nil {
		m.logger.Warn("site persistence failed, in-memory state remains authoritative",
			logger.Error(err))
	}
}

func (m *Memory) snapshotLocked() []*domain.Site {
	out := make([]*domain.Site, 0, len(m.sites))
	for _, s := range m.sites {
		out = append(out, s.Clone())
	}
	// Deterministic order keeps projections stable between recomputations.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Snapshot returns a deep copy of all sites in creation order.
func (m *Memory) Snapshot() []*domain.Site {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Get returns a copy of one site.
func (m *Memory) Get(id string) (*domain.Site, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sites[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Count returns the number of tracked sites.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sites)
}

// Upsert merges a normalized draft into an existing site when the draft
// carries a known id, otherwise inserts a fresh site. Changing the
// duration of a site with an active cooldown never silently moves its
// end; recomputeEnd is the caller's explicit confirmation to recompute
// it from the last visit plus the new duration.
func (m *Memory) Upsert(ctx context.Context, draft domain.Draft, now time.Time, recomputeEnd bool) (*domain.Site, error) {
	var result *domain.Site

	m.mutate(ctx, func(sites map[string]*domain.Site) bool {
		if existing, ok := sites[draft.ID]; ok {
			existing.URL = draft.URL
			existing.Label = draft.Label
			existing.Scope = draft.Scope
			existing.DurationMs = draft.DurationMs
			if draft.Favicon != "" {
				existing.Favicon = draft.Favicon
			}
			if recomputeEnd && existing.EndAt != nil && existing.LastVisitedAt != nil {
				end := existing.LastVisitedAt.Add(existing.Cooldown())
				existing.EndAt = &end
			}
			existing.UpdatedAt = now
			result = existing.Clone()
			return true
		}

		site := &domain.Site{
			ID:         uuid.NewString(),
			URL:        draft.URL,
			Label:      draft.Label,
			Scope:      draft.Scope,
			DurationMs: draft.DurationMs,
			Favicon:    draft.Favicon,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		sites[site.ID] = site
		result = site.Clone()
		return true
	})

	return result, nil
}

// Remove deletes a site. Removing an unknown id is a no-op, not an error.
func (m *Memory) Remove(ctx context.Context, id string) {
	m.mutate(ctx, func(sites map[string]*domain.Site) bool {
		if _, ok := sites[id]; !ok {
			return false
		}
		delete(sites, id)
		return true
	})
}

// ReplaceAll overwrites the whole site list, used by import. It fails
// closed: any malformed record leaves the prior state untouched.
func (m *Memory) ReplaceAll(ctx context.Context, sites []*domain.Site) error {
	next := make(map[string]*domain.Site, len(sites))
	for i, s := range sites {
		if err := validateRecord(s); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := next[s.ID]; dup {
			return fmt.Errorf("record %d: duplicate id %q", i, s.ID)
		}
		next[s.ID] = s.Clone()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sites = next
	m.persistSitesLocked(ctx)
	return nil
}

func validateRecord(s *domain.Site) error {
	if s == nil {
		return errors.New("nil record")
	}
	if s.ID == "" {
		return errors.New("missing id")
	}
	if _, _, err := domain.NormalizeURL(s.URL); err != nil {
		return err
	}
	if s.DurationMs < domain.MinCooldown.Milliseconds() {
		return fmt.Errorf("cooldown %dms is below the %s floor", s.DurationMs, domain.MinCooldown)
	}
	return nil
}

// StartCooldown records a visit at now and starts a fresh cooldown,
// restarting any cooldown already in flight.
func (m *Memory) StartCooldown(ctx context.Context, id string, now time.Time) (*domain.Site, error) {
	return m.touch(ctx, id, func(s *domain.Site) {
		visited := now
		end := now.Add(s.Cooldown())
		s.LastVisitedAt = &visited
		s.EndAt = &end
	}, now)
}

// ResetCooldown restarts the cooldown window from now using the site's
// configured duration. A reset does not count as a visit: LastVisitedAt
// is left untouched.
func (m *Memory) ResetCooldown(ctx context.Context, id string, now time.Time) (*domain.Site, error) {
	return m.touch(ctx, id, func(s *domain.Site) {
		end := now.Add(s.Cooldown())
		s.EndAt = &end
	}, now)
}

// ClearCooldown forces the site to ready without waiting for natural
// expiry. No expiry event is recorded, so no notification fires.
func (m *Memory) ClearCooldown(ctx context.Context, id string, now time.Time) (*domain.Site, error) {
	return m.touch(ctx, id, func(s *domain.Site) {
		s.EndAt = nil
	}, now)
}

func (m *Memory) touch(ctx context.Context, id string, apply func(*domain.Site), now time.Time) (*domain.Site, error) {
	var result *domain.Site

	m.mutate(ctx, func(sites map[string]*domain.Site) bool {
		s, ok := sites[id]
		if !ok {
			return false
		}
		apply(s)
		s.UpdatedAt = now
		result = s.Clone()
		return true
	})

	if result == nil {
		return nil, ErrNotFound
	}
	return result, nil
}

// CompleteCooldowns transitions every listed site that is still due at
// now to ready, batched into one store update and one persistence write.
// Sites deleted or restarted since the caller observed them are skipped.
// Returns the sites that actually transitioned.
func (m *Memory) CompleteCooldowns(ctx context.Context, ids []string, now time.Time) []*domain.Site {
	var done []*domain.Site

	m.mutate(ctx, func(sites map[string]*domain.Site) bool {
		for _, id := range ids {
			s, ok := sites[id]
			if !ok || !s.Due(now) {
				continue
			}
			s.EndAt = nil
			s.UpdatedAt = now
			done = append(done, s.Clone())
		}
		return len(done) > 0
	})

	return done
}

// Settings returns the current global settings.
func (m *Memory) Settings() domain.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// UpdateSettings merges a settings patch over the hard defaults,
// installs and persists the result. Absent patch fields keep their
// defaults.
func (m *Memory) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) domain.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = patch.Merge()
	if m.persister != nil {
		if err := m.persister.SaveSettings(ctx, m.settings); err != nil {
			m.logger.Warn("settings persistence failed, in-memory state remains authoritative",
				logger.Error(err))
		}
	}
	return m.settings
}
