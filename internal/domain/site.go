package domain

import "time"

// MinCooldown is the floor for a site cooldown. Anything shorter is
// rejected at the boundary to prevent degenerate near-zero cooldowns.
const MinCooldown = time.Minute

// Scope documents the intended blocking granularity of a tracked site.
// It has no effect on timer logic.
type Scope string

const (
	// ScopeDomain matches the whole domain of the site URL.
	ScopeDomain Scope = "domain"
	// ScopeURL matches only the exact URL.
	ScopeURL Scope = "url"
)

// Site represents the canonical runtime truth of one tracked site.
//
// It is NOT tied to Redis, the HTTP API or any import format.
// All inputs (drafts, seed files, imports) are merged into this structure.
//
// A Site is in exactly one of two states: counting-down (EndAt != nil)
// or ready (EndAt == nil).
type Site struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, assigned on creation.
	ID string `json:"id"`

	// ─────────────────────────────
	// Functional description
	// ─────────────────────────────

	// URL is the normalized absolute URL of the site.
	// Example: https://news.ycombinator.com/
	URL string `json:"url"`

	// Label is the display name. Defaults to the URL hostname.
	Label string `json:"label"`

	// Scope is the intended blocking granularity (domain or url).
	Scope Scope `json:"scope"`

	// ─────────────────────────────
	// Cooldown state
	// ─────────────────────────────

	// DurationMs is the cooldown length in milliseconds.
	// Always >= MinCooldown.
	DurationMs int64 `json:"durationMs"`

	// LastVisitedAt is the time of the visit that started the current
	// or most recent cooldown. Nil if the site was never visited.
	LastVisitedAt *time.Time `json:"lastVisitedAt"`

	// EndAt is the absolute instant the cooldown completes.
	// Nil means the site is ready (no active cooldown).
	EndAt *time.Time `json:"endAt"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is the time the site was first tracked.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is bumped on every mutation.
	UpdatedAt time.Time `json:"updatedAt"`

	// Favicon is an optional display hint. No behavioral role.
	Favicon string `json:"favicon,omitempty"`
}

// Cooldown returns the configured cooldown length.
func (s *Site) Cooldown() time.Duration {
	return time.Duration(s.DurationMs) * time.Millisecond
}

// Ready reports whether the site has no active cooldown.
func (s *Site) Ready() bool {
	return s.EndAt == nil
}

// Active reports whether the site is counting down at the given instant.
func (s *Site) Active(now time.Time) bool {
	return s.EndAt != nil && s.EndAt.After(now)
}

// Due reports whether the site has an elapsed cooldown that has not yet
// been reconciled to ready.
func (s *Site) Due(now time.Time) bool {
	return s.EndAt != nil && !s.EndAt.After(now)
}

// Remaining returns the time left on the cooldown, zero if ready or due.
func (s *Site) Remaining(now time.Time) time.Duration {
	if s.EndAt == nil {
		return 0
	}
	if d := s.EndAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Clone returns a deep copy, so callers can hand out snapshots without
// exposing shared pointers.
func (s *Site) Clone() *Site {
	c := *s
	if s.LastVisitedAt != nil {
		t := *s.LastVisitedAt
		c.LastVisitedAt = &t
	}
	if s.EndAt != nil {
		t := *s.EndAt
		c.EndAt = &t
	}
	return &c
}
