package domain

import (
	"sort"
	"strings"
	"time"
)

// Filter selects which sites a projection keeps.
type Filter string

const (
	// FilterAll keeps every site.
	FilterAll Filter = "all"
	// FilterActive keeps sites that are still counting down.
	FilterActive Filter = "active"
	// FilterReady keeps sites with no active cooldown.
	FilterReady Filter = "ready"
)

// ParseFilter maps user input to a Filter, defaulting to all.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterActive:
		return FilterActive
	case FilterReady:
		return FilterReady
	default:
		return FilterAll
	}
}

// ProjectedSite is one row of the view the presentation layer renders.
type ProjectedSite struct {
	Site        *Site         `json:"site"`
	Ready       bool          `json:"ready"`
	RemainingMs int64         `json:"remainingMs"`
	Remaining   time.Duration `json:"-"`
}

// Project computes the filtered, searched and ordered view of sites at
// the given instant. It is a pure function: inputs are never mutated and
// every call produces a fresh slice.
//
// Ordering: active sites first, soonest-ready first among them. Ready
// sites keep their relative input order (stable sort) to avoid visual
// jitter between recomputations.
func Project(sites []*Site, now time.Time, filter Filter, query string) []ProjectedSite {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]ProjectedSite, 0, len(sites))
	for _, s := range sites {
		switch filter {
		case FilterActive:
			if !s.Active(now) {
				continue
			}
		case FilterReady:
			if !s.Ready() {
				continue
			}
		}
		if query != "" && !matchesQuery(s, query) {
			continue
		}
		remaining := s.Remaining(now)
		out = append(out, ProjectedSite{
			Site:        s,
			Ready:       s.Ready(),
			RemainingMs: remaining.Milliseconds(),
			Remaining:   remaining,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		aActive := a.Site.Active(now)
		bActive := b.Site.Active(now)
		if aActive != bActive {
			return aActive
		}
		if aActive && bActive {
			return a.Remaining < b.Remaining
		}
		return false
	})

	return out
}

// matchesQuery reports whether the site label (falling back to the
// hostname) or URL contains the lowercased query.
func matchesQuery(s *Site, query string) bool {
	label := s.Label
	if label == "" {
		label = Hostname(s.URL)
	}
	if strings.Contains(strings.ToLower(label), query) {
		return true
	}
	return strings.Contains(strings.ToLower(s.URL), query)
}
