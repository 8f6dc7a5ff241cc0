package domain

import (
	"fmt"
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }

func testSites(now time.Time) []*Site {
	return []*Site{
		{
			ID:         "ready-1",
			URL:        "https://news.ycombinator.com/",
			Label:      "HN",
			DurationMs: 60000,
		},
		{
			ID:         "active-far",
			URL:        "https://reddit.com/",
			Label:      "Reddit",
			DurationMs: 60000,
			EndAt:      tp(now.Add(10 * time.Minute)),
		},
		{
			ID:         "active-soon",
			URL:        "https://twitter.com/",
			Label:      "Twitter",
			DurationMs: 60000,
			EndAt:      tp(now.Add(time.Minute)),
		},
		{
			ID:         "ready-2",
			URL:        "https://example.com/",
			Label:      "Example",
			DurationMs: 60000,
		},
	}
}

func TestProjectFilterReady(t *testing.T) {
	now := time.Now()
	got := Project(testSites(now), now, FilterReady, "")

	if len(got) != 2 {
		t.Fatalf("Project(ready) returned %d items, want 2", len(got))
	}
	for _, item := range got {
		if item.Site.EndAt != nil {
			t.Errorf("Project(ready) returned site %s with a non-nil end", item.Site.ID)
		}
		if !item.Ready || item.RemainingMs != 0 {
			t.Errorf("Project(ready) item %s: ready=%v remaining=%d, want true/0",
				item.Site.ID, item.Ready, item.RemainingMs)
		}
	}
}

func TestProjectFilterActive(t *testing.T) {
	now := time.Now()
	got := Project(testSites(now), now, FilterActive, "")

	if len(got) != 2 {
		t.Fatalf("Project(active) returned %d items, want 2", len(got))
	}
	for _, item := range got {
		if item.Site.EndAt == nil || !item.Site.EndAt.After(now) {
			t.Errorf("Project(active) returned non-active site %s", item.Site.ID)
		}
		if item.RemainingMs <= 0 {
			t.Errorf("Project(active) item %s has remaining %d, want > 0",
				item.Site.ID, item.RemainingMs)
		}
	}
}

func TestProjectOrdering(t *testing.T) {
	now := time.Now()
	got := Project(testSites(now), now, FilterAll, "")

	if len(got) != 4 {
		t.Fatalf("Project(all) returned %d items, want 4", len(got))
	}

	wantOrder := []string{"active-soon", "active-far", "ready-1", "ready-2"}
	for i, want := range wantOrder {
		if got[i].Site.ID != want {
			t.Errorf("Project(all)[%d] = %s, want %s", i, got[i].Site.ID, want)
		}
	}
}

func TestProjectOrderingIdempotent(t *testing.T) {
	now := time.Now()
	sites := testSites(now)

	first := Project(sites, now, FilterAll, "")
	second := Project(sites, now, FilterAll, "")

	if len(first) != len(second) {
		t.Fatalf("repeated Project() returned %d then %d items", len(first), len(second))
	}
	for i := range first {
		if first[i].Site.ID != second[i].Site.ID {
			t.Errorf("repeated Project() order differs at %d: %s vs %s",
				i, first[i].Site.ID, second[i].Site.ID)
		}
	}
}

func TestProjectStableAmongReadyTies(t *testing.T) {
	now := time.Now()
	sites := make([]*Site, 0, 10)
	for i := 0; i < 10; i++ {
		sites = append(sites, &Site{
			ID:         fmt.Sprintf("ready-%d", i),
			URL:        fmt.Sprintf("https://site%d.example.com/", i),
			DurationMs: 60000,
		})
	}

	got := Project(sites, now, FilterAll, "")
	for i, item := range got {
		want := fmt.Sprintf("ready-%d", i)
		if item.Site.ID != want {
			t.Errorf("ready sites reordered: position %d = %s, want %s", i, item.Site.ID, want)
		}
	}
}

func TestProjectQuery(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "label match", query: "reddit", wantIDs: []string{"active-far"}},
		{name: "case insensitive", query: "HN", wantIDs: []string{"ready-1"}},
		{name: "url match", query: "ycombinator", wantIDs: []string{"ready-1"}},
		{name: "substring of url", query: ".com", wantIDs: []string{"active-soon", "active-far", "ready-1", "ready-2"}},
		{name: "no match", query: "nothing-matches", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(testSites(now), now, FilterAll, tt.query)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Project(q=%q) returned %d items, want %d", tt.query, len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].Site.ID != want {
					t.Errorf("Project(q=%q)[%d] = %s, want %s", tt.query, i, got[i].Site.ID, want)
				}
			}
		})
	}
}

func TestProjectQueryFallsBackToHostname(t *testing.T) {
	now := time.Now()
	sites := []*Site{
		{ID: "unlabeled", URL: "https://lobste.rs/", DurationMs: 60000},
	}

	got := Project(sites, now, FilterAll, "lobste")
	if len(got) != 1 {
		t.Fatalf("Project() with hostname query returned %d items, want 1", len(got))
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	sites := testSites(now)
	original := make([]string, len(sites))
	for i, s := range sites {
		original[i] = s.ID
	}

	_ = Project(sites, now, FilterAll, "")

	for i, s := range sites {
		if s.ID != original[i] {
			t.Errorf("Project() reordered its input at %d", i)
		}
	}
}

func TestProjectDueSiteNotActive(t *testing.T) {
	// A site whose end has passed but was not reconciled yet is neither
	// active nor ready: it shows remaining 0 and is excluded by both
	// narrow filters until the next tick flips it.
	now := time.Now()
	sites := []*Site{
		{ID: "due", URL: "https://example.com/", DurationMs: 60000, EndAt: tp(now.Add(-time.Second))},
	}

	if got := Project(sites, now, FilterActive, ""); len(got) != 0 {
		t.Errorf("Project(active) returned due site, want none")
	}
	if got := Project(sites, now, FilterReady, ""); len(got) != 0 {
		t.Errorf("Project(ready) returned due site, want none")
	}
	all := Project(sites, now, FilterAll, "")
	if len(all) != 1 || all[0].RemainingMs != 0 {
		t.Errorf("Project(all) due site remaining = %v, want 0", all)
	}
}
