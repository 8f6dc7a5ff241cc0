package transfer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/store"
)

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	st := store.NewMemory(nil, logger.Nop())
	now := time.Now()

	for _, url := range []string{"https://a.example.com", "https://b.example.com"} {
		d := domain.Draft{URL: url}
		if err := d.Normalize(domain.MinCooldown.Milliseconds()); err != nil {
			t.Fatalf("draft: %v", err)
		}
		site, err := st.Upsert(context.Background(), d, now, false)
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if _, err := st.StartCooldown(context.Background(), site.ID, now); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
	return st
}

func TestRoundTrip(t *testing.T) {
	src := seededStore(t)
	now := time.Now()

	data, err := json.Marshal(Export(src, now))
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}

	dst := store.NewMemory(nil, logger.Nop())
	if err := Import(context.Background(), dst, data); err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	want := src.Snapshot()
	got := dst.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("round trip produced %d sites, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].URL != want[i].URL {
			t.Errorf("site %d differs: %+v vs %+v", i, got[i], want[i])
		}
		if (got[i].EndAt == nil) != (want[i].EndAt == nil) {
			t.Errorf("site %d cooldown state differs after round trip", i)
		}
		if got[i].EndAt != nil && !got[i].EndAt.Equal(*want[i].EndAt) {
			t.Errorf("site %d EndAt = %v, want %v", i, got[i].EndAt, want[i].EndAt)
		}
	}

	if dst.Settings() != src.Settings() {
		t.Errorf("settings differ after round trip: %+v vs %+v", dst.Settings(), src.Settings())
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "definitely not json"},
		{name: "json scalar", body: `42`},
		{name: "items not an array", body: `{"items": {"id": "a"}}`},
		{name: "items array of scalars", body: `[1,2,3]`},
		{name: "empty object", body: `{}`},
		{name: "record below duration floor", body: `{"items": [{"id":"a","url":"https://a.example.com/","durationMs":5}]}`},
		{name: "record without id", body: `{"items": [{"url":"https://a.example.com/","durationMs":60000}]}`},
		{name: "malformed settings", body: `{"settings": "loud"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := seededStore(t)
			before := st.Count()

			if err := Import(context.Background(), st, []byte(tt.body)); err == nil {
				t.Fatal("Import() accepted malformed document")
			}
			if st.Count() != before {
				t.Errorf("rejected import mutated the store: %d -> %d", before, st.Count())
			}
		})
	}
}

func TestImportSettingsOnly(t *testing.T) {
	st := seededStore(t)
	before := st.Count()

	body := `{"settings": {"defaultDurationMs": 120000, "soundOn": false}}`
	if err := Import(context.Background(), st, []byte(body)); err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if st.Count() != before {
		t.Errorf("settings-only import changed sites: %d -> %d", before, st.Count())
	}
	if got := st.Settings(); got.DefaultDurationMs != 120000 || got.SoundOn {
		t.Errorf("settings not applied: %+v", got)
	}
}

func TestImportPartialSettingsKeepsDefaults(t *testing.T) {
	st := seededStore(t)

	// A settings section that omits soundOn must not flip it off.
	body := `{"settings": {"defaultDurationMs": 120000}}`
	if err := Import(context.Background(), st, []byte(body)); err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	got := st.Settings()
	if got.DefaultDurationMs != 120000 {
		t.Errorf("DefaultDurationMs = %d, want 120000", got.DefaultDurationMs)
	}
	if got.SoundOn != domain.DefaultSettings().SoundOn {
		t.Errorf("SoundOn = %v after import omitting it, want default %v",
			got.SoundOn, domain.DefaultSettings().SoundOn)
	}

	// Same rule for a duration-less section.
	body = `{"settings": {"soundOn": false}}`
	if err := Import(context.Background(), st, []byte(body)); err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if got := st.Settings(); got.DefaultDurationMs != domain.DefaultSettings().DefaultDurationMs {
		t.Errorf("DefaultDurationMs = %d, want default", got.DefaultDurationMs)
	}
}

func TestImportItemsReplaceWholesale(t *testing.T) {
	st := seededStore(t)

	body := `{"items": [{"id":"only","url":"https://only.example.com/","durationMs":60000}]}`
	if err := Import(context.Background(), st, []byte(body)); err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if st.Count() != 1 {
		t.Errorf("Count() = %d after wholesale import, want 1", st.Count())
	}
	if _, ok := st.Get("only"); !ok {
		t.Error("imported site missing")
	}
}

func TestExportShape(t *testing.T) {
	st := seededStore(t)
	now := time.Now()

	data, err := json.Marshal(Export(st, now))
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not a JSON object: %v", err)
	}
	for _, key := range []string{"items", "settings", "exportedAt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("export missing %q", key)
		}
	}
}
