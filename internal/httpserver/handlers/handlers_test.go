package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/httpserver/deps"
	"github.com/mgaillard/cooloff/internal/httpserver/routes"
	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/notify"
	"github.com/mgaillard/cooloff/internal/scheduler"
	"github.com/mgaillard/cooloff/internal/store"
)

type testAPI struct {
	server *httptest.Server
	store  *store.Memory
	now    time.Time
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	st := store.NewMemory(nil, logger.Nop())
	notifier := notify.Noop{}
	rec := scheduler.NewReconciler(st, notifier, notify.NoopChime{}, logger.Nop(), time.Second)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	d := deps.Deps{
		Logger:     logger.Nop(),
		StartTime:  now,
		TimeNow:    func() time.Time { return now },
		Store:      st,
		Reconciler: rec,
		Notifier:   notifier,
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testAPI{server: server, store: st, now: now}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCreateListAndActions(t *testing.T) {
	api := newTestAPI(t)

	// Create.
	resp := api.do(t, http.MethodPost, "/api/sites", map[string]interface{}{
		"url":   "news.ycombinator.com",
		"label": "HN",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create returned %d", resp.StatusCode)
	}
	var site domain.Site
	decode(t, resp, &site)
	if site.ID == "" || site.URL != "https://news.ycombinator.com" {
		t.Fatalf("created site = %+v", site)
	}

	// List: one ready site.
	resp = api.do(t, http.MethodGet, "/api/sites", nil)
	var list struct {
		Count int `json:"count"`
		Items []struct {
			Ready       bool  `json:"ready"`
			RemainingMs int64 `json:"remainingMs"`
		} `json:"items"`
	}
	decode(t, resp, &list)
	if list.Count != 1 || !list.Items[0].Ready {
		t.Fatalf("list = %+v", list)
	}

	// Start cooldown.
	resp = api.do(t, http.MethodPost, "/api/sites/"+site.ID+"/start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start returned %d", resp.StatusCode)
	}
	var started domain.Site
	decode(t, resp, &started)
	if started.EndAt == nil {
		t.Fatal("start did not set an end")
	}

	// Active filter now matches it.
	resp = api.do(t, http.MethodGet, "/api/sites?filter=active", nil)
	decode(t, resp, &list)
	if list.Count != 1 || list.Items[0].Ready || list.Items[0].RemainingMs <= 0 {
		t.Fatalf("active list = %+v", list)
	}

	// Clear flips it back to ready.
	resp = api.do(t, http.MethodPost, "/api/sites/"+site.ID+"/clear", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear returned %d", resp.StatusCode)
	}
	resp = api.do(t, http.MethodGet, "/api/sites?filter=ready", nil)
	decode(t, resp, &list)
	if list.Count != 1 {
		t.Fatalf("ready list = %+v", list)
	}

	// Delete.
	resp = api.do(t, http.MethodDelete, "/api/sites/"+site.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}
	if api.store.Count() != 0 {
		t.Errorf("store still has %d sites after delete", api.store.Count())
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing url", body: map[string]interface{}{"label": "x"}},
		{name: "bad scheme", body: map[string]interface{}{"url": "ftp://example.com"}},
		{name: "sub-floor duration", body: map[string]interface{}{"url": "https://example.com", "durationMs": 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, "/api/sites", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("create returned %d, want 400", resp.StatusCode)
			}
		})
	}

	if api.store.Count() != 0 {
		t.Errorf("invalid input reached the store: %d sites", api.store.Count())
	}
}

func TestActionsOnUnknownSite(t *testing.T) {
	api := newTestAPI(t)

	for _, action := range []string{"start", "reset", "clear"} {
		resp := api.do(t, http.MethodPost, "/api/sites/ghost/"+action, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s on unknown site returned %d, want 404", action, resp.StatusCode)
		}
	}
}

func TestSettingsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/api/settings", nil)
	var settings domain.Settings
	decode(t, resp, &settings)
	if settings.DefaultDurationMs != domain.DefaultSettings().DefaultDurationMs {
		t.Errorf("initial settings = %+v", settings)
	}

	resp = api.do(t, http.MethodPut, "/api/settings", domain.Settings{
		DefaultDurationMs: 120000,
		SoundOn:           false,
	})
	decode(t, resp, &settings)
	if settings.DefaultDurationMs != 120000 || settings.SoundOn {
		t.Errorf("updated settings = %+v", settings)
	}

	// A body that omits soundOn keeps its default instead of silencing
	// the chime.
	resp = api.do(t, http.MethodPut, "/api/settings", map[string]interface{}{
		"defaultDurationMs": 180000,
	})
	decode(t, resp, &settings)
	if settings.DefaultDurationMs != 180000 || !settings.SoundOn {
		t.Errorf("partial update = %+v, want soundOn back at default", settings)
	}
}

func TestExportImport(t *testing.T) {
	api := newTestAPI(t)

	for i := 0; i < 3; i++ {
		resp := api.do(t, http.MethodPost, "/api/sites", map[string]interface{}{
			"url": fmt.Sprintf("https://site%d.example.com", i),
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("create %d returned %d", i, resp.StatusCode)
		}
	}

	resp := api.do(t, http.MethodGet, "/api/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export returned %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd == "" {
		t.Error("export missing Content-Disposition")
	}
	var doc map[string]json.RawMessage
	decode(t, resp, &doc)

	// Re-import into a fresh API.
	fresh := newTestAPI(t)
	body, _ := json.Marshal(doc)
	req, _ := http.NewRequest(http.MethodPost, fresh.server.URL+"/api/import", bytes.NewReader(body))
	importResp, err := fresh.server.Client().Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer func() { _ = importResp.Body.Close() }()
	if importResp.StatusCode != http.StatusOK {
		t.Fatalf("import returned %d", importResp.StatusCode)
	}
	if fresh.store.Count() != 3 {
		t.Errorf("imported store has %d sites, want 3", fresh.store.Count())
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	api := newTestAPI(t)

	req, _ := http.NewRequest(http.MethodPost, api.server.URL+"/api/import",
		bytes.NewReader([]byte("not json")))
	resp, err := api.server.Client().Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("garbage import returned %d, want 400", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz returned %d", resp.StatusCode)
	}
	var health struct {
		Status string `json:"status"`
	}
	decode(t, resp, &health)
	if health.Status != "ok" {
		t.Errorf("healthz status = %q", health.Status)
	}
}
