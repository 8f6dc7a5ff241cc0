package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mgaillard/cooloff/internal/httpserver/deps"
	"github.com/mgaillard/cooloff/internal/notify"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Components map[string]componentStatus `json:"components"`
	Sites      int                        `json:"sites"`
	Active     int                        `json:"active"`
	Delivered  int                        `json:"delivered_expiries"`
	Permission string                     `json:"notification_permission"`
}

// Infra reports the health of the moving parts: persistence, the
// reconciliation loop and the delivery capability.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.Now()

		sites := d.Store.Snapshot()
		active := 0
		for _, s := range sites {
			if s.Active(now) {
				active++
			}
		}

		perm := d.Notifier.Permission()
		components := map[string]componentStatus{
			"redis": checkRedis(r.Context(), d),
			"delivery": {
				OK:     perm != notify.PermissionDenied,
				Detail: string(perm),
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Components: components,
			Sites:      len(sites),
			Active:     active,
			Delivered:  d.Reconciler.LedgerSize(),
			Permission: string(perm),
		})
	}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: false, Detail: "memory-only mode", Error: "no redis client"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(pingCtx).Err(); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}
