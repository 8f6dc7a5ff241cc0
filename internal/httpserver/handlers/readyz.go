package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mgaillard/cooloff/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready       bool `json:"ready"`
	Persistence bool `json:"persistence"`
}

// Readyz reports readiness. The daemon serves even when Redis is down
// (degraded, memory-only), so persistence state is informational.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		persistence := false
		if d.RedisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			persistence = d.RedisClient.Ping(ctx).Err() == nil
			cancel()
		}

		writeJSON(w, http.StatusOK, readyzResponse{
			Ready:       true,
			Persistence: persistence,
		})
	}
}
