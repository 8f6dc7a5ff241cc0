package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/httpserver/deps"
	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/store"
)

// StartCooldown records a visit and starts a fresh cooldown, restarting
// any cooldown already running.
func StartCooldown(d deps.Deps) http.HandlerFunc {
	return cooldownAction(d, "start", d.Store.StartCooldown)
}

// ResetCooldown restarts the cooldown window from now without counting
// as a visit.
func ResetCooldown(d deps.Deps) http.HandlerFunc {
	return cooldownAction(d, "reset", d.Store.ResetCooldown)
}

// ClearCooldown forces the site to ready immediately. No notification
// fires for a cleared cooldown.
func ClearCooldown(d deps.Deps) http.HandlerFunc {
	return cooldownAction(d, "clear", d.Store.ClearCooldown)
}

func cooldownAction(
	d deps.Deps,
	name string,
	apply func(ctx context.Context, id string, now time.Time) (*domain.Site, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		now := d.Now()

		site, err := apply(r.Context(), id, now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "unknown site id")
				return
			}
			d.Logger.Error("cooldown action failed",
				logger.String("action", name),
				logger.String("site_id", id),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "cooldown action failed")
			return
		}

		d.Logger.Info("cooldown action applied",
			logger.String("action", name),
			logger.String("site_id", id),
			logger.Bool("ready", site.Ready()))
		writeJSON(w, http.StatusOK, site)
	}
}
