package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/httpserver/deps"
	"github.com/mgaillard/cooloff/internal/logger"
)

type listResponse struct {
	Now   time.Time              `json:"now"`
	Count int                    `json:"count"`
	Items []domain.ProjectedSite `json:"items"`
}

// ListSites returns the projected view: filtered, searched, active
// sites first ordered by soonest-ready.
func ListSites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.Now()
		filter := domain.ParseFilter(r.URL.Query().Get("filter"))
		query := r.URL.Query().Get("q")

		items := domain.Project(d.Store.Snapshot(), now, filter, query)
		writeJSON(w, http.StatusOK, listResponse{
			Now:   now,
			Count: len(items),
			Items: items,
		})
	}
}

type upsertRequest struct {
	domain.Draft
	// RecomputeEnd is the caller's explicit confirmation to recompute a
	// running cooldown's end from the last visit plus the new duration.
	RecomputeEnd bool `json:"recomputeEnd,omitempty"`
}

// UpsertSite creates a site or merges a draft into an existing one.
func UpsertSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := req.Draft.Normalize(d.Store.Settings().DefaultDurationMs); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		now := d.Now()
		site, err := d.Store.Upsert(r.Context(), req.Draft, now, req.RecomputeEnd)
		if err != nil {
			d.Logger.Error("upsert failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "upsert failed")
			return
		}

		d.Logger.Info("site upserted",
			logger.String("site_id", site.ID),
			logger.String("url", site.URL))
		writeJSON(w, http.StatusOK, site)
	}
}

// DeleteSite removes a site. Unknown ids are a no-op.
func DeleteSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		d.Store.Remove(r.Context(), id)
		d.Logger.Info("site deleted", logger.String("site_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
