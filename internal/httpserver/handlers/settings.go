package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/httpserver/deps"
	"github.com/mgaillard/cooloff/internal/logger"
)

// GetSettings returns the current global settings.
func GetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Store.Settings())
	}
}

// PutSettings replaces the global settings. Absent or invalid fields
// fall back to defaults via the merge.
func PutSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.SettingsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		applied := d.Store.UpdateSettings(r.Context(), patch)
		d.Logger.Info("settings updated",
			logger.Int64("default_duration_ms", applied.DefaultDurationMs),
			logger.Bool("sound_on", applied.SoundOn))
		writeJSON(w, http.StatusOK, applied)
	}
}
