package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mgaillard/cooloff/internal/httpserver/deps"
	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/transfer"
)

const maxImportBytes = 10 << 20

// Export writes the full store as a downloadable JSON document.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.Now()
		snapshot := transfer.Export(d.Store, now)

		filename := fmt.Sprintf("cooloff-export-%s.json", now.Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(snapshot)
	}
}

type importResponse struct {
	Imported bool `json:"imported"`
	Count    int  `json:"count"`
}

// Import replaces the store from an export document. Any malformed
// shape is rejected without mutating existing state.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		if err := transfer.Import(r.Context(), d.Store, data); err != nil {
			d.Logger.Warn("import rejected", logger.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		count := d.Store.Count()
		d.Logger.Info("import applied", logger.Int("sites", count))
		writeJSON(w, http.StatusOK, importResponse{Imported: true, Count: count})
	}
}
