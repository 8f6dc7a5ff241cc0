package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/store"
)

// Snapshot is the export document shape.
type Snapshot struct {
	Items      []*domain.Site  `json:"items"`
	Settings   domain.Settings `json:"settings"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// Export captures the current store contents as a snapshot.
func Export(st *store.Memory, now time.Time) Snapshot {
	return Snapshot{
		Items:      st.Snapshot(),
		Settings:   st.Settings(),
		ExportedAt: now,
	}
}

// rawSnapshot defers parsing of the two sections so a malformed items
// array can be rejected without touching settings, and vice versa.
type rawSnapshot struct {
	Items    json.RawMessage `json:"items"`
	Settings json.RawMessage `json:"settings"`
}

// Import applies a snapshot document to the store. The item list, when
// present, must be a well-formed array of records and replaces the store
// wholesale; settings, when present, merge over defaults. Any other
// shape is rejected without mutating existing state.
func Import(ctx context.Context, st *store.Memory, data []byte) error {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("import document is not a JSON object: %w", err)
	}
	if raw.Items == nil && raw.Settings == nil {
		return errors.New("import document has neither items nor settings")
	}

	// Parse both sections fully before mutating anything: import fails
	// closed as a unit.
	var items []*domain.Site
	if raw.Items != nil {
		if err := json.Unmarshal(raw.Items, &items); err != nil {
			return fmt.Errorf("items is not an array of records: %w", err)
		}
	}

	var settings *domain.SettingsPatch
	if raw.Settings != nil {
		var p domain.SettingsPatch
		if err := json.Unmarshal(raw.Settings, &p); err != nil {
			return fmt.Errorf("settings is malformed: %w", err)
		}
		settings = &p
	}

	if raw.Items != nil {
		if err := st.ReplaceAll(ctx, items); err != nil {
			return fmt.Errorf("import rejected: %w", err)
		}
	}
	if settings != nil {
		st.UpdateSettings(ctx, *settings)
	}
	return nil
}
