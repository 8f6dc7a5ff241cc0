package seedfile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mgaillard/cooloff/internal/domain"
)

// Loader handles loading and parsing of the optional sites.yaml seed
// file, used to pre-populate an empty store on first start.
type Loader struct {
	filePath string
}

// NewLoader creates a seed file loader.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads the seed file and maps its entries to normalized drafts.
// Entries that fail validation are returned as errors alongside the
// valid drafts, so one bad line does not discard the whole file.
func (l *Loader) Load(defaultDurationMs int64) ([]domain.Draft, []error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read seed file: %w", err)}
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, []error{fmt.Errorf("failed to parse seed yaml: %w", err)}
	}

	drafts := make([]domain.Draft, 0, len(file.Sites))
	var errs []error
	for i, entry := range file.Sites {
		draft, err := mapEntry(entry, defaultDurationMs)
		if err != nil {
			errs = append(errs, fmt.Errorf("seed entry %d (%s): %w", i, entry.URL, err))
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, errs
}

func mapEntry(entry Entry, defaultDurationMs int64) (domain.Draft, error) {
	draft := domain.Draft{
		URL:     entry.URL,
		Label:   entry.Label,
		Scope:   domain.Scope(entry.Scope),
		Favicon: entry.Favicon,
	}

	if entry.Cooldown != "" {
		d, err := time.ParseDuration(entry.Cooldown)
		if err != nil {
			return domain.Draft{}, fmt.Errorf("invalid cooldown %q: %w", entry.Cooldown, err)
		}
		draft.DurationMs = d.Milliseconds()
	}

	if err := draft.Normalize(defaultDurationMs); err != nil {
		return domain.Draft{}, err
	}
	return draft, nil
}
