package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Draft is user input for creating or updating a site. It is validated
// and normalized at the boundary; the core never sees an invalid draft.
type Draft struct {
	ID         string `json:"id,omitempty"`
	URL        string `json:"url"`
	Label      string `json:"label,omitempty"`
	Scope      Scope  `json:"scope,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
	Favicon    string `json:"favicon,omitempty"`
}

// Normalize validates the draft in place and fills defaults.
// The URL must be absolute (scheme + host); the label defaults to the
// hostname; a zero duration takes the provided fallback; anything below
// the cooldown floor is rejected.
func (d *Draft) Normalize(defaultDurationMs int64) error {
	normalized, host, err := NormalizeURL(d.URL)
	if err != nil {
		return err
	}
	d.URL = normalized

	d.Label = strings.TrimSpace(d.Label)
	if d.Label == "" {
		d.Label = host
	}

	switch d.Scope {
	case ScopeDomain, ScopeURL:
	case "":
		d.Scope = ScopeDomain
	default:
		return fmt.Errorf("invalid scope %q", d.Scope)
	}

	if d.DurationMs == 0 {
		d.DurationMs = defaultDurationMs
	}
	if d.DurationMs < MinCooldown.Milliseconds() {
		return fmt.Errorf("cooldown %dms is below the %s floor", d.DurationMs, MinCooldown)
	}

	return nil
}

// NormalizeURL parses raw as an absolute URL and returns its normalized
// form plus the hostname. A missing scheme defaults to https.
func NormalizeURL(raw string) (normalized, host string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", "", fmt.Errorf("url %q has no host", raw)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), u.Hostname(), nil
}

// Hostname extracts the hostname of a stored site URL. Used as the label
// fallback when matching queries. Returns the empty string on malformed
// input, which never happens for URLs that passed NormalizeURL.
func Hostname(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
