package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/utils"
)

// Permission is the observable state of the delivery capability.
type Permission string

const (
	// PermissionGranted means alerts are being accepted.
	PermissionGranted Permission = "granted"
	// PermissionDenied means the capability rejected us; alerts are
	// silently dropped.
	PermissionDenied Permission = "denied"
	// PermissionUndecided means no delivery has been attempted yet.
	PermissionUndecided Permission = "undecided"
)

// Alert is one rendered notification.
type Alert struct {
	Title string
	Body  string
	Icon  string
	Tag   string // dedup tag, stable per expiry event
}

// Notifier delivers alerts. Delivery is best effort: an unavailable or
// unpermitted channel is a degraded experience, never an error the
// caller must handle.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
	Permission() Permission
}

// Noop discards every alert. Used when no webhook is configured.
type Noop struct{}

func (Noop) Send(ctx context.Context, alert Alert) error { return nil }
func (Noop) Permission() Permission                      { return PermissionDenied }

// maxTransportFailures is how many consecutive unreachable publishes it
// takes before the capability is reported denied.
const maxTransportFailures = 3

// Webhook publishes alerts to an ntfy-compatible endpoint via HTTP POST.
// The alert body is the request body; title, icon and dedup tag travel
// as headers.
type Webhook struct {
	url    string
	token  string
	client *http.Client
	logger logger.Logger

	mu       sync.Mutex
	perm     Permission
	failures int // consecutive transport failures
}

// NewWebhook creates a webhook notifier for the given publish URL.
func NewWebhook(url, token string, timeout time.Duration, log logger.Logger) *Webhook {
	return &Webhook{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: log,
		perm:   PermissionUndecided,
	}
}

// Send publishes one alert. A non-2xx response from the endpoint marks
// the capability denied; a successful publish marks it granted. An
// endpoint that stays unreachable is marked denied after a few
// consecutive attempts, so a single network blip does not flip it.
func (w *Webhook) Send(ctx context.Context, alert Alert) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url,
		strings.NewReader(alert.Body))
	if err != nil {
		return fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("X-Title", alert.Title)
	if alert.Icon != "" {
		req.Header.Set("X-Icon", alert.Icon)
	}
	if alert.Tag != "" {
		req.Header.Set("X-Tags", alert.Tag)
	}
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.recordTransportFailure()
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.setPermission(PermissionDenied)
		return fmt.Errorf("alert endpoint returned %s", resp.Status)
	}

	w.setPermission(PermissionGranted)
	return nil
}

// Permission reports the outcome of the most recent delivery attempt.
func (w *Webhook) Permission() Permission {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.perm
}

func (w *Webhook) setPermission(p Permission) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.perm = p
	w.failures = 0
}

func (w *Webhook) recordTransportFailure() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures++
	if w.failures >= maxTransportFailures {
		w.perm = PermissionDenied
	}
}
