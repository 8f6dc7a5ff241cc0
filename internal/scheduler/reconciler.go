package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/notify"
	"github.com/mgaillard/cooloff/internal/store"
)

// DefaultTickInterval is the reconciliation period when none is
// configured.
const DefaultTickInterval = time.Second

// expiryKey identifies one expiry event. The same (site, end) pair must
// never produce more than one delivery, no matter how many ticks observe
// it before the transition lands.
type expiryKey struct {
	ID    string
	EndAt int64 // unix milliseconds
}

// Reconciler drives the cooldown state machine. Every tick it finds
// sites whose cooldown has elapsed, transitions them to ready in one
// batched store update, and fires the delivery and audio side effects at
// most once per expiry event.
//
// The dedup ledger is owned exclusively by the reconciler and lives for
// the process lifetime only.
type Reconciler struct {
	store    *store.Memory
	notifier notify.Notifier
	chime    notify.Chime
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}

	mu     sync.Mutex
	ledger map[expiryKey]struct{}
}

// NewReconciler creates a reconciler ticking at the given interval.
func NewReconciler(
	st *store.Memory,
	notifier notify.Notifier,
	chime notify.Chime,
	log logger.Logger,
	interval time.Duration,
) *Reconciler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Reconciler{
		store:    st,
		notifier: notifier,
		chime:    chime,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		ledger:   make(map[expiryKey]struct{}),
	}
}

// Start begins the periodic reconciliation loop.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				r.Tick(ctx, now)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop. No in-flight tick is interrupted mid-batch.
func (r *Reconciler) Stop() {
	close(r.stopCh)
}

// Tick runs one reconciliation pass against a single consistent "now".
// A tick with no elapsed cooldowns mutates and persists nothing.
func (r *Reconciler) Tick(ctx context.Context, now time.Time) {
	due := make(map[string]time.Time)
	for _, s := range r.store.Snapshot() {
		if s.Due(now) {
			due[s.ID] = *s.EndAt
		}
	}
	if len(due) == 0 {
		return
	}

	ids := make([]string, 0, len(due))
	for id := range due {
		ids = append(ids, id)
	}

	// One batched update, one persistence write. Sites deleted or
	// restarted since the snapshot are skipped inside the store.
	done := r.store.CompleteCooldowns(ctx, ids, now)
	if len(done) == 0 {
		return
	}

	r.logger.Info("cooldowns completed",
		logger.Int("count", len(done)),
		logger.Time("now", now))

	soundOn := r.store.Settings().SoundOn
	for _, site := range done {
		endAt, ok := due[site.ID]
		if !ok {
			continue
		}
		key := expiryKey{ID: site.ID, EndAt: endAt.UnixMilli()}
		if !r.markDelivered(key) {
			continue
		}
		r.deliver(ctx, site, key, soundOn)
	}
}

// deliver fires the notification and chime for one expiry. Both are best
// effort: a failure never blocks the transition or other sites in the
// batch.
func (r *Reconciler) deliver(ctx context.Context, site *domain.Site, key expiryKey, soundOn bool) {
	alert := notify.Alert{
		Title: site.Label,
		Body:  fmt.Sprintf("Cooldown finished, %s is ready to visit", site.URL),
		Icon:  site.Favicon,
		Tag:   fmt.Sprintf("%s-%d", key.ID, key.EndAt),
	}
	if err := r.notifier.Send(ctx, alert); err != nil {
		r.logger.Debug("alert delivery unavailable",
			logger.String("site_id", site.ID),
			logger.Error(err))
	}

	if !soundOn {
		return
	}
	if err := r.chime.Play(ctx); err != nil {
		r.logger.Debug("chime unavailable",
			logger.String("site_id", site.ID),
			logger.Error(err))
	}
}

// markDelivered records the expiry event, returning false if it was
// already delivered.
func (r *Reconciler) markDelivered(key expiryKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.ledger[key]; seen {
		return false
	}
	r.ledger[key] = struct{}{}
	return true
}

// LedgerSize reports how many expiry events have been delivered so far.
// Exposed for the infra endpoint.
func (r *Reconciler) LedgerSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ledger)
}
