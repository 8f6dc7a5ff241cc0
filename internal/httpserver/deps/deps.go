package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/notify"
	"github.com/mgaillard/cooloff/internal/scheduler"
	"github.com/mgaillard/cooloff/internal/store"
)

type Deps struct {
	Logger      logger.Logger
	StartTime   time.Time
	Version     string
	Commit      string
	BuildDate   string
	GoVersion   string
	TimeNow     func() time.Time // for testing, defaults to time.Now
	Store       *store.Memory    // canonical site store + settings
	Reconciler  *scheduler.Reconciler
	Notifier    notify.Notifier
	RedisClient *redis.Client // nil when persistence is degraded
}

// Now returns the injected clock, falling back to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
