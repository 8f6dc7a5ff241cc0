package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mgaillard/cooloff/internal/config"
	"github.com/mgaillard/cooloff/internal/domain"
	"github.com/mgaillard/cooloff/internal/httpserver"
	"github.com/mgaillard/cooloff/internal/httpserver/deps"
	"github.com/mgaillard/cooloff/internal/logger"
	"github.com/mgaillard/cooloff/internal/notify"
	"github.com/mgaillard/cooloff/internal/redis"
	"github.com/mgaillard/cooloff/internal/scheduler"
	"github.com/mgaillard/cooloff/internal/sources/seedfile"
	"github.com/mgaillard/cooloff/internal/store"
	redisstore "github.com/mgaillard/cooloff/internal/store/redis"
	"github.com/mgaillard/cooloff/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       *store.Memory
	reconciler  *scheduler.Reconciler
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis backs the persistence channel. Unreachable Redis is a
	// degraded mode, not a startup failure: state stays in memory only.
	var redisClient *goredis.Client
	var persisted *redisstore.Store
	client, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Warn("redis unavailable, running memory-only; changes will not survive a restart",
			logger.Error(err))
	} else {
		redisClient = client
		persisted = redisstore.NewStore(redisClient, loggerClient)
	}

	// Canonical store, seeded from Redis when available. Config supplies
	// the settings used until something persisted overrides them.
	bootSettings := domain.Settings{
		DefaultDurationMs: cfg.DefaultCooldown.Milliseconds(),
		SoundOn:           cfg.SoundOn,
	}
	var memStore *store.Memory
	if persisted != nil {
		memStore = store.NewMemory(persisted, loggerClient)
		scheduler.NewRedisSyncer(persisted, memStore, bootSettings, loggerClient).Sync(context.Background())
	} else {
		memStore = store.NewMemory(nil, loggerClient)
		memStore.Seed(nil, bootSettings)
	}

	// Optional seed file pre-populates an empty store on first start.
	if cfg.SeedFile != "" && memStore.Count() == 0 {
		seedStore(cfg, memStore, loggerClient)
	}

	// Delivery capability. No webhook configured = silent no-op.
	var notifier notify.Notifier
	if cfg.NtfyURL != "" {
		notifier = notify.NewWebhook(cfg.NtfyURL, cfg.NtfyToken, cfg.NtfyTimeout, loggerClient)
		loggerClient.Info("notification webhook configured", logger.String("url", cfg.NtfyURL))
	} else {
		notifier = notify.Noop{}
		loggerClient.Info("no notification webhook configured, alerts disabled")
	}

	chime := notify.NewCommandChime(cfg.ChimeCommand, loggerClient)

	reconciler := scheduler.NewReconciler(memStore, notifier, chime, loggerClient, cfg.TickInterval)

	d := deps.Deps{
		Logger:      loggerClient,
		StartTime:   time.Now(),
		Version:     version.Version,
		Commit:      version.Commit,
		BuildDate:   version.BuildDate,
		GoVersion:   version.GoVersion,
		TimeNow:     time.Now,
		Store:       memStore,
		Reconciler:  reconciler,
		Notifier:    notifier,
		RedisClient: redisClient,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		store:       memStore,
		reconciler:  reconciler,
	}
}

// seedStore loads the configured sites.yaml into the empty store.
func seedStore(cfg *config.Config, memStore *store.Memory, log logger.Logger) {
	drafts, errs := seedfile.NewLoader(cfg.SeedFile).Load(cfg.DefaultCooldown.Milliseconds())
	for _, err := range errs {
		log.Warn("seed file entry skipped", logger.Error(err))
	}

	now := time.Now()
	for _, draft := range drafts {
		if _, err := memStore.Upsert(context.Background(), draft, now, false); err != nil {
			log.Warn("failed to seed site", logger.String("url", draft.URL), logger.Error(err))
		}
	}
	if len(drafts) > 0 {
		log.Info("store seeded from file",
			logger.String("file", cfg.SeedFile),
			logger.Int("sites", len(drafts)))
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting cooloff v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("cooloff %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the reconciliation loop.
	a.reconciler.Start(ctx)
	a.logger.Info("reconciler started",
		logger.Duration("tick_interval", a.cfg.TickInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reconciler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ cooloff stopped cleanly")
	return nil
}
