package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	TickInterval    time.Duration // reconciliation period (default: 1s)
	DefaultCooldown time.Duration // seed cooldown for new sites (default: 30m)
	SoundOn         bool          // default for the audio side effect
	ChimeCommand    string        // command run on expiry when sound is on (optional)
	SeedFile        string        // path to a sites.yaml seed file (optional)

	// Notification webhook (ntfy-style). Empty = notifications disabled.
	NtfyURL     string
	NtfyToken   string        // optional bearer token
	NtfyTimeout time.Duration // per-publish timeout

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("COOLOFF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("COOLOFF_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("COOLOFF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("COOLOFF_PRETTY_LOG", true),

		// Cooldown engine
		TickInterval:    mustDuration("COOLOFF_TICK_INTERVAL", time.Second),
		DefaultCooldown: mustDuration("COOLOFF_DEFAULT_COOLDOWN", 30*time.Minute),
		SoundOn:         mustBool("COOLOFF_SOUND", true),
		ChimeCommand:    getenv("COOLOFF_CHIME_COMMAND", ""),
		SeedFile:        getenv("COOLOFF_SEED_FILE", ""),

		// Notifications
		NtfyURL:     getenv("COOLOFF_NTFY_URL", ""),
		NtfyToken:   getenv("COOLOFF_NTFY_TOKEN", ""),
		NtfyTimeout: mustDuration("COOLOFF_NTFY_TIMEOUT", 5*time.Second),

		// Redis settings
		RedisAddr:           getenv("COOLOFF_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("COOLOFF_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("COOLOFF_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("COOLOFF_REDIS_DB", 0),
		RedisDT:             mustDuration("COOLOFF_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("COOLOFF_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("COOLOFF_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("COOLOFF_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("COOLOFF_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("COOLOFF_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("COOLOFF_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("COOLOFF_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("COOLOFF_REDIS_WARN_THRESHOLD", 3),
	}

	if cfg.TickInterval <= 0 {
		panic("❌ FATAL: COOLOFF_TICK_INTERVAL must be > 0")
	}
	if cfg.DefaultCooldown < time.Minute {
		panic("❌ FATAL: COOLOFF_DEFAULT_COOLDOWN must be at least 1m")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.NtfyToken != "" {
			cfgCopy.NtfyToken = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
