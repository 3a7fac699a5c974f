package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Jikan
		Auth
		AiringCheck
		Tasks
		Notify
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Jikan struct {
		BaseURL   string
		Timeout   time.Duration
		RateLimit time.Duration // minimum interval between API requests
	}
	Auth struct {
		BcryptCost int
	}
	AiringCheck struct {
		Enabled  bool
		Schedule string // Cron format: "0 9 * * *" = daily at 09:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
		RefreshSchedule string // Cron format for enqueuing metadata refreshes
	}
	Notify struct {
		Enabled bool
		Addr    string // UDP listen address for notification clients
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8385)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Jikan API defaults. The public instance enforces roughly one request
	// per second, so the client self-throttles.
	v.SetDefault("jikan_base_url", DefaultJikanBaseURL)
	v.SetDefault("jikan_timeout", "10s")
	v.SetDefault("jikan_rate_limit", "1s")

	v.SetDefault("auth_bcrypt_cost", 12)

	v.SetDefault("airing_check_enabled", false)
	v.SetDefault("airing_check_schedule", "0 9 * * *") // Daily at 09:00

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_refresh_schedule", "0 6 * * *") // Daily at 06:00

	v.SetDefault("notify_enabled", false)
	v.SetDefault("notify_addr", "127.0.0.1:8386")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Jikan: Jikan{
			BaseURL:   v.GetString("JIKAN_BASE_URL"),
			Timeout:   v.GetDuration("JIKAN_TIMEOUT"),
			RateLimit: v.GetDuration("JIKAN_RATE_LIMIT"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		AiringCheck: AiringCheck{
			Enabled:  v.GetBool("AIRING_CHECK_ENABLED"),
			Schedule: v.GetString("AIRING_CHECK_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RefreshSchedule: v.GetString("TASK_REFRESH_SCHEDULE"),
		},
		Notify: Notify{
			Enabled: v.GetBool("NOTIFY_ENABLED"),
			Addr:    v.GetString("NOTIFY_ADDR"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
