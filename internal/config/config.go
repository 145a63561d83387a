package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultInGameApplyURL  = "https://docs.google.com/forms/d/e/1FAIpQLSeBGToFyw94cUy32qhNKl1AJfgucb8impgq4KkK9OBak0VsAw/viewform"
	defaultDiscordApplyURL = "https://docs.google.com/forms/d/e/1FAIpQLSfcr-lxszpLOSVB9-CQBCKGNNvhPiM9LUlwjhoMd3JNX13eFg/viewform"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Discord  DiscordConfig
	Panel    PanelConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Lock     LockConfig
	Logger   LoggerConfig
}

// AppConfig controls the health/metrics HTTP surface.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	HTTPEnabled           bool
	RequestTimeoutSeconds int
}

// DiscordConfig holds gateway credentials and the guild resources the ticket
// workflow depends on. The ids are fixed for the lifetime of the process.
type DiscordConfig struct {
	Token              string
	CommandPrefix      string
	StaffRoleID        string
	TicketCategoryID   string
	TicketLogChannelID string
}

// PanelConfig holds the static content of the command panels.
type PanelConfig struct {
	FooterText      string
	ThumbnailURL    string
	InGameApplyURL  string
	DiscordApplyURL string
}

// PostgresConfig holds DB connection values for the transcript archive.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LockConfig tunes the ticket creation lock.
type LockConfig struct {
	KeyPrefix  string
	TTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Encoding    string
	Development bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-ticket-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			HTTPEnabled:           getEnvAsBool("HTTP_ENABLED", true),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 10),
		},
		Discord: DiscordConfig{
			Token:              os.Getenv("DISCORD_TOKEN"),
			CommandPrefix:      getEnv("COMMAND_PREFIX", "!ss"),
			StaffRoleID:        os.Getenv("STAFF_ROLE_ID"),
			TicketCategoryID:   os.Getenv("TICKET_CATEGORY_ID"),
			TicketLogChannelID: os.Getenv("TICKET_LOG_CHANNEL_ID"),
		},
		Panel: PanelConfig{
			FooterText:      getEnv("PANEL_FOOTER_TEXT", "Developer = @shannjockey!"),
			ThumbnailURL:    getEnv("PANEL_THUMBNAIL_URL", "https://i.imgur.com/Qys8KcJ.png"),
			InGameApplyURL:  getEnv("APPLY_INGAME_URL", defaultInGameApplyURL),
			DiscordApplyURL: getEnv("APPLY_DISCORD_URL", defaultDiscordApplyURL),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Lock: LockConfig{
			KeyPrefix:  getEnv("LOCK_KEY_PREFIX", "ticket-bot:lock:"),
			TTLSeconds: getEnvAsInt("LOCK_TTL_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Encoding:    getEnv("LOG_ENCODING", "json"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	return cfg, nil
}

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Discord.Token) == "" {
		errs = append(errs, errors.New("DISCORD_TOKEN is required"))
	}
	if strings.TrimSpace(c.Discord.StaffRoleID) == "" {
		errs = append(errs, errors.New("STAFF_ROLE_ID is required"))
	}
	if strings.TrimSpace(c.Discord.CommandPrefix) == "" {
		errs = append(errs, errors.New("COMMAND_PREFIX must not be empty"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns how long a creation lock may be held before it expires.
func (l LockConfig) TTL() time.Duration {
	if l.TTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(l.TTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
