package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Identity backend selectors.
const (
	IdentityBackendRecordStore = "record_store"
	IdentityBackendPostgres    = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Zoom      ZoomConfig
	Roster    RosterConfig
	Signature SignatureConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// HTTPConfig bounds the public HTTP surface.
type HTTPConfig struct {
	AllowedOrigins     string
	RateLimitPerMinute int
	BodyLimitBytes     int
}

// ZoomConfig holds Meeting SDK and Server-to-Server OAuth credentials.
type ZoomConfig struct {
	SDKKey         string
	SDKSecret      string
	ClientID       string
	ClientSecret   string
	AccountID      string
	AccountsURL    string
	APIURL         string
	TimeoutSeconds int
}

// RosterConfig points at the participant roster backend.
type RosterConfig struct {
	Backend        string
	BaseURL        string
	Token          string
	CollectionID   string
	TimeoutSeconds int
}

// SignatureConfig shapes the issued Meeting SDK signatures.
type SignatureConfig struct {
	TTLSeconds             int
	DefaultVideoMode       int
	EnforceAllowedMeetings bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds the optional shared token cache connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
	ServiceName string
}

// Load reads configuration from environment variables, applying defaults
// where possible. Credentials have no defaults: a missing one is a startup
// error, never a silently unsigned deployment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	upstreamTimeout := getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 10)

	appName := getEnv("APP_NAME", "meetingsdk-auth-endpoint")
	appEnv := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:                  appName,
			Env:                   appEnv,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "4000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			AllowedOrigins:     os.Getenv("ALLOWED_ORIGINS"),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			BodyLimitBytes:     getEnvAsInt("BODY_LIMIT_BYTES", 32*1024),
		},
		Zoom: ZoomConfig{
			SDKKey:         os.Getenv("ZOOM_MEETING_SDK_KEY"),
			SDKSecret:      os.Getenv("ZOOM_MEETING_SDK_SECRET"),
			ClientID:       os.Getenv("ZOOM_S2S_CLIENT_ID"),
			ClientSecret:   os.Getenv("ZOOM_S2S_CLIENT_SECRET"),
			AccountID:      os.Getenv("ZOOM_S2S_ACCOUNT_ID"),
			AccountsURL:    getEnv("ZOOM_OAUTH_BASE_URL", "https://zoom.us"),
			APIURL:         getEnv("ZOOM_API_BASE_URL", "https://api.zoom.us"),
			TimeoutSeconds: upstreamTimeout,
		},
		Roster: RosterConfig{
			Backend:        getEnv("IDENTITY_BACKEND", IdentityBackendRecordStore),
			BaseURL:        getEnv("ROSTER_API_BASE_URL", "https://api.airtable.com/v0"),
			Token:          os.Getenv("ROSTER_API_TOKEN"),
			CollectionID:   os.Getenv("ROSTER_COLLECTION_ID"),
			TimeoutSeconds: upstreamTimeout,
		},
		Signature: SignatureConfig{
			TTLSeconds:             getEnvAsInt("SIGNATURE_TTL_SECONDS", 3600),
			DefaultVideoMode:       getEnvAsInt("DEFAULT_VIDEO_WEBRTC_MODE", 1),
			EnforceAllowedMeetings: getEnvAsBool("ENFORCE_ALLOWED_MEETINGS", false),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: appEnv != "production",
			ServiceName: appName,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	missing := []string{}

	requireEnv(&missing, "ZOOM_MEETING_SDK_KEY", c.Zoom.SDKKey)
	requireEnv(&missing, "ZOOM_MEETING_SDK_SECRET", c.Zoom.SDKSecret)
	requireEnv(&missing, "ZOOM_S2S_CLIENT_ID", c.Zoom.ClientID)
	requireEnv(&missing, "ZOOM_S2S_CLIENT_SECRET", c.Zoom.ClientSecret)
	requireEnv(&missing, "ZOOM_S2S_ACCOUNT_ID", c.Zoom.AccountID)
	requireEnv(&missing, "ALLOWED_ORIGINS", c.HTTP.AllowedOrigins)

	switch c.Roster.Backend {
	case IdentityBackendRecordStore:
		requireEnv(&missing, "ROSTER_API_TOKEN", c.Roster.Token)
		requireEnv(&missing, "ROSTER_COLLECTION_ID", c.Roster.CollectionID)
	case IdentityBackendPostgres:
		requireEnv(&missing, "POSTGRES_DSN", c.Postgres.DSN)
	default:
		return fmt.Errorf("invalid IDENTITY_BACKEND %q: must be %q or %q",
			c.Roster.Backend, IdentityBackendRecordStore, IdentityBackendPostgres)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Signature.DefaultVideoMode != 0 && c.Signature.DefaultVideoMode != 1 {
		return fmt.Errorf("invalid DEFAULT_VIDEO_WEBRTC_MODE %d: must be 0 or 1", c.Signature.DefaultVideoMode)
	}

	return nil
}

func requireEnv(missing *[]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		*missing = append(*missing, name)
	}
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

// UpstreamTimeout returns the outbound HTTP timeout for Zoom API calls.
func (z ZoomConfig) UpstreamTimeout() time.Duration {
	if z.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(z.TimeoutSeconds) * time.Second
}

// UpstreamTimeout returns the outbound HTTP timeout for roster lookups.
func (r RosterConfig) UpstreamTimeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Enabled reports whether the optional shared Redis tier is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
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
