package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	Sanitize  SanitizeConfig  `yaml:"sanitize"`
	Quota     QuotaConfig     `yaml:"quota"`
	Search    SearchConfig    `yaml:"search"`
	AI        AIConfig        `yaml:"ai"`
	LinkFetch LinkFetchConfig `yaml:"link_fetch"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Device-Id,X-Client-Timezone"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"90s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// MaxBodyBytes caps the request body; base64 images dominate its size.
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"SERVER_MAX_BODY_BYTES" env-default:"16777216"`
	// TrustProxy makes the client IP come from X-Forwarded-For / X-Real-IP.
	TrustProxy bool `yaml:"trust_proxy" env:"SERVER_TRUST_PROXY" env-default:"false"`
}

// DatabaseConfig holds PostgreSQL connection settings. Only used when the
// quota store is postgres.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
	ApplicationName string        `yaml:"application_name"   env:"DATABASE_APPLICATION_NAME"   env-default:"learnflow"`
}

// AuthConfig holds bearer token verification settings. An empty JWTSecret
// treats every caller as anonymous.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"   env:"AUTH_JWT_SECRET"`
	JWTIssuer   string        `yaml:"jwt_issuer"   env:"AUTH_JWT_ISSUER"`
	JWTAudience string        `yaml:"jwt_audience" env:"AUTH_JWT_AUDIENCE" env-default:"authenticated"`
	ClockSkew   time.Duration `yaml:"clock_skew"   env:"AUTH_CLOCK_SKEW"   env-default:"30s"`
}

// Enabled reports whether bearer tokens are verified.
func (c AuthConfig) Enabled() bool { return c.JWTSecret != "" }

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SanitizeConfig bounds untrusted input.
type SanitizeConfig struct {
	MaxTextLength int `yaml:"max_text_length" env:"SANITIZE_MAX_TEXT_LENGTH" env-default:"1000"`
	MaxImageBytes int `yaml:"max_image_bytes" env:"SANITIZE_MAX_IMAGE_BYTES" env-default:"10485760"`
}

// Quota store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// QuotaConfig holds admission control settings.
type QuotaConfig struct {
	// Store is memory or postgres.
	Store           string        `yaml:"store"            env:"QUOTA_STORE"            env-default:"memory"`
	RateLimit       int           `yaml:"rate_limit"       env:"QUOTA_RATE_LIMIT"       env-default:"10"`
	RateWindow      time.Duration `yaml:"rate_window"      env:"QUOTA_RATE_WINDOW"      env-default:"1m"`
	DailyLimit      int           `yaml:"daily_limit"      env:"QUOTA_DAILY_LIMIT"      env-default:"5"`
	KeySalt         string        `yaml:"key_salt"         env:"QUOTA_KEY_SALT"`
	DefaultTimezone string        `yaml:"default_timezone" env:"QUOTA_DEFAULT_TIMEZONE" env-default:"UTC"`
	PurgeSchedule   string        `yaml:"purge_schedule"   env:"QUOTA_PURGE_SCHEDULE"   env-default:"@every 10m"`
}

// SearchConfig holds the web search source settings. An empty Endpoint
// disables search.
type SearchConfig struct {
	Endpoint  string        `yaml:"endpoint"   env:"SEARCH_ENDPOINT"`
	APIKey    string        `yaml:"api_key"    env:"SEARCH_API_KEY"`
	Timeout   time.Duration `yaml:"timeout"    env:"SEARCH_TIMEOUT"    env-default:"8s"`
	CacheSize int           `yaml:"cache_size" env:"SEARCH_CACHE_SIZE" env-default:"256"`
	CacheTTL  time.Duration `yaml:"cache_ttl"  env:"SEARCH_CACHE_TTL"  env-default:"5m"`
}

// Completion providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOffline   = "offline"
)

// AIConfig holds completion provider settings. An empty APIKey selects the
// offline responder.
type AIConfig struct {
	Provider        string        `yaml:"provider"          env:"AI_PROVIDER"          env-default:"gemini"`
	APIKey          string        `yaml:"api_key"           env:"AI_API_KEY"`
	BaseURL         string        `yaml:"base_url"          env:"AI_BASE_URL"`
	Model           string        `yaml:"model"             env:"AI_MODEL"`
	Timeout         time.Duration `yaml:"timeout"           env:"AI_TIMEOUT"           env-default:"60s"`
	FallbackOnError bool          `yaml:"fallback_on_error" env:"AI_FALLBACK_ON_ERROR" env-default:"false"`
	Temperature     float64       `yaml:"temperature"       env:"AI_TEMPERATURE"       env-default:"0.7"`
	TopK            int           `yaml:"top_k"             env:"AI_TOP_K"             env-default:"40"`
	TopP            float64       `yaml:"top_p"             env:"AI_TOP_P"             env-default:"0.95"`
	MaxOutputTokens int           `yaml:"max_output_tokens" env:"AI_MAX_OUTPUT_TOKENS" env-default:"2048"`
}

// EffectiveProvider is the provider actually used: offline when no key is set.
func (c AIConfig) EffectiveProvider() string {
	if strings.TrimSpace(c.APIKey) == "" {
		return ProviderOffline
	}
	return strings.ToLower(c.Provider)
}

// LinkFetchConfig bounds linked page retrieval.
type LinkFetchConfig struct {
	Enabled  bool          `yaml:"enabled"   env:"LINK_FETCH_ENABLED"   env-default:"true"`
	Timeout  time.Duration `yaml:"timeout"   env:"LINK_FETCH_TIMEOUT"   env-default:"5s"`
	MaxBytes int64         `yaml:"max_bytes" env:"LINK_FETCH_MAX_BYTES" env-default:"1048576"`
}
