package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Quota.validate(); err != nil {
		return fmt.Errorf("quota: %w", err)
	}
	if c.Quota.Store == StorePostgres && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when quota.store is %q", StorePostgres)
	}

	if c.Sanitize.MaxTextLength <= 0 {
		return fmt.Errorf("sanitize.max_text_length must be > 0 (got %d)", c.Sanitize.MaxTextLength)
	}
	if c.Sanitize.MaxImageBytes <= 0 {
		return fmt.Errorf("sanitize.max_image_bytes must be > 0 (got %d)", c.Sanitize.MaxImageBytes)
	}
	if int64(c.Sanitize.MaxImageBytes) > c.Server.MaxBodyBytes {
		return fmt.Errorf("server.max_body_bytes (%d) must not be below sanitize.max_image_bytes (%d)",
			c.Server.MaxBodyBytes, c.Sanitize.MaxImageBytes)
	}

	if err := c.AI.validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	if c.LinkFetch.Enabled && (c.LinkFetch.Timeout <= 0 || c.LinkFetch.MaxBytes <= 0) {
		return fmt.Errorf("link_fetch: timeout and max_bytes must be > 0")
	}

	return nil
}

func (q *QuotaConfig) validate() error {
	switch q.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("store must be %q or %q (got %q)", StoreMemory, StorePostgres, q.Store)
	}
	if q.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be > 0 (got %d)", q.RateLimit)
	}
	if q.RateWindow < time.Second {
		return fmt.Errorf("rate_window must be >= 1s (got %v)", q.RateWindow)
	}
	if q.DailyLimit <= 0 {
		return fmt.Errorf("daily_limit must be > 0 (got %d)", q.DailyLimit)
	}
	if _, err := time.LoadLocation(q.DefaultTimezone); err != nil {
		return fmt.Errorf("default_timezone: %w", err)
	}
	if q.PurgeSchedule != "" {
		if _, err := cron.ParseStandard(q.PurgeSchedule); err != nil {
			return fmt.Errorf("purge_schedule: %w", err)
		}
	}
	return nil
}

func (a *AIConfig) validate() error {
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	switch a.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOffline:
	default:
		return fmt.Errorf("provider %q is not supported", a.Provider)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", a.Timeout)
	}
	if a.Temperature < 0 || a.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2] (got %v)", a.Temperature)
	}
	if a.TopP < 0 || a.TopP > 1 {
		return fmt.Errorf("top_p must be in [0, 1] (got %v)", a.TopP)
	}
	if a.TopK < 0 || a.MaxOutputTokens <= 0 {
		return fmt.Errorf("top_k must be >= 0 and max_output_tokens > 0")
	}
	return nil
}
