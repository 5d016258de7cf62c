package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Environment variable names recognized by the harness.
const (
	EnvAPIBaseURL         = "API_BASE_URL"
	EnvAPITimeout         = "API_TIMEOUT"
	EnvTenantID           = "AZURE_TENANT_ID"
	EnvAppsFile           = "APPS_FILE"
	EnvMockAuth           = "MOCK_AUTH"
	EnvMockAuthToken      = "MOCK_AUTH_TOKEN"
	EnvRetryMaxAttempts   = "RETRY_MAX_ATTEMPTS"
	EnvRetryBackoffFactor = "RETRY_BACKOFF_FACTOR"
	EnvRetryInitialDelay  = "RETRY_INITIAL_DELAY"
	EnvLogLevel           = "LOG_LEVEL"
)

// Config holds the harness-wide settings.
type Config struct {
	// BaseURL is the target API's base URL, without a trailing slash.
	BaseURL string

	// Timeout is the per-call HTTP timeout.
	Timeout time.Duration

	// TenantID is the default OAuth authority tenant.
	TenantID string

	// AppsFile is the path to the identity source.
	AppsFile string

	// MockAuth enables the process-wide mock switch: token acquisition is
	// bypassed and simulation headers are injected.
	MockAuth bool

	// MockAuthToken is the bearer value returned under mock mode.
	MockAuthToken string

	// Token acquisition retry tuning.
	RetryMaxAttempts   int
	RetryBackoffFactor float64
	RetryInitialDelay  time.Duration

	// LogLevel is the harness log filter level name.
	LogLevel string
}

// Load reads the harness settings from the environment, applying defaults,
// and validates the required values.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvAPITimeout, 30)
	v.SetDefault(EnvAppsFile, "apps.yaml")
	v.SetDefault(EnvMockAuth, false)
	v.SetDefault(EnvMockAuthToken, "mock-token")
	v.SetDefault(EnvRetryMaxAttempts, 3)
	v.SetDefault(EnvRetryBackoffFactor, 2.0)
	v.SetDefault(EnvRetryInitialDelay, 1)
	v.SetDefault(EnvLogLevel, "info")

	cfg := &Config{
		BaseURL:            v.GetString(EnvAPIBaseURL),
		Timeout:            time.Duration(v.GetInt(EnvAPITimeout)) * time.Second,
		TenantID:           v.GetString(EnvTenantID),
		AppsFile:           v.GetString(EnvAppsFile),
		MockAuth:           v.GetBool(EnvMockAuth),
		MockAuthToken:      v.GetString(EnvMockAuthToken),
		RetryMaxAttempts:   v.GetInt(EnvRetryMaxAttempts),
		RetryBackoffFactor: v.GetFloat64(EnvRetryBackoffFactor),
		RetryInitialDelay:  time.Duration(v.GetFloat64(EnvRetryInitialDelay) * float64(time.Second)),
		LogLevel:           v.GetString(EnvLogLevel),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required settings are present and coherent.
// It fails fast so a misconfigured environment aborts the run before any
// test executes.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%s is required", EnvAPIBaseURL)
	}
	if !c.MockAuth && c.TenantID == "" {
		return fmt.Errorf("%s is required unless %s is enabled", EnvTenantID, EnvMockAuth)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", EnvRetryMaxAttempts, c.RetryMaxAttempts)
	}
	if c.RetryBackoffFactor < 1 {
		return fmt.Errorf("%s must be at least 1, got %g", EnvRetryBackoffFactor, c.RetryBackoffFactor)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvAPITimeout)
	}
	return nil
}
