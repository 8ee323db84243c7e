package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a fully valid configuration for testing.
func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "quotify",
			Version:     "1.0.0",
			Environment: "local",
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxRequestSize:  1048576,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Client: ClientConfig{
			Timeout: 10 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     2 * time.Second,
				Multiplier:      2.0,
				JitterFactor:    0.25,
			},
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:   5,
				Timeout:       30 * time.Second,
				HalfOpenLimit: 3,
			},
			Transport: TransportConfig{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Services: ServicesConfig{
			Quote: ServiceEndpointConfig{
				BaseURL: "https://api.quotable.io",
				Name:    "quote-service",
			},
		},
		Store: StoreConfig{
			TargetSize:  60,
			PageSize:    20,
			TTL:         24 * time.Hour,
			LoadTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: CacheBackendFile,
			Path:    "./data/cache.json",
		},
		Share: ShareConfig{
			IntentURL: "https://twitter.com/intent/tweet",
			Hashtags:  []string{"Quotify"},
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_AppConfig(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Name = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app.name is required")
	})

	t.Run("invalid environment", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Environment = "invalid"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app.environment must be one of")
	})
}

func TestConfig_Validate_ServerPort(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"minimum valid port", 1, false},
		{"typical port", 8080, false},
		{"maximum valid port", 65535, false},
		{"zero port", 0, true},
		{"port too high", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "server.port")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate_LogConfig(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Log.Level = level

			assert.NoError(t, cfg.Validate())
		})
	}

	t.Run("pretty format", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Format = "pretty"

		assert.NoError(t, cfg.Validate())
	})

	t.Run("file enabled without path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.File = LogFileConfig{Enabled: true}

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.file.path is required when log.file.enabled is true")
	})
}

func TestConfig_Validate_StoreConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*StoreConfig)
		wantField string
	}{
		{
			name:      "page larger than batch",
			mutate:    func(s *StoreConfig) { s.TargetSize = 10; s.PageSize = 20 },
			wantField: "store.page_size must not exceed store.target_size",
		},
		{
			name:      "batch larger than fallback table",
			mutate:    func(s *StoreConfig) { s.TargetSize = 61 },
			wantField: "store.target_size must not exceed the 60-entry fallback table",
		},
		{
			name:      "zero page size",
			mutate:    func(s *StoreConfig) { s.PageSize = 0 },
			wantField: "store.page_size is required",
		},
		{
			name:      "sub-second ttl",
			mutate:    func(s *StoreConfig) { s.TTL = time.Millisecond },
			wantField: "store.ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Store)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}

	t.Run("page equals batch", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.TargetSize = 20
		cfg.Store.PageSize = 20

		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_Validate_CacheConfig(t *testing.T) {
	t.Run("memory needs no path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache = CacheConfig{Backend: CacheBackendMemory}

		assert.NoError(t, cfg.Validate())
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache = CacheConfig{Backend: CacheBackendSQLite}

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.path is required unless cache.backend is memory")
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Backend = "redis"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.backend must be one of")
	})
}

func TestConfig_Validate_ServiceAndShareURLs(t *testing.T) {
	cfg := validConfig()
	cfg.Services.Quote.BaseURL = "not a url"
	cfg.Share.IntentURL = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "services.quote.base_url must be a valid URL")
	assert.Contains(t, err.Error(), "share.intent_url is required")
}

func TestConfig_Validate_RetryConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Client.Retry.MaxAttempts = 11

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client.retry.max_attempts must be at most 10")
}

func TestFormatFieldPath(t *testing.T) {
	tests := []struct {
		namespace string
		expected  string
	}{
		{"Config.server.port", "server.port"},
		{"Config.store.target_size", "store.target_size"},
		{"Config.client.retry.max_attempts", "client.retry.max_attempts"},
		{"Config", "Config"},
	}

	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFieldPath(tt.namespace))
		})
	}
}

func TestSiblingKey(t *testing.T) {
	assert.Equal(t, "store.target_size", siblingKey("store.page_size", "TargetSize"))
	assert.Equal(t, "cache.backend", siblingKey("cache.path", "Backend"))
	assert.Equal(t, "enabled", siblingKey("path", "Enabled"))
}

func TestConfig_Validate_ReportsEveryViolation(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Log.Level = "loud"
	cfg.Store.TargetSize = 100

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "server.port is required")
	assert.Contains(t, msg, "log.level must be one of: trace debug info warn error")
	assert.Contains(t, msg, "store.target_size must not exceed the 60-entry fallback table")
}
