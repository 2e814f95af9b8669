package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:               "8081",
		ShutdownTimeout:    30 * time.Second,
		RateLimitPerMinute: 60,
		DataBackend:        "file",
		DataDir:            "./data",
		LogLevel:           "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid file backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			mutate: func(c *Config) {
				c.DataBackend = "memory"
				c.DataDir = ""
			},
			wantErr: false,
		},
		{
			name: "valid redis backend config",
			mutate: func(c *Config) {
				c.DataBackend = "redis"
				c.RedisURL = "redis://localhost:6379/0"
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [memory file sqlite redis]",
		},
		{
			name:        "file backend missing directory",
			mutate:      func(c *Config) { c.DataDir = "" },
			wantErr:     true,
			errorString: "data directory cannot be empty when using file backend",
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name: "redis backend wrong scheme",
			mutate: func(c *Config) {
				c.DataBackend = "redis"
				c.RedisURL = "http://localhost:6379"
			},
			wantErr:     true,
			errorString: "invalid Redis URL scheme 'http': must be 'redis' or 'rediss'",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
		{
			name:        "zero rate limit",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0",
		},
		{
			name:        "negative flush interval",
			mutate:      func(c *Config) { c.FlushInterval = -time.Second },
			wantErr:     true,
			errorString: "invalid flush interval",
		},
		{
			name:    "flush retries disabled",
			mutate:  func(c *Config) { c.FlushInterval = 0 },
			wantErr: false,
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout 500ms: must be at least 1 second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LogLevel = "loud"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Count(err.Error(), "\n- ") != 2 {
		t.Errorf("expected two listed problems, got %q", err.Error())
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "DATA_DIR", "SQLITE_DB_PATH", "REDIS_URL",
		"REDIS_KEY_PREFIX", "LOG_LEVEL", "EXPORT_DIR", "SHUTDOWN_TIMEOUT", "RATE_LIMIT_PER_MINUTE", "FLUSH_INTERVAL"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "file" {
			t.Errorf("Load() DataBackend = %v, want file", cfg.DataBackend)
		}
		if cfg.DataDir != "./data" {
			t.Errorf("Load() DataDir = %v, want ./data", cfg.DataDir)
		}
		if cfg.SQLiteDBPath != "./data/fintrack.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/fintrack.db", cfg.SQLiteDBPath)
		}
		if cfg.RedisKeyPrefix != "fintrack" {
			t.Errorf("Load() RedisKeyPrefix = %v, want fintrack", cfg.RedisKeyPrefix)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
		}
		if cfg.RateLimitPerMinute != 60 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 60", cfg.RateLimitPerMinute)
		}
		if cfg.FlushInterval != time.Minute {
			t.Errorf("Load() FlushInterval = %v, want 1m", cfg.FlushInterval)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "redis")
		t.Setenv("REDIS_URL", "redis://cache:6379/2")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("SHUTDOWN_TIMEOUT", "5s")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "120")

		cfg := Load()

		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 120", cfg.RateLimitPerMinute)
		}

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "redis" || cfg.RedisURL != "redis://cache:6379/2" {
			t.Errorf("Load() redis settings = %v %v", cfg.DataBackend, cfg.RedisURL)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.ShutdownTimeout != 5*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
		}
	})

	t.Run("bad duration falls back", func(t *testing.T) {
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")
		if cfg := Load(); cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
		}
	})
}
