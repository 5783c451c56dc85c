package core

import (
	"errors"
	"testing"
	"time"
)

func TestResolveAPIKeyPrecedence(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		t.Setenv(APIKeyEnvVar, "sk-env_primary")
		t.Setenv(CompatAPIKeyEnvVar, "sk-env_compat")

		key, err := ResolveAPIKey("sk-explicit_key")
		if err != nil {
			t.Fatalf("ResolveAPIKey() error = %v", err)
		}
		if key.Expose() != "sk-explicit_key" {
			t.Errorf("key = %q", key.Expose())
		}
	})

	t.Run("primary env before compat env", func(t *testing.T) {
		t.Setenv(APIKeyEnvVar, "sk-env_primary")
		t.Setenv(CompatAPIKeyEnvVar, "sk-env_compat")

		key, err := ResolveAPIKey("")
		if err != nil {
			t.Fatalf("ResolveAPIKey() error = %v", err)
		}
		if key.Expose() != "sk-env_primary" {
			t.Errorf("key = %q", key.Expose())
		}
	})

	t.Run("compat env as fallback", func(t *testing.T) {
		t.Setenv(APIKeyEnvVar, "")
		t.Setenv(CompatAPIKeyEnvVar, "sk-env_compat")

		key, err := ResolveAPIKey("")
		if err != nil {
			t.Fatalf("ResolveAPIKey() error = %v", err)
		}
		if key.Expose() != "sk-env_compat" {
			t.Errorf("key = %q", key.Expose())
		}
	})

	t.Run("absent key is a construction error", func(t *testing.T) {
		t.Setenv(APIKeyEnvVar, "")
		t.Setenv(CompatAPIKeyEnvVar, "")

		_, err := ResolveAPIKey("")
		if !errors.Is(err, ErrAuthentication) {
			t.Fatalf("error = %v, want ErrAuthentication", err)
		}
	})
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv(BaseURLEnvVar, "")
	b := NewBackend(Config{APIKey: NewSecret("sk-test_key")})
	cfg := b.Config()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.IdleTimeout != 90*time.Second {
		t.Errorf("IdleTimeout = %v", cfg.IdleTimeout)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.HTTPClient == nil {
		t.Error("HTTPClient not defaulted")
	}
}

func TestConfigNegativeMaxRetriesDisables(t *testing.T) {
	b := NewBackend(Config{APIKey: NewSecret("sk-test_key"), MaxRetries: -1})
	if got := b.Config().MaxRetries; got >= 0 {
		t.Errorf("MaxRetries = %d, want negative (retries disabled)", got)
	}
}

func TestConfigBaseURLFromEnv(t *testing.T) {
	t.Setenv(BaseURLEnvVar, "http://localhost:9999")
	b := NewBackend(Config{APIKey: NewSecret("sk-test_key")})
	if got := b.Config().BaseURL; got != "http://localhost:9999" {
		t.Errorf("BaseURL = %q", got)
	}
}
