package core

import (
	"net/http"
	"os"
	"time"
)

// Defaults applied by NewBackend when the corresponding Config field is zero.
const (
	DefaultBaseURL     = "https://api.kafeido.app"
	DefaultTimeout     = 120 * time.Second
	DefaultIdleTimeout = 90 * time.Second
	DefaultMaxRetries  = 2
	DefaultUserAgent   = "kafeido-go/0.1.0"
)

// Environment variables recognized at client construction.
const (
	// APIKeyEnvVar is the primary API key environment variable.
	APIKeyEnvVar = "KAFEIDO_API_KEY"
	// CompatAPIKeyEnvVar is checked after APIKeyEnvVar, for drop-in
	// compatibility with OpenAI SDK setups.
	CompatAPIKeyEnvVar = "OPENAI_API_KEY"
	// BaseURLEnvVar overrides the default base URL.
	BaseURLEnvVar = "KAFEIDO_BASE_URL"
)

// Config is the process-scoped configuration shared by every request on a
// client. It is read-only after construction; concurrent calls share it
// without locking.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// APIKey authenticates every request as a bearer token.
	APIKey Secret

	// Timeout bounds the total duration of a non-streaming call.
	Timeout time.Duration

	// IdleTimeout bounds the gap between successive chunks of a
	// streaming call, whose total duration is unbounded.
	IdleTimeout time.Duration

	// MaxRetries is the number of retries after the initial attempt.
	// Zero selects the default of 2; a negative value disables retries.
	MaxRetries int

	// Headers are sent with every request, before per-request overrides.
	Headers http.Header

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// HTTPClient overrides http.DefaultClient.
	HTTPClient *http.Client
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		if env := os.Getenv(BaseURLEnvVar); env != "" {
			c.BaseURL = env
		} else {
			c.BaseURL = DefaultBaseURL
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	return c
}

// ResolveAPIKey returns the API key to use, with documented precedence:
// the explicit value wins, then KAFEIDO_API_KEY, then OPENAI_API_KEY.
// The key is read once at construction, never lazily per request.
// An absent key is a construction-time authentication error.
func ResolveAPIKey(explicit string) (Secret, error) {
	if explicit != "" {
		return NewSecret(explicit), nil
	}
	if key := os.Getenv(APIKeyEnvVar); key != "" {
		return NewSecret(key), nil
	}
	if key := os.Getenv(CompatAPIKeyEnvVar); key != "" {
		return NewSecret(key), nil
	}
	return Secret{}, &Error{
		Kind: KindAuthentication,
		Message: "no API key provided: set " + APIKeyEnvVar + " or " +
			CompatAPIKeyEnvVar + ", or pass an explicit key",
	}
}
