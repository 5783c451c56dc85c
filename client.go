package kafeido

import (
	"context"
	"net/http"
	"time"

	"github.com/kafeido/kafeido-go/core"
)

// Client is the top-level entry point for the Kafeido API.
// Client is safe for concurrent use.
type Client struct {
	backend *core.Backend
	warmup  *warmupHelper

	Chat   *ChatService
	Audio  *AudioService
	OCR    *OCRService
	Vision *VisionService
	Models *ModelService
	Files  *FileService
	Jobs   *JobService
	Health *HealthService
}

type clientOptions struct {
	cfg       core.Config
	apiKey    string
	retry     core.RetryPolicy
	telemetry core.TelemetryHook
}

// Option configures a Client.
type Option func(*clientOptions)

// WithAPIKey sets the API key explicitly, overriding the
// KAFEIDO_API_KEY and OPENAI_API_KEY environment variables.
func WithAPIKey(key string) Option {
	return func(o *clientOptions) { o.apiKey = key }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.cfg.BaseURL = baseURL }
}

// WithTimeout sets the total per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.cfg.Timeout = d }
}

// WithIdleTimeout sets the maximum silence between streamed chunks.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.cfg.IdleTimeout = d }
}

// WithMaxRetries sets the retry budget for the default retry policy.
// Pass a negative value to disable retries.
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) { o.cfg.MaxRetries = n }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.cfg.HTTPClient = hc }
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(o *clientOptions) {
		if o.cfg.Headers == nil {
			o.cfg.Headers = make(http.Header)
		}
		o.cfg.Headers.Add(key, value)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.cfg.UserAgent = ua }
}

// WithRetryPolicy replaces the default exponential backoff policy.
func WithRetryPolicy(p core.RetryPolicy) Option {
	return func(o *clientOptions) { o.retry = p }
}

// WithTelemetry installs a hook observing every logical request.
func WithTelemetry(h core.TelemetryHook) Option {
	return func(o *clientOptions) { o.telemetry = h }
}

// New creates a Client. The API key is resolved from the WithAPIKey
// option, then KAFEIDO_API_KEY, then OPENAI_API_KEY; if none is set an
// authentication error is returned.
func New(opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	key, err := core.ResolveAPIKey(o.apiKey)
	if err != nil {
		return nil, err
	}
	o.cfg.APIKey = key

	var bopts []core.BackendOption
	if o.retry != nil {
		bopts = append(bopts, core.WithRetryPolicy(o.retry))
	}
	if o.telemetry != nil {
		bopts = append(bopts, core.WithTelemetry(o.telemetry))
	}
	b := core.NewBackend(o.cfg, bopts...)

	c := &Client{backend: b}
	c.Models = &ModelService{backend: b}
	c.warmup = newWarmupHelper(c.Models)
	c.Chat = &ChatService{Completions: &ChatCompletionService{backend: b, warmup: c.warmup}}
	c.Audio = &AudioService{
		Transcriptions: &AudioTranscriptionService{backend: b},
		Translations:   &AudioTranslationService{backend: b},
		Speech:         &SpeechService{backend: b},
	}
	c.OCR = &OCRService{Extractions: &OCRExtractionService{backend: b, warmup: c.warmup}}
	c.Vision = &VisionService{
		Analysis: &VisionAnalysisService{backend: b},
		Chat:     &VisionChatService{backend: b},
	}
	c.Files = &FileService{backend: b}
	c.Jobs = &JobService{backend: b}
	c.Health = &HealthService{backend: b}
	return c, nil
}

// Backend exposes the request engine, mainly for telemetry
// integrations and advanced callers issuing raw requests.
func (c *Client) Backend() *core.Backend {
	return c.backend
}

// WaitForReady triggers a warmup for model and blocks until it reports
// healthy. Returns immediately when the model is already warm. A zero
// timeout uses the 5 minute default.
func (c *Client) WaitForReady(ctx context.Context, model string, timeout time.Duration) error {
	return c.warmup.WaitForReady(ctx, model, timeout)
}

// Ptr returns a pointer to v, for optional request fields.
func Ptr[T any](v T) *T {
	return &v
}
