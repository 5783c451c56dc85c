package kafeido

import (
	"context"
	"net/http"
	"time"

	"github.com/kafeido/kafeido-go/core"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatCompletionMessageParam is a message in a chat request.
type ChatCompletionMessageParam struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ChatCompletionNewParams are the parameters for a chat completion.
type ChatCompletionNewParams struct {
	Model            string                       `json:"model"`
	Messages         []ChatCompletionMessageParam `json:"messages"`
	FrequencyPenalty *float64                     `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]int               `json:"logit_bias,omitempty"`
	Logprobs         *bool                        `json:"logprobs,omitempty"`
	TopLogprobs      *int                         `json:"top_logprobs,omitempty"`
	MaxTokens        *int                         `json:"max_tokens,omitempty"`
	N                *int                         `json:"n,omitempty"`
	PresencePenalty  *float64                     `json:"presence_penalty,omitempty"`
	ResponseFormat   map[string]any               `json:"response_format,omitempty"`
	Seed             *int                         `json:"seed,omitempty"`
	Stop             []string                     `json:"stop,omitempty"`
	Stream           bool                         `json:"stream,omitempty"`
	Temperature      *float64                     `json:"temperature,omitempty"`
	TopP             *float64                     `json:"top_p,omitempty"`
	Tools            []map[string]any             `json:"tools,omitempty"`
	ToolChoice       any                          `json:"tool_choice,omitempty"`
	User             string                       `json:"user,omitempty"`

	// WaitForReady blocks until the model reports healthy before
	// sending the request, handling cold starts transparently.
	// WarmupTimeout caps the wait; zero means the 5 minute default.
	// Neither field is sent on the wire.
	WaitForReady  bool          `json:"-"`
	WarmupTimeout time.Duration `json:"-"`
}

// ChatCompletionMessage is a message in a chat response.
type ChatCompletionMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content,omitempty"`
	Name       string           `json:"name,omitempty"`
	ToolCalls  []map[string]any `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

// ChatCompletionChoice is one generated completion.
type ChatCompletionChoice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason,omitempty"`
	Logprobs     map[string]any        `json:"logprobs,omitempty"`
}

// ChatCompletionUsage reports token consumption.
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletion is a non-streaming chat completion response.
type ChatCompletion struct {
	ID                string                 `json:"id"`
	Object            string                 `json:"object"`
	Created           int64                  `json:"created"`
	Model             string                 `json:"model"`
	Choices           []ChatCompletionChoice `json:"choices"`
	Usage             *ChatCompletionUsage   `json:"usage,omitempty"`
	SystemFingerprint string                 `json:"system_fingerprint,omitempty"`
}

// ChatCompletionDelta is the incremental payload of a streamed chunk.
type ChatCompletionDelta struct {
	Role      string           `json:"role,omitempty"`
	Content   string           `json:"content,omitempty"`
	ToolCalls []map[string]any `json:"tool_calls,omitempty"`
}

// ChatCompletionChunkChoice is one choice within a streamed chunk.
type ChatCompletionChunkChoice struct {
	Index        int                 `json:"index"`
	Delta        ChatCompletionDelta `json:"delta"`
	FinishReason string              `json:"finish_reason,omitempty"`
	Logprobs     map[string]any      `json:"logprobs,omitempty"`
}

// ChatCompletionChunk is one event of a streamed chat completion.
type ChatCompletionChunk struct {
	ID                string                      `json:"id"`
	Object            string                      `json:"object"`
	Created           int64                       `json:"created"`
	Model             string                      `json:"model"`
	Choices           []ChatCompletionChunkChoice `json:"choices"`
	SystemFingerprint string                      `json:"system_fingerprint,omitempty"`
}

// ChatService groups chat endpoints.
type ChatService struct {
	Completions *ChatCompletionService
}

// ChatCompletionService calls the chat completions endpoint.
type ChatCompletionService struct {
	backend *core.Backend
	warmup  *warmupHelper
}

// New creates a chat completion and blocks until the full response
// has been generated.
func (s *ChatCompletionService) New(ctx context.Context, params ChatCompletionNewParams) (*ChatCompletion, error) {
	if params.WaitForReady {
		if err := s.warmup.WaitForReady(ctx, params.Model, params.WarmupTimeout); err != nil {
			return nil, err
		}
	}
	params.Stream = false
	out, err := core.Do[ChatCompletion](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/chat/completions",
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NewStreaming creates a chat completion and returns the chunks as
// they are generated. The caller must drain or Close the stream.
func (s *ChatCompletionService) NewStreaming(ctx context.Context, params ChatCompletionNewParams) (*core.Stream[ChatCompletionChunk], error) {
	if params.WaitForReady {
		if err := s.warmup.WaitForReady(ctx, params.Model, params.WarmupTimeout); err != nil {
			return nil, err
		}
	}
	params.Stream = true
	return core.DoStream[ChatCompletionChunk](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/chat/completions",
		Body:   params,
		Stream: true,
	})
}
