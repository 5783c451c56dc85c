package kafeido

import (
	"context"
	"net/http"

	"github.com/kafeido/kafeido-go/core"
)

// VisionImageSource references an image by storage key, inline
// base64 data, or URL. Exactly one field should be set.
type VisionImageSource struct {
	StorageKey string `json:"storage_key,omitempty"`
	Base64     string `json:"base64,omitempty"`
	URL        string `json:"url,omitempty"`
}

// VisionUsage reports token consumption of a vision request.
type VisionUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// VisionAnalysisNewParams are the parameters for a vision analysis.
// ModelID is required; the image comes from StorageKey, ImageBase64,
// or ImageURL.
type VisionAnalysisNewParams struct {
	ModelID     string `json:"model_id"`
	StorageKey  string `json:"storage_key,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	// Mode is one of "general", "document", "chart", "code", "detailed".
	Mode              string   `json:"mode,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	MaxTokens         *int     `json:"max_tokens,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	TopK              *int     `json:"top_k,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
}

// VisionAnalysis is the response of a vision analysis.
type VisionAnalysis struct {
	Text  string       `json:"text"`
	Usage *VisionUsage `json:"usage,omitempty"`
	Error string       `json:"error,omitempty"`
}

// VisionJob identifies a queued vision analysis job.
type VisionJob struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// VisionJobResult is the polling response for an async vision job.
type VisionJobResult struct {
	Status   string          `json:"status"`
	Progress *float64        `json:"progress,omitempty"`
	Result   *VisionAnalysis `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// VisionChatMessage is a message in a vision chat conversation.
type VisionChatMessage struct {
	Role    string              `json:"role"`
	Content string              `json:"content,omitempty"`
	Images  []VisionImageSource `json:"images,omitempty"`
}

// VisionChatNewParams are the parameters for a vision chat turn.
type VisionChatNewParams struct {
	Messages          []VisionChatMessage `json:"messages"`
	ModelID           string              `json:"model_id"`
	Stream            bool                `json:"stream"`
	ConversationID    string              `json:"conversation_id,omitempty"`
	Temperature       *float64            `json:"temperature,omitempty"`
	MaxTokens         *int                `json:"max_tokens,omitempty"`
	TopP              *float64            `json:"top_p,omitempty"`
	TopK              *int                `json:"top_k,omitempty"`
	RepetitionPenalty *float64            `json:"repetition_penalty,omitempty"`
}

// VisionChatResponse is a vision chat response, or one chunk of it
// when streaming.
type VisionChatResponse struct {
	ID           string       `json:"id,omitempty"`
	Object       string       `json:"object,omitempty"`
	Created      int64        `json:"created,omitempty"`
	Model        string       `json:"model,omitempty"`
	Text         string       `json:"text,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
	Usage        *VisionUsage `json:"usage,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// VisionService groups the vision endpoints.
type VisionService struct {
	Analysis *VisionAnalysisService
	Chat     *VisionChatService
}

// VisionAnalysisService calls the vision analysis endpoints.
type VisionAnalysisService struct {
	backend *core.Backend
}

// New runs a vision analysis and blocks until it completes.
func (s *VisionAnalysisService) New(ctx context.Context, params VisionAnalysisNewParams) (*VisionAnalysis, error) {
	out, err := core.Do[VisionAnalysis](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/vision/analyze",
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NewAsync queues a vision analysis as a server-side job.
func (s *VisionAnalysisService) NewAsync(ctx context.Context, params VisionAnalysisNewParams) (*VisionJob, error) {
	out, err := core.Do[VisionJob](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/vision/analyze/async",
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Result polls an async vision job.
func (s *VisionAnalysisService) Result(ctx context.Context, jobID string) (*VisionJobResult, error) {
	out, err := core.Do[VisionJobResult](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/vision/analyze/async/" + jobID,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VisionChatService calls the vision chat endpoint.
type VisionChatService struct {
	backend *core.Backend
}

// New sends a vision chat turn and blocks for the full response.
func (s *VisionChatService) New(ctx context.Context, params VisionChatNewParams) (*VisionChatResponse, error) {
	params.Stream = false
	out, err := core.Do[VisionChatResponse](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/vision/chat",
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NewStreaming sends a vision chat turn and streams the response.
func (s *VisionChatService) NewStreaming(ctx context.Context, params VisionChatNewParams) (*core.Stream[VisionChatResponse], error) {
	params.Stream = true
	return core.DoStream[VisionChatResponse](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/vision/chat",
		Body:   params,
		Stream: true,
	})
}
