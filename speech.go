package kafeido

import (
	"context"
	"net/http"

	"github.com/kafeido/kafeido-go/core"
)

// SpeechNewParams are the parameters for a text-to-speech job.
// Model and Input are required; Voice defaults to "alloy".
type SpeechNewParams struct {
	Model             string   `json:"model"`
	Input             string   `json:"input"`
	Voice             string   `json:"voice"`
	ResponseFormat    string   `json:"response_format,omitempty"`
	Speed             *float64 `json:"speed,omitempty"`
	ReferenceAudioID  string   `json:"reference_audio_id,omitempty"`
	ReferenceAudioKey string   `json:"reference_audio_key,omitempty"`
	Language          string   `json:"language,omitempty"`
	SystemPrompt      string   `json:"system_prompt,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	TopK              *int     `json:"top_k,omitempty"`
	MaxTokens         *int     `json:"max_tokens,omitempty"`
}

// SpeechJob identifies a queued text-to-speech job.
type SpeechJob struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// SpeechResult is the synthesized audio of a finished job.
type SpeechResult struct {
	DownloadURL string  `json:"download_url"`
	Duration    float64 `json:"duration,omitempty"`
}

// SpeechJobResult is the polling response for a text-to-speech job.
// Result is set once Status is "completed".
type SpeechJobResult struct {
	Status   string        `json:"status"`
	Progress *float64      `json:"progress,omitempty"`
	Result   *SpeechResult `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// SpeechService calls the text-to-speech endpoints. Synthesis runs as
// a server-side job: New queues it, Result polls for the audio.
type SpeechService struct {
	backend *core.Backend
}

// New queues a text-to-speech job.
func (s *SpeechService) New(ctx context.Context, params SpeechNewParams) (*SpeechJob, error) {
	if params.Voice == "" {
		params.Voice = "alloy"
	}
	out, err := core.Do[SpeechJob](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/audio/speech",
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Result polls a text-to-speech job.
func (s *SpeechService) Result(ctx context.Context, jobID string) (*SpeechJobResult, error) {
	out, err := core.Do[SpeechJobResult](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/audio/speech/" + jobID,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
