package kafeido

import (
	"context"
	"net/http"
	"time"

	"github.com/kafeido/kafeido-go/core"
)

// OCRExtractionNewParams are the parameters for an OCR extraction.
// ModelID is required; the image comes from FileID or StorageKey.
type OCRExtractionNewParams struct {
	ModelID    string `json:"model_id"`
	FileID     string `json:"file_id,omitempty"`
	StorageKey string `json:"storage_key,omitempty"`
	// Mode is one of "markdown", "generic", "figure", "grounding".
	Mode string `json:"mode,omitempty"`
	// Resolution is one of "auto", "tiny", "small", "base", "large".
	Resolution   string `json:"resolution,omitempty"`
	Language     string `json:"language,omitempty"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
	MaxTokens    *int   `json:"max_tokens,omitempty"`

	// Cold start handling, not sent on the wire.
	WaitForReady  bool          `json:"-"`
	WarmupTimeout time.Duration `json:"-"`
}

// OCRRegion is a detected text region with its bounding box.
type OCRRegion struct {
	Text       string   `json:"text"`
	X1         float64  `json:"x1"`
	Y1         float64  `json:"y1"`
	X2         float64  `json:"x2"`
	Y2         float64  `json:"y2"`
	Confidence *float64 `json:"confidence,omitempty"`
	RegionType string   `json:"region_type,omitempty"`
}

// OCRUsage reports token consumption of an OCR request.
type OCRUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// OCRExtraction is the extracted text of a document or image.
type OCRExtraction struct {
	Text             string      `json:"text"`
	Regions          []OCRRegion `json:"regions,omitempty"`
	Usage            *OCRUsage   `json:"usage,omitempty"`
	DetectedLanguage string      `json:"detected_language,omitempty"`
}

// OCRJob identifies a queued OCR extraction job.
type OCRJob struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// OCRJobResult is the polling response for an async OCR job.
// Result is set once Status is "completed".
type OCRJobResult struct {
	Status   string         `json:"status"`
	Progress *float64       `json:"progress,omitempty"`
	Result   *OCRExtraction `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// OCRService groups the OCR endpoints.
type OCRService struct {
	Extractions *OCRExtractionService
}

// OCRExtractionService calls the OCR extraction endpoints.
type OCRExtractionService struct {
	backend *core.Backend
	warmup  *warmupHelper
}

// New runs an OCR extraction and blocks until it completes.
func (s *OCRExtractionService) New(ctx context.Context, params OCRExtractionNewParams) (*OCRExtraction, error) {
	if params.WaitForReady {
		if err := s.warmup.WaitForReady(ctx, params.ModelID, params.WarmupTimeout); err != nil {
			return nil, err
		}
	}
	out, err := core.Do[OCRExtraction](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/ocr/extract",
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NewAsync queues an OCR extraction as a server-side job. Poll the
// result with Result.
func (s *OCRExtractionService) NewAsync(ctx context.Context, params OCRExtractionNewParams) (*OCRJob, error) {
	out, err := core.Do[OCRJob](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/ocr/extract/async",
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Result polls an async OCR job.
func (s *OCRExtractionService) Result(ctx context.Context, jobID string) (*OCRJobResult, error) {
	out, err := core.Do[OCRJobResult](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/ocr/extract/async/" + jobID,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
