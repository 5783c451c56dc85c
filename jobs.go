package kafeido

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kafeido/kafeido-go/core"
)

// Job statuses.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Job is the full detail of a server-side job.
type Job struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	CreatedAt   int64          `json:"created_at,omitempty"`
	StartedAt   int64          `json:"started_at,omitempty"`
	CompletedAt int64          `json:"completed_at,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// ColdStartProgress reports how far a model load has come.
type ColdStartProgress struct {
	Stage            string   `json:"stage,omitempty"`
	Progress         *float64 `json:"progress,omitempty"`
	EstimatedSeconds *float64 `json:"estimated_seconds,omitempty"`
}

// RequestProgress combines model warmup and job processing progress
// for a single request.
type RequestProgress struct {
	RequestID        string             `json:"request_id,omitempty"`
	ModelID          string             `json:"model_id,omitempty"`
	WarmupStatus     string             `json:"warmup_status,omitempty"`
	WarmupProgress   *float64           `json:"warmup_progress,omitempty"`
	ColdStart        *ColdStartProgress `json:"cold_start,omitempty"`
	JobID            string             `json:"job_id,omitempty"`
	JobStatus        string             `json:"job_status,omitempty"`
	JobProgress      *float64           `json:"job_progress,omitempty"`
	OverallProgress  *float64           `json:"overall_progress,omitempty"`
	EstimatedSeconds *float64           `json:"estimated_seconds,omitempty"`
}

// RequestProgressParams select which request to report progress for.
type RequestProgressParams struct {
	RequestID string
	ModelID   string
}

// JobService calls the job tracking endpoints.
type JobService struct {
	backend *core.Backend
}

// Get returns the detail of a server-side job.
func (s *JobService) Get(ctx context.Context, jobID string) (*Job, error) {
	out, err := core.Do[Job](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/jobs/" + jobID,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Progress returns combined warmup and processing progress.
func (s *JobService) Progress(ctx context.Context, params RequestProgressParams) (*RequestProgress, error) {
	query := url.Values{}
	if params.RequestID != "" {
		query.Set("request_id", params.RequestID)
	}
	if params.ModelID != "" {
		query.Set("model_id", params.ModelID)
	}
	out, err := core.Do[RequestProgress](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/requests/progress",
		Query:  query,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
