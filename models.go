package kafeido

import (
	"context"
	"net/http"

	"github.com/kafeido/kafeido-go/core"
)

// Model describes an available model.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the response of the model listing endpoint.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// ModelStatusInfo is the load state of a model deployment.
type ModelStatusInfo struct {
	Status string `json:"status"`
}

// ModelStatus is the response of the model status endpoint. Status is
// nil when the backend has no deployment record for the model yet.
type ModelStatus struct {
	ModelID string           `json:"model_id"`
	Status  *ModelStatusInfo `json:"status,omitempty"`
}

// WarmupResponse is the response of a warmup trigger.
type WarmupResponse struct {
	AlreadyWarm      bool    `json:"already_warm"`
	EstimatedSeconds float64 `json:"estimated_seconds,omitempty"`
}

// ModelService calls the model catalog and lifecycle endpoints.
type ModelService struct {
	backend *core.Backend
}

// List returns all models available to the caller.
func (s *ModelService) List(ctx context.Context) (*ModelList, error) {
	out, err := core.Do[ModelList](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/models",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single model by ID.
func (s *ModelService) Get(ctx context.Context, model string) (*Model, error) {
	out, err := core.Do[Model](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/models/" + model,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Status reports the current load state of a model deployment.
func (s *ModelService) Status(ctx context.Context, model string) (*ModelStatus, error) {
	out, err := core.Do[ModelStatus](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/models/" + model + "/status",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Warmup asks the backend to start loading a model. Cheap to call for
// a model that is already loaded.
func (s *ModelService) Warmup(ctx context.Context, model string) (*WarmupResponse, error) {
	out, err := core.Do[WarmupResponse](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/models/warmup",
		Body:   map[string]string{"model_id": model},
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
