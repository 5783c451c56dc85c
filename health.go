package kafeido

import (
	"context"
	"net/http"

	"github.com/kafeido/kafeido-go/core"
)

// Health is the response of the health check endpoint.
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// HealthService calls the health check endpoint.
type HealthService struct {
	backend *core.Backend
}

// Check probes the API and reports its status.
func (s *HealthService) Check(ctx context.Context) (*Health, error) {
	out, err := core.Do[Health](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/health",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
