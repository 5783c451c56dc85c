package kafeido

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kafeido/kafeido-go/core"
)

const (
	warmupPollInterval = 2 * time.Second
	warmupMaxWait      = 5 * time.Minute
	healthyStatus      = "healthy"
)

// WarmupTimeoutError reports that a model did not become ready within
// the allowed wait.
type WarmupTimeoutError struct {
	Model  string
	Waited time.Duration
}

func (e *WarmupTimeoutError) Error() string {
	return fmt.Sprintf("kafeido: model %q did not become ready within %s", e.Model, e.Waited.Round(100*time.Millisecond))
}

// warmupHelper turns cold starts into a blocking wait: trigger warmup,
// short-circuit if the model is already warm, otherwise poll the
// status endpoint until it reports healthy.
type warmupHelper struct {
	models       *ModelService
	pollInterval time.Duration
	maxWait      time.Duration
}

func newWarmupHelper(models *ModelService) *warmupHelper {
	return &warmupHelper{
		models:       models,
		pollInterval: warmupPollInterval,
		maxWait:      warmupMaxWait,
	}
}

func (h *warmupHelper) WaitForReady(ctx context.Context, model string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = h.maxWait
	}

	warmup, err := h.models.Warmup(ctx, model)
	if err != nil {
		return err
	}
	if warmup.AlreadyWarm {
		return nil
	}

	start := time.Now()
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		status, err := h.models.Status(ctx, model)
		if err != nil {
			return err
		}
		if status.Status != nil && status.Status.Status == healthyStatus {
			return nil
		}

		if waited := time.Since(start); waited >= timeout {
			return &WarmupTimeoutError{Model: model, Waited: waited}
		}
		select {
		case <-ctx.Done():
			cause := ctx.Err()
			if errors.Is(cause, context.DeadlineExceeded) {
				return &core.Error{Kind: core.KindTimeout, Boundary: core.TimeoutTotal, Message: "warmup wait deadline exceeded", Err: cause}
			}
			return &core.Error{Kind: core.KindCancelled, Message: "warmup wait cancelled", Err: cause}
		case <-ticker.C:
		}
	}
}
