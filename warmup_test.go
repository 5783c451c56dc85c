package kafeido

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kafeido/kafeido-go/core"
)

func newTestWarmupHelper(t *testing.T, serverURL string) *warmupHelper {
	t.Helper()
	h := newWarmupHelper(newTestClient(t, serverURL).Models)
	h.pollInterval = time.Millisecond
	return h
}

func TestWaitForReadyAlreadyWarm(t *testing.T) {
	var statusCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models/warmup":
			w.Write([]byte(`{"already_warm": true}`))
		default:
			statusCalls.Add(1)
			w.Write([]byte(`{"model_id": "m", "status": {"status": "healthy"}}`))
		}
	}))
	defer server.Close()

	if err := newTestWarmupHelper(t, server.URL).WaitForReady(context.Background(), "m", 0); err != nil {
		t.Fatalf("WaitForReady() error = %v", err)
	}
	if statusCalls.Load() != 0 {
		t.Errorf("status polls = %d, want 0 for a warm model", statusCalls.Load())
	}
}

func TestWaitForReadyPollsUntilHealthy(t *testing.T) {
	var statusCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models/warmup":
			w.Write([]byte(`{"already_warm": false, "estimated_seconds": 10}`))
		default:
			if statusCalls.Add(1) < 3 {
				w.Write([]byte(`{"model_id": "m", "status": {"status": "loading"}}`))
				return
			}
			w.Write([]byte(`{"model_id": "m", "status": {"status": "healthy"}}`))
		}
	}))
	defer server.Close()

	if err := newTestWarmupHelper(t, server.URL).WaitForReady(context.Background(), "m", 0); err != nil {
		t.Fatalf("WaitForReady() error = %v", err)
	}
	if statusCalls.Load() != 3 {
		t.Errorf("status polls = %d, want 3", statusCalls.Load())
	}
}

func TestWaitForReadyTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models/warmup":
			w.Write([]byte(`{"already_warm": false}`))
		default:
			w.Write([]byte(`{"model_id": "m", "status": {"status": "loading"}}`))
		}
	}))
	defer server.Close()

	err := newTestWarmupHelper(t, server.URL).WaitForReady(context.Background(), "m", 10*time.Millisecond)

	var timeoutErr *WarmupTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *WarmupTimeoutError", err)
	}
	if timeoutErr.Model != "m" {
		t.Errorf("Model = %q", timeoutErr.Model)
	}
	if timeoutErr.Waited < 10*time.Millisecond {
		t.Errorf("Waited = %v, below requested timeout", timeoutErr.Waited)
	}
}

func TestWaitForReadyContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models/warmup":
			w.Write([]byte(`{"already_warm": false}`))
		default:
			w.Write([]byte(`{"model_id": "m", "status": {"status": "loading"}}`))
		}
	}))
	defer server.Close()

	h := newTestWarmupHelper(t, server.URL)
	h.pollInterval = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := h.WaitForReady(ctx, "m", time.Minute)
	if !errors.Is(err, core.ErrCancelled) {
		t.Fatalf("error = %v, want core.ErrCancelled", err)
	}
	// The original cause stays reachable through the wrapper.
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled in chain", err)
	}
}
