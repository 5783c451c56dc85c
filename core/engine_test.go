package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// scriptStep is one scripted transport outcome: either a transport error
// or an HTTP response.
type scriptStep struct {
	err    error
	status int
	body   string
	header http.Header
}

// scriptedTransport plays back a fixed sequence of outcomes, one per
// attempt, and records how many attempts were made.
type scriptedTransport struct {
	mu    sync.Mutex
	steps []scriptStep
	calls int
}

func (s *scriptedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.steps[len(s.steps)-1]
	if s.calls < len(s.steps) {
		step = s.steps[s.calls]
	}
	s.calls++

	if step.err != nil {
		return nil, step.err
	}

	header := step.header
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: step.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(step.body)),
		Request:    r,
	}, nil
}

func (s *scriptedTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestBackend(t *testing.T, rt http.RoundTripper) *Backend {
	t.Helper()
	return NewBackend(Config{
		BaseURL:    "http://localhost:8080",
		APIKey:     NewSecret("sk-test_key"),
		MaxRetries: 2,
		HTTPClient: &http.Client{Transport: rt},
	}, WithRetryPolicy(NewRetryPolicy(RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		Jitter:     0,
	})))
}

type idResponse struct {
	ID string `json:"id"`
}

func TestDoRetriesServerErrorsThenSucceeds(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 503, body: `{"error":"overloaded"}`},
		{status: 503, body: `{"error":"overloaded"}`},
		{status: 200, body: `{"id":"ok"}`},
	}}
	b := newTestBackend(t, rt)

	out, err := Do[idResponse](context.Background(), b, &Request{Method: "POST", Path: "/v1/test"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out.ID != "ok" {
		t.Errorf("ID = %q, want ok", out.ID)
	}
	if rt.callCount() != 3 {
		t.Errorf("attempts = %d, want 3", rt.callCount())
	}
}

func TestDoDefaultConfigRetriesServerError(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 503, body: `{"error":"overloaded"}`},
		{status: 200, body: `{"id":"ok"}`},
	}}
	// No MaxRetries, no retry policy: the stock configuration must
	// retry transient failures on its own.
	b := NewBackend(Config{
		BaseURL:    "http://localhost:8080",
		APIKey:     NewSecret("sk-test_key"),
		HTTPClient: &http.Client{Transport: rt},
	})

	out, err := Do[idResponse](context.Background(), b, &Request{Method: "POST", Path: "/v1/test"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out.ID != "ok" {
		t.Errorf("ID = %q, want ok", out.ID)
	}
	if rt.callCount() != 2 {
		t.Errorf("attempts = %d, want 2", rt.callCount())
	}
}

func TestDoConnectionErrorThenServerErrorThenSuccess(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{err: errors.New("dial tcp: connection refused")},
		{status: 500, body: ""},
		{status: 200, body: `{"id":"ok"}`},
	}}
	b := newTestBackend(t, rt)

	out, err := Do[idResponse](context.Background(), b, &Request{Method: "POST", Path: "/v1/test"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out.ID != "ok" {
		t.Errorf("ID = %q, want ok", out.ID)
	}
	if rt.callCount() != 3 {
		t.Errorf("attempts = %d, want 3", rt.callCount())
	}
}

func TestDoAuthenticationErrorNotRetried(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 401, body: `{"error":{"message":"invalid api key"}}`},
	}}
	b := newTestBackend(t, rt)

	_, err := Do[idResponse](context.Background(), b, &Request{Method: "GET", Path: "/v1/models"})
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("error = %v, want ErrAuthentication", err)
	}
	if rt.callCount() != 1 {
		t.Errorf("attempts = %d, want 1", rt.callCount())
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatal("not a *core.Error")
	}
	if apiErr.Status != 401 {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "invalid api key" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestDoExhaustionSurfacesLastError(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 503, body: `{"error":"a"}`},
		{status: 503, body: `{"error":"b"}`},
		{status: 502, body: `{"error":"final cause"}`},
	}}
	b := newTestBackend(t, rt)

	_, err := Do[idResponse](context.Background(), b, &Request{Method: "GET", Path: "/v1/x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if rt.callCount() != 3 {
		t.Errorf("attempts = %d, want 3", rt.callCount())
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatal("not a *core.Error")
	}
	// The caller sees the real final cause, not a retries-exhausted wrapper.
	if apiErr.Status != 502 || apiErr.Message != "final cause" {
		t.Errorf("final error = status %d message %q, want 502 %q", apiErr.Status, apiErr.Message, "final cause")
	}
}

func TestDoDecodeErrorNotRetried(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 200, body: `{"id": `},
	}}
	b := newTestBackend(t, rt)

	_, err := Do[idResponse](context.Background(), b, &Request{Method: "GET", Path: "/v1/x"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
	if rt.callCount() != 1 {
		t.Errorf("attempts = %d, want 1", rt.callCount())
	}
}

func TestDoRawBytesTarget(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 200, body: "raw audio bytes"},
	}}
	b := newTestBackend(t, rt)

	out, err := Do[[]byte](context.Background(), b, &Request{Method: "GET", Path: "/v1/x"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(out) != "raw audio bytes" {
		t.Errorf("body = %q", out)
	}
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 503, body: ""},
	}}
	b := NewBackend(Config{
		BaseURL:    "http://localhost:8080",
		APIKey:     NewSecret("sk-test_key"),
		HTTPClient: &http.Client{Transport: rt},
	}, WithRetryPolicy(NewRetryPolicy(RetryConfig{
		MaxRetries: 2,
		BaseDelay:  5 * time.Second,
		Jitter:     0,
	})))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := Do[idResponse](ctx, b, &Request{Method: "GET", Path: "/v1/x"})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error = %v, want ErrCancelled", err)
	}
	if rt.callCount() != 1 {
		t.Errorf("attempts = %d, want 1 (no attempt after cancellation)", rt.callCount())
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation not prompt: %v", elapsed)
	}
}

func TestDoEchoRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test_key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	defer server.Close()

	b := NewBackend(Config{
		BaseURL: server.URL,
		APIKey:  NewSecret("sk-test_key"),
	})

	type payload struct {
		Model  string   `json:"model"`
		Inputs []string `json:"inputs"`
	}
	in := payload{Model: "gpt-oss-20b", Inputs: []string{"a", "b"}}

	out, err := Do[payload](context.Background(), b, &Request{
		Method: http.MethodPost,
		Path:   "/v1/echo",
		Body:   in,
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out.Model != in.Model || len(out.Inputs) != 2 || out.Inputs[0] != "a" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestDoMultipartEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3" {
			t.Errorf("model field = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "audio.mp3" {
			t.Errorf("filename = %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "fake-audio" {
			t.Errorf("file content = %q", content)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(idResponse{ID: "done"})
	}))
	defer server.Close()

	b := NewBackend(Config{BaseURL: server.URL, APIKey: NewSecret("sk-test_key")})

	form := &Form{}
	form.AddField("model", "whisper-large-v3")
	form.AddFile("file", "audio.mp3", bytes.NewReader([]byte("fake-audio")))

	out, err := Do[idResponse](context.Background(), b, &Request{
		Method: http.MethodPost,
		Path:   "/v1/audio/transcriptions",
		Form:   form,
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out.ID != "done" {
		t.Errorf("ID = %q", out.ID)
	}
}

// recordingHook captures telemetry events for assertions.
type recordingHook struct {
	mu     sync.Mutex
	starts []RequestStartEvent
	ends   []RequestEndEvent
}

func (h *recordingHook) OnRequestStart(e RequestStartEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, e)
}

func (h *recordingHook) OnRequestEnd(e RequestEndEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ends = append(h.ends, e)
}

func TestTelemetryEventsPerLogicalCall(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 503, body: ""},
		{status: 200, body: `{"id":"ok"}`},
	}}
	hook := &recordingHook{}
	b := NewBackend(Config{
		BaseURL:    "http://localhost:8080",
		APIKey:     NewSecret("sk-test_key"),
		HTTPClient: &http.Client{Transport: rt},
	},
		WithTelemetry(hook),
		WithRetryPolicy(NewRetryPolicy(RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, Jitter: 0})),
	)

	if _, err := Do[idResponse](context.Background(), b, &Request{Method: "GET", Path: "/v1/x"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if len(hook.starts) != 1 || len(hook.ends) != 1 {
		t.Fatalf("events = %d starts %d ends, want 1 each", len(hook.starts), len(hook.ends))
	}
	end := hook.ends[0]
	if end.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", end.Attempts)
	}
	if end.Status != 200 {
		t.Errorf("Status = %d, want 200", end.Status)
	}
	if end.CallID == "" || end.CallID != hook.starts[0].CallID {
		t.Error("start/end events not correlated by CallID")
	}
}

func TestDoAsyncMatchesBlockingSemantics(t *testing.T) {
	rt := &scriptedTransport{steps: []scriptStep{
		{status: 503, body: ""},
		{status: 200, body: `{"id":"ok"}`},
	}}
	b := newTestBackend(t, rt)

	call := DoAsync[idResponse](context.Background(), b, &Request{Method: "GET", Path: "/v1/x"})
	out, err := call.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if out.ID != "ok" {
		t.Errorf("ID = %q", out.ID)
	}
	if rt.callCount() != 2 {
		t.Errorf("attempts = %d, want 2", rt.callCount())
	}
	select {
	case <-call.Done():
	default:
		t.Error("Done() not closed after completion")
	}
}
