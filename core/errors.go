package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Kind classifies an API failure. Every error produced by the engine is a
// *Error carrying exactly one Kind, so callers can switch exhaustively.
type Kind int

const (
	// KindConnection covers connection refused, DNS, and TLS failures.
	KindConnection Kind = iota
	// KindTimeout covers connect, idle, and total deadline expiry.
	KindTimeout
	// KindCancelled is explicit caller cancellation.
	KindCancelled
	// KindAuthentication is HTTP 401.
	KindAuthentication
	// KindPermissionDenied is HTTP 403.
	KindPermissionDenied
	// KindNotFound is HTTP 404.
	KindNotFound
	// KindRateLimit is HTTP 429.
	KindRateLimit
	// KindInvalidRequest is HTTP 400, 409, or 422.
	KindInvalidRequest
	// KindInternalServer is any HTTP 5xx.
	KindInternalServer
	// KindAPIStatus is the generic fallback for other 4xx responses and
	// responses whose error body could not be parsed.
	KindAPIStatus
	// KindDecode is a parse failure of a nominally successful response.
	KindDecode
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection_error"
	case KindTimeout:
		return "timeout"
	case KindCancelled:
		return "cancelled"
	case KindAuthentication:
		return "authentication_error"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindInvalidRequest:
		return "invalid_request"
	case KindInternalServer:
		return "internal_server_error"
	case KindAPIStatus:
		return "api_status_error"
	case KindDecode:
		return "decode_error"
	default:
		return "unknown"
	}
}

// Sentinel errors for classification with errors.Is. Each *Error unwraps
// to the sentinel matching its Kind.
var (
	ErrConnection       = errors.New("connection error")
	ErrTimeout          = errors.New("request timed out")
	ErrCancelled        = errors.New("request cancelled")
	ErrAuthentication   = errors.New("authentication failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrServer           = errors.New("server error")
	ErrAPIStatus        = errors.New("api error")
	ErrDecode           = errors.New("decode error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindTimeout:
		return ErrTimeout
	case KindCancelled:
		return ErrCancelled
	case KindAuthentication:
		return ErrAuthentication
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindNotFound:
		return ErrNotFound
	case KindRateLimit:
		return ErrRateLimited
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindInternalServer:
		return ErrServer
	case KindDecode:
		return ErrDecode
	default:
		return ErrAPIStatus
	}
}

// TimeoutBoundary identifies which deadline fired for a KindTimeout error.
// Diagnostic only; classification does not depend on it.
type TimeoutBoundary string

const (
	TimeoutConnect TimeoutBoundary = "connect"
	TimeoutIdle    TimeoutBoundary = "idle"
	TimeoutTotal   TimeoutBoundary = "total"
)

// Error is the error type produced by the engine with full context.
type Error struct {
	Kind      Kind
	Status    int             // HTTP status, 0 for transport failures
	Message   string
	Body      []byte          // raw response body when available
	RequestID string          // server-assigned request ID when present
	Boundary  TimeoutBoundary // set for KindTimeout

	// RetryAfter is the server-requested delay parsed from a Retry-After
	// header, or zero when absent. The retry policy honors it.
	RetryAfter time.Duration

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Status > 0 && e.RequestID != "":
		return fmt.Sprintf("kafeido: %s: %s (status=%d, request_id=%s)",
			e.Kind, e.Message, e.Status, e.RequestID)
	case e.Status > 0:
		return fmt.Sprintf("kafeido: %s: %s (status=%d)", e.Kind, e.Message, e.Status)
	case e.Kind == KindTimeout && e.Boundary != "":
		return fmt.Sprintf("kafeido: %s: %s (boundary=%s)", e.Kind, e.Message, e.Boundary)
	default:
		return fmt.Sprintf("kafeido: %s: %s", e.Kind, e.Message)
	}
}

// Unwrap exposes both the per-kind sentinel and the underlying cause, so
// errors.Is works against either.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind.sentinel(), e.Err}
	}
	return []error{e.Kind.sentinel()}
}

// StatusKind maps an HTTP status code to its error Kind. The mapping is
// deterministic: calling it twice on the same status yields the same Kind.
func StatusKind(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindPermissionDenied
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		return KindInvalidRequest
	case status >= 500 && status < 600:
		return KindInternalServer
	default:
		return KindAPIStatus
	}
}

// errorEnvelope is the OpenAI-style error body:
// {"error":{"message":"...","type":"...","code":"..."}}.
// Some endpoints return {"error":"..."} instead, so Error is kept raw.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// statusError builds the classified error for a non-2xx response.
// Malformed error bodies degrade gracefully: the Kind still follows the
// status code and the raw body is preserved for diagnostics.
func statusError(status int, body []byte, requestID string, retryAfter time.Duration) *Error {
	message := parseErrorMessage(body)
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("error code: %d", status)
	}

	return &Error{
		Kind:       StatusKind(status),
		Status:     status,
		Message:    message,
		Body:       body,
		RequestID:  requestID,
		RetryAfter: retryAfter,
	}
}

func parseErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return ""
	}

	var detail errorDetail
	if err := json.Unmarshal(env.Error, &detail); err == nil && detail.Message != "" {
		return detail.Message
	}

	var plain string
	if err := json.Unmarshal(env.Error, &plain); err == nil {
		return plain
	}
	return ""
}
