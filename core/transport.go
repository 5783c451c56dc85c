package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// rawResponse is the transport-level result of one successful attempt:
// exactly one rawResponse exists per attempt. For non-streaming calls the
// body is fully read and the connection released before the engine sees
// it; for streaming calls Stream is the live body, owned by the caller
// until closed or drained.
type rawResponse struct {
	Status int
	Header http.Header
	Body   []byte
	Stream io.ReadCloser
}

// encodedBody is the serialized request payload, computed once per logical
// call so every retry attempt sends identical bytes. Multipart file
// readers are consumed here, not inside the retry loop.
type encodedBody struct {
	data        []byte
	contentType string
}

func encodeBody(req *Request) (encodedBody, *Error) {
	switch {
	case req.Form != nil:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, field := range req.Form.Fields {
			if err := w.WriteField(field.Key, field.Value); err != nil {
				return encodedBody{}, &Error{Kind: KindInvalidRequest, Message: "encoding form field: " + err.Error(), Err: err}
			}
		}
		for _, file := range req.Form.Files {
			part, err := w.CreateFormFile(file.Field, file.Name)
			if err != nil {
				return encodedBody{}, &Error{Kind: KindInvalidRequest, Message: "encoding form file: " + err.Error(), Err: err}
			}
			if _, err := io.Copy(part, file.Reader); err != nil {
				return encodedBody{}, &Error{Kind: KindInvalidRequest, Message: "reading form file: " + err.Error(), Err: err}
			}
		}
		if err := w.Close(); err != nil {
			return encodedBody{}, &Error{Kind: KindInvalidRequest, Message: "finalizing form: " + err.Error(), Err: err}
		}
		return encodedBody{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil

	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return encodedBody{}, &Error{Kind: KindInvalidRequest, Message: "encoding request body: " + err.Error(), Err: err}
		}
		return encodedBody{data: data, contentType: "application/json"}, nil

	default:
		return encodedBody{}, nil
	}
}

// send performs one attempt. It owns the per-attempt total deadline for
// non-streaming calls and releases the connection on every failure path.
func (b *Backend) send(ctx context.Context, req *Request, body encodedBody) (*rawResponse, *Error) {
	if req.Stream {
		return b.sendStream(ctx, req, body)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = b.cfg.Timeout
	}
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := b.buildHTTPRequest(ctx, req, body)
	if err != nil {
		return nil, err
	}

	resp, doErr := b.cfg.HTTPClient.Do(httpReq)
	if doErr != nil {
		return nil, classifyTransport(ctx, doErr)
	}

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, statusError(
			resp.StatusCode,
			respBody,
			resp.Header.Get("x-request-id"),
			parseRetryAfter(resp.Header.Get("Retry-After")),
		)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, classifyTransport(ctx, readErr)
	}
	return &rawResponse{Status: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

// sendStream performs one streaming attempt. The total timeout does not
// apply (a stream's duration is unbounded), but the server must produce
// response headers within the idle window; afterwards the stream's own
// watchdog bounds the gap between chunks.
func (b *Backend) sendStream(ctx context.Context, req *Request, body encodedBody) (*rawResponse, *Error) {
	idle := req.IdleTimeout
	if idle <= 0 {
		idle = b.cfg.IdleTimeout
	}

	reqCtx, cancel := context.WithCancel(ctx)
	var headersLate atomic.Bool
	headerTimer := time.AfterFunc(idle, func() {
		headersLate.Store(true)
		cancel()
	})

	httpReq, err := b.buildHTTPRequest(reqCtx, req, body)
	if err != nil {
		headerTimer.Stop()
		cancel()
		return nil, err
	}

	resp, doErr := b.cfg.HTTPClient.Do(httpReq)
	headerTimer.Stop()
	if doErr != nil {
		cancel()
		if headersLate.Load() {
			return nil, &Error{
				Kind:     KindTimeout,
				Boundary: TimeoutConnect,
				Message:  "no response headers within idle timeout",
				Err:      doErr,
			}
		}
		return nil, classifyTransport(ctx, doErr)
	}

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return nil, statusError(
			resp.StatusCode,
			respBody,
			resp.Header.Get("x-request-id"),
			parseRetryAfter(resp.Header.Get("Retry-After")),
		)
	}

	// The body read is tied to reqCtx, so cancel must stay pending
	// until the caller releases the stream.
	stream := &cancelOnClose{rc: resp.Body, cancel: cancel}
	return &rawResponse{Status: resp.StatusCode, Header: resp.Header, Stream: stream}, nil
}

// cancelOnClose releases the request context together with the body.
type cancelOnClose struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Read(p []byte) (int, error) {
	return c.rc.Read(p)
}

func (c *cancelOnClose) Close() error {
	err := c.rc.Close()
	c.cancel()
	return err
}

func (b *Backend) buildHTTPRequest(ctx context.Context, req *Request, body encodedBody) (*http.Request, *Error) {
	url := strings.TrimSuffix(b.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		url += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if body.data != nil {
		reader = bytes.NewReader(body.data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, reader)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Message: "building request: " + err.Error(), Err: err}
	}

	httpReq.Header.Set("Authorization", "Bearer "+b.cfg.APIKey.Expose())
	httpReq.Header.Set("User-Agent", b.cfg.UserAgent)
	if body.contentType != "" {
		httpReq.Header.Set("Content-Type", body.contentType)
	}
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	for key, values := range b.cfg.Headers {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}

	return httpReq, nil
}

// classifyTransport maps a transport failure to the error taxonomy.
// Explicit cancellation wins over everything else; deadline expiry is a
// total timeout (the only deadline send sets); other net-level timeouts
// happened before a response, so they are connect timeouts.
func classifyTransport(ctx context.Context, err error) *Error {
	if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
		return &Error{Kind: KindCancelled, Message: "request cancelled", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Boundary: TimeoutTotal, Message: "request deadline exceeded", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Boundary: TimeoutConnect, Message: "connection timed out", Err: err}
	}
	return &Error{Kind: KindConnection, Message: err.Error(), Err: err}
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
