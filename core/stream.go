package core

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// doneSentinel terminates a server-sent event stream.
const doneSentinel = "[DONE]"

// Stream is a lazy, finite, forward-only sequence of decoded chunks from
// a streaming response. It is not restartable and not safe for concurrent
// use; one consumer iterates it at most once:
//
//	stream, err := core.DoStream[Chunk](ctx, backend, req)
//	if err != nil { ... }
//	defer stream.Close()
//	for stream.Next() {
//		chunk := stream.Current()
//		...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// The underlying connection is released when the stream ends, when a
// chunk fails to decode, or when the consumer calls Close — whichever
// comes first. Chunks already yielded remain valid after a later error.
type Stream[T any] struct {
	ctx     context.Context
	body    io.ReadCloser
	idle    *idleReader
	scanner *bufio.Scanner
	cur     T
	err     error
	closed  bool
	done    bool
}

func newStream[T any](ctx context.Context, body io.ReadCloser, idleTimeout time.Duration) *Stream[T] {
	ir := newIdleReader(body, idleTimeout)
	scanner := bufio.NewScanner(ir)
	scanner.Buffer(make([]byte, 0, 16*1024), 1024*1024)
	return &Stream[T]{
		ctx:     ctx,
		body:    body,
		idle:    ir,
		scanner: scanner,
	}
}

// Next advances to the next chunk, suspending until the transport
// delivers one. It returns false at end of stream or on error; check Err
// afterwards.
func (s *Stream[T]) Next() bool {
	if s.closed || s.done || s.err != nil {
		return false
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == doneSentinel {
			s.done = true
			s.Close()
			return false
		}

		var v T
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			s.err = &Error{
				Kind:    KindDecode,
				Message: "decoding stream chunk: " + err.Error(),
				Body:    []byte(payload),
				Err:     err,
			}
			s.Close()
			return false
		}
		s.cur = v
		return true
	}

	if scanErr := s.scanner.Err(); scanErr != nil {
		s.err = s.classifyStreamErr(scanErr)
	}
	s.done = true
	s.Close()
	return false
}

func (s *Stream[T]) classifyStreamErr(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if s.idle.expired.Load() {
		return &Error{Kind: KindTimeout, Boundary: TimeoutIdle, Message: "stream idle timeout", Err: err}
	}
	if s.ctx.Err() != nil {
		return classifyTransport(s.ctx, s.ctx.Err())
	}
	return &Error{Kind: KindConnection, Message: "reading stream: " + err.Error(), Err: err}
}

// Current returns the chunk most recently yielded by Next.
func (s *Stream[T]) Current() T {
	return s.cur
}

// Err returns the error that terminated the stream, or nil after a normal
// end of stream.
func (s *Stream[T]) Err() error {
	return s.err
}

// Close releases the underlying connection. Safe to call more than once
// and after abandoning iteration early.
func (s *Stream[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.idle.Close()
}

// idleReader enforces the gap allowed between successive reads of a
// stream body. When the watchdog fires it closes the body, failing the
// pending read; the failure is then reported as an idle timeout.
type idleReader struct {
	rc      io.ReadCloser
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleReader(rc io.ReadCloser, timeout time.Duration) *idleReader {
	ir := &idleReader{rc: rc, timeout: timeout}
	ir.timer = time.AfterFunc(timeout, func() {
		ir.expired.Store(true)
		ir.rc.Close()
	})
	return ir
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.rc.Read(p)
	if err != nil {
		if ir.expired.Load() {
			return n, &Error{Kind: KindTimeout, Boundary: TimeoutIdle, Message: "stream idle timeout", Err: err}
		}
		return n, err
	}
	ir.timer.Reset(ir.timeout)
	return n, err
}

func (ir *idleReader) Close() error {
	ir.timer.Stop()
	return ir.rc.Close()
}
