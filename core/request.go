package core

import (
	"io"
	"net/http"
	"net/url"
	"time"
)

// FormFile is one file part of a multipart upload.
type FormFile struct {
	// Field is the multipart field name, e.g. "file".
	Field string
	// Name is the filename reported to the server.
	Name string
	// Reader supplies the file content. Consumed once per attempt, so
	// retryable multipart requests buffer content up front.
	Reader io.Reader
}

// Form describes a multipart/form-data body.
type Form struct {
	// Fields are plain text fields, written in insertion order.
	Fields []FormField
	// Files are the file parts.
	Files []FormFile
}

// FormField is one text field of a multipart form.
type FormField struct {
	Key   string
	Value string
}

// AddField appends a text field.
func (f *Form) AddField(key, value string) {
	f.Fields = append(f.Fields, FormField{Key: key, Value: value})
}

// AddFile appends a file part.
func (f *Form) AddFile(field, name string, r io.Reader) {
	f.Files = append(f.Files, FormFile{Field: field, Name: name, Reader: r})
}

// Request is the immutable descriptor of one logical API call. Resource
// methods construct exactly one Request and pass it to the engine; the
// engine never mutates it.
type Request struct {
	// Method is the HTTP method.
	Method string

	// Path is the endpoint path relative to the base URL, e.g.
	// "/v1/chat/completions".
	Path string

	// Query holds query parameters, encoded in canonical key order.
	Query url.Values

	// Headers are per-request header overrides.
	Headers http.Header

	// Body is JSON-encoded when non-nil.
	Body any

	// Form describes a multipart body. Mutually exclusive with Body.
	Form *Form

	// Stream marks the response as an incremental event stream rather
	// than a single value. The decode mode follows this flag, never
	// response-content sniffing.
	Stream bool

	// Timeout overrides the configured total timeout for this call.
	Timeout time.Duration

	// IdleTimeout overrides the configured idle timeout for this call.
	IdleTimeout time.Duration
}
