package kafeido

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"

	"github.com/kafeido/kafeido-go/core"
)

// TranscriptionStreamParams configure a realtime transcription
// session. The configuration is sent as the first frame of the
// WebSocket connection.
type TranscriptionStreamParams struct {
	Model      string `json:"model"`
	Language   string `json:"language,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
}

// TranscriptionStreamResponse is one transcription update from a
// realtime session.
type TranscriptionStreamResponse struct {
	Text     string                 `json:"text,omitempty"`
	Language string                 `json:"language,omitempty"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
	IsFinal  bool                   `json:"is_final,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// TranscriptionStream is a realtime transcription session. Audio goes
// out as binary frames via Send; transcription updates come back via
// Recv. Not safe for concurrent Send or concurrent Recv calls, but
// one sender and one receiver goroutine may run in parallel.
type TranscriptionStream struct {
	conn *websocket.Conn
}

// Stream opens a realtime transcription session.
func (s *AudioTranscriptionService) Stream(ctx context.Context, params TranscriptionStreamParams) (*TranscriptionStream, error) {
	cfg := s.backend.Config()

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+cfg.APIKey.Expose())
	conn, _, err := websocket.Dial(ctx, websocketURL(cfg.BaseURL), &websocket.DialOptions{
		HTTPClient: cfg.HTTPClient,
		HTTPHeader: headers,
	})
	if err != nil {
		return nil, &core.Error{
			Kind:    core.KindConnection,
			Message: "websocket dial failed",
			Err:     err,
		}
	}

	// The server expects the session configuration as the first
	// text frame before any audio.
	data, err := json.Marshal(params)
	if err == nil {
		err = conn.Write(ctx, websocket.MessageText, data)
	}
	if err != nil {
		conn.Close(websocket.StatusInternalError, "config send failed")
		return nil, &core.Error{
			Kind:    core.KindConnection,
			Message: "sending session config failed",
			Err:     err,
		}
	}
	return &TranscriptionStream{conn: conn}, nil
}

// Send transmits a chunk of raw audio.
func (t *TranscriptionStream) Send(ctx context.Context, audio []byte) error {
	if err := t.conn.Write(ctx, websocket.MessageBinary, audio); err != nil {
		return &core.Error{
			Kind:    core.KindConnection,
			Message: "sending audio frame failed",
			Err:     err,
		}
	}
	return nil
}

// Recv blocks for the next transcription update. It returns io.EOF
// after the server closes the session normally.
func (t *TranscriptionStream) Recv(ctx context.Context) (*TranscriptionStreamResponse, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return nil, io.EOF
		}
		return nil, &core.Error{
			Kind:    core.KindConnection,
			Message: "receiving transcription failed",
			Err:     err,
		}
	}

	var resp TranscriptionStreamResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &core.Error{
			Kind:    core.KindDecode,
			Message: "malformed transcription frame",
			Body:    data,
			Err:     err,
		}
	}
	if resp.Error != "" {
		return nil, &core.Error{
			Kind:    core.KindAPIStatus,
			Message: resp.Error,
			Body:    data,
		}
	}
	return &resp, nil
}

// Close ends the session.
func (t *TranscriptionStream) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "")
}

// websocketURL converts the HTTP base URL into the realtime
// transcription endpoint URL.
func websocketURL(baseURL string) string {
	u := strings.TrimSuffix(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/v1/audio/transcriptions/stream"
}
