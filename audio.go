package kafeido

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/kafeido/kafeido-go/core"
)

// TranscriptionSegment is one timed span of transcribed audio.
type TranscriptionSegment struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
}

// Transcription is the response of the transcription endpoint.
type Transcription struct {
	Text     string                 `json:"text"`
	Task     string                 `json:"task,omitempty"`
	Language string                 `json:"language,omitempty"`
	Duration float64                `json:"duration,omitempty"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
	Words    []map[string]any       `json:"words,omitempty"`
}

// Translation is the response of the translation endpoint. The text is
// always English.
type Translation struct {
	Text     string                 `json:"text"`
	Task     string                 `json:"task,omitempty"`
	Language string                 `json:"language,omitempty"`
	Duration float64                `json:"duration,omitempty"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
}

// TranscriptionNewParams are the parameters for a transcription.
// File and Model are required.
type TranscriptionNewParams struct {
	File     io.Reader
	Filename string
	Model    string
	Language string
	Prompt   string
	// ResponseFormat is one of "json", "text", "srt", "verbose_json",
	// "vtt". Defaults to "json".
	ResponseFormat         string
	Temperature            *float64
	TimestampGranularities []string
}

// TranslationNewParams are the parameters for a translation.
type TranslationNewParams struct {
	File           io.Reader
	Filename       string
	Model          string
	Prompt         string
	ResponseFormat string
	Temperature    *float64
}

// AudioService groups the audio endpoints.
type AudioService struct {
	Transcriptions *AudioTranscriptionService
	Translations   *AudioTranslationService
	Speech         *SpeechService
}

// AudioTranscriptionService calls the transcription endpoints.
type AudioTranscriptionService struct {
	backend *core.Backend
}

// New transcribes an audio file to text in its source language.
func (s *AudioTranscriptionService) New(ctx context.Context, params TranscriptionNewParams) (*Transcription, error) {
	form := &core.Form{}
	form.AddFile("file", orDefault(params.Filename, "file"), params.File)
	form.AddField("model", params.Model)
	form.AddField("response_format", orDefault(params.ResponseFormat, "json"))
	if params.Language != "" {
		form.AddField("language", params.Language)
	}
	if params.Prompt != "" {
		form.AddField("prompt", params.Prompt)
	}
	if params.Temperature != nil {
		form.AddField("temperature", formatFloat(*params.Temperature))
	}
	for _, g := range params.TimestampGranularities {
		form.AddField("timestamp_granularities[]", g)
	}

	out, err := core.Do[Transcription](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/audio/transcriptions",
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AudioTranslationService calls the translation endpoint.
type AudioTranslationService struct {
	backend *core.Backend
}

// New translates an audio file to English text.
func (s *AudioTranslationService) New(ctx context.Context, params TranslationNewParams) (*Translation, error) {
	form := &core.Form{}
	form.AddFile("file", orDefault(params.Filename, "file"), params.File)
	form.AddField("model", params.Model)
	form.AddField("response_format", orDefault(params.ResponseFormat, "json"))
	if params.Prompt != "" {
		form.AddField("prompt", params.Prompt)
	}
	if params.Temperature != nil {
		form.AddField("temperature", formatFloat(*params.Temperature))
	}

	out, err := core.Do[Translation](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/audio/translations",
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
