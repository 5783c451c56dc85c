package kafeido

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func TestOCRExtractionNew(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/ocr/extract" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var params map[string]any
		json.Unmarshal(body, &params)
		if params["model_id"] != "deepseek-ocr" {
			t.Errorf("model_id = %v", params["model_id"])
		}
		if params["mode"] != "markdown" {
			t.Errorf("mode = %v", params["mode"])
		}
		if _, present := params["file_id"]; present {
			t.Error("unset file_id was serialized")
		}

		w.Write([]byte(`{
			"text": "# Invoice\n\nTotal: $42",
			"regions": [{"text": "Invoice", "x1": 10, "y1": 5, "x2": 120, "y2": 30, "confidence": 0.98}],
			"detected_language": "en"
		}`))
	}))
	defer server.Close()

	extraction, err := newTestClient(t, server.URL).OCR.Extractions.New(context.Background(), OCRExtractionNewParams{
		ModelID:    "deepseek-ocr",
		StorageKey: "uploads/invoice.png",
		Mode:       "markdown",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if extraction.DetectedLanguage != "en" {
		t.Errorf("DetectedLanguage = %q", extraction.DetectedLanguage)
	}
	if len(extraction.Regions) != 1 || extraction.Regions[0].X2 != 120 {
		t.Errorf("regions = %+v", extraction.Regions)
	}
	if extraction.Regions[0].Confidence == nil || *extraction.Regions[0].Confidence != 0.98 {
		t.Errorf("confidence = %v", extraction.Regions[0].Confidence)
	}
}

func TestOCRExtractionAsyncLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/ocr/extract/async":
			w.Write([]byte(`{"job_id": "ocr-7", "status": "pending"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/ocr/extract/async/ocr-7":
			w.Write([]byte(`{"status": "completed", "progress": 1.0, "result": {"text": "done"}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	job, err := client.OCR.Extractions.NewAsync(context.Background(), OCRExtractionNewParams{
		ModelID: "paddle-ocr",
		FileID:  "file-1",
	})
	if err != nil {
		t.Fatalf("NewAsync() error = %v", err)
	}
	if job.JobID != "ocr-7" || job.Status != "pending" {
		t.Errorf("job = %+v", job)
	}

	result, err := client.OCR.Extractions.Result(context.Background(), job.JobID)
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if result.Status != JobStatusCompleted || result.Result == nil || result.Result.Text != "done" {
		t.Errorf("result = %+v", result)
	}
}
