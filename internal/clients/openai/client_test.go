package openai

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/yungbote/storyjam-backend/internal/logger"
)

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newTestClient(t *testing.T, rt roundTripFunc) Client {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	c, err := NewClient(testLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.(*client).httpClient = &http.Client{Transport: rt}
	return c
}

func responsesBody(text string) *http.Response {
	payload := map[string]any{
		"output": []map[string]any{
			{
				"type": "message",
				"role": "assistant",
				"content": []map[string]any{
					{"type": "output_text", "text": text},
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(raw)),
		Header:     http.Header{},
	}
}

func TestGenerateTextOmitsStructuredOutputConfig(t *testing.T) {
	var captured map[string]any
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(raw, &captured); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		return responsesBody("a short joke"), nil
	})

	got, err := c.GenerateText(t.Context(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "a short joke" {
		t.Fatalf("text: want=%q got=%q", "a short joke", got)
	}
	if _, present := captured["text"]; present {
		t.Fatalf("plain-text request must not carry a text block, got=%v", captured["text"])
	}
}

func TestGenerateJSONSendsSchemaFormat(t *testing.T) {
	var captured map[string]any
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(raw, &captured); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		return responsesBody(`{"title":"Park Day"}`), nil
	})

	schema := map[string]any{"type": "object"}
	obj, err := c.GenerateJSON(t.Context(), "system", "user", "story_summary_v1", schema)
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["title"] != "Park Day" {
		t.Fatalf("parsed title: want=%q got=%v", "Park Day", obj["title"])
	}

	text, ok := captured["text"].(map[string]any)
	if !ok {
		t.Fatalf("structured request missing text block: %v", captured)
	}
	format, ok := text["format"].(map[string]any)
	if !ok {
		t.Fatalf("text block missing format: %v", text)
	}
	if format["type"] != "json_schema" || format["name"] != "story_summary_v1" {
		t.Fatalf("format: want json_schema/story_summary_v1 got=%v", format)
	}
	if format["strict"] != true {
		t.Fatalf("format strict: want=true got=%v", format["strict"])
	}
}
