package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
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
	c, err := New(testLogger(t), Config{
		APIKey:     "test-key",
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func jsonResponse(t *testing.T, status int, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(raw)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestDescribeIndexRequestShape(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodGet {
			t.Fatalf("method: want=GET got=%s", r.Method)
		}
		if r.URL.String() != "https://api.pinecone.io/indexes/stories" {
			t.Fatalf("url: got=%q", r.URL.String())
		}
		if r.Header.Get("Api-Key") != "test-key" {
			t.Fatalf("api key header missing")
		}
		if r.Header.Get("X-Pinecone-Api-Version") == "" {
			t.Fatalf("api version header missing")
		}
		return jsonResponse(t, 200, map[string]any{
			"name":      "stories",
			"host":      "stories-abc.svc.pinecone.io",
			"dimension": 768,
			"metric":    "cosine",
		}), nil
	})

	desc, err := c.DescribeIndex(context.Background(), "stories")
	if err != nil {
		t.Fatalf("DescribeIndex: %v", err)
	}
	if desc.Host != "stories-abc.svc.pinecone.io" {
		t.Fatalf("host: got=%q", desc.Host)
	}
	if desc.Dimension != 768 {
		t.Fatalf("dimension: want=768 got=%d", desc.Dimension)
	}
}

func TestUpsertVectorsRequestShape(t *testing.T) {
	var captured UpsertRequest
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != "https://stories-abc.svc.pinecone.io/vectors/upsert" {
			t.Fatalf("url: got=%q", r.URL.String())
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(t, 200, UpsertResponse{UpsertedCount: 1}), nil
	})

	resp, err := c.UpsertVectors(context.Background(), "stories-abc.svc.pinecone.io", UpsertRequest{
		Namespace: "sj",
		Vectors: []Vector{
			{ID: "v1", Values: []float32{1, 2}, Metadata: map[string]any{"user_id": "u1"}},
		},
	})
	if err != nil {
		t.Fatalf("UpsertVectors: %v", err)
	}
	if resp.UpsertedCount != 1 {
		t.Fatalf("count: want=1 got=%d", resp.UpsertedCount)
	}
	if captured.Namespace != "sj" {
		t.Fatalf("namespace: want=sj got=%q", captured.Namespace)
	}
	if len(captured.Vectors) != 1 || captured.Vectors[0].ID != "v1" {
		t.Fatalf("vectors: got=%+v", captured.Vectors)
	}
}

func TestUpsertVectorsSkipsEmptyBatch(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("request issued for empty batch")
		return nil, nil
	})
	resp, err := c.UpsertVectors(context.Background(), "h.example", UpsertRequest{})
	if err != nil {
		t.Fatalf("UpsertVectors: %v", err)
	}
	if resp.UpsertedCount != 0 {
		t.Fatalf("count: want=0 got=%d", resp.UpsertedCount)
	}
}

func TestQuerySurfacesHTTPErrors(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 429,
			Body:       io.NopCloser(strings.NewReader(`{"message":"rate limited"}`)),
		}, nil
	})
	_, err := c.Query(context.Background(), "h.example", QueryRequest{Vector: []float32{1}, TopK: 5})
	if err == nil {
		t.Fatalf("expected error for http 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry status: got=%v", err)
	}
}

func TestDeleteVectorsNoopWithoutIDs(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("request issued for empty delete")
		return nil, nil
	})
	if err := c.DeleteVectors(context.Background(), "h.example", DeleteRequest{}); err != nil {
		t.Fatalf("DeleteVectors: %v", err)
	}
}

func TestDataURLSchemeHandling(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"stories-abc.svc.pinecone.io", "https://stories-abc.svc.pinecone.io/query"},
		{"https://stories-abc.svc.pinecone.io", "https://stories-abc.svc.pinecone.io/query"},
		{"http://localhost:5080/", "http://localhost:5080/query"},
	}
	for _, tc := range cases {
		if got := dataURL(tc.host, "/query"); got != tc.want {
			t.Fatalf("dataURL(%q): want=%q got=%q", tc.host, tc.want, got)
		}
	}
}
