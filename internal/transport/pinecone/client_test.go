package pinecone

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&Config{
		APIKey: "test-key",
		Index:  "test-index",
		Host:   srv.URL,
		Logger: zap.NewNop(),
	})
}

func TestQuery(t *testing.T) {
	var gotPath, gotKey string
	var gotBody queryRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"id": "a", "score": 0.91, "metadata": map[string]any{
					"title": "Oak Table", "price": 129.99, "in_stock": true,
				}},
				{"id": "b", "score": 0.88},
			},
		})
	})

	candidates, err := client.Query(context.Background(), []float32{0.1, 0.2}, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/query" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("missing api key header")
	}
	if gotBody.TopK != 30 || !gotBody.IncludeMetadata {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ID != "a" || candidates[0].Score != 0.91 {
		t.Errorf("unexpected candidate: %+v", candidates[0])
	}
	md := candidates[0].Metadata
	if md["title"] != "Oak Table" || md["price"] != "129.99" || md["in_stock"] != "true" {
		t.Errorf("metadata not stringified: %v", md)
	}
	if candidates[1].Metadata != nil {
		t.Errorf("expected nil metadata for bare match, got %v", candidates[1].Metadata)
	}
}

func TestQuery_ServerErrorMapsToIndexUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.Query(context.Background(), []float32{0.1}, 10)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestQuery_UnreachableHost(t *testing.T) {
	client := New(&Config{
		APIKey: "k",
		Host:   "http://127.0.0.1:1",
		Logger: zap.NewNop(),
	})

	_, err := client.Query(context.Background(), []float32{0.1}, 10)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestUpsert(t *testing.T) {
	var got struct {
		Vectors []Vector `json:"vectors"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]int{"upsertedCount": len(got.Vectors)})
	})

	err := client.Upsert(context.Background(), []Vector{
		{ID: "a", Values: []float32{0.1, 0.2}, Metadata: map[string]any{"title": "Oak Table"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Vectors) != 1 || got.Vectors[0].ID != "a" {
		t.Errorf("unexpected upsert payload: %+v", got)
	}
}

func TestFetch(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{
			"vectors": map[string]any{
				"a": map[string]any{"id": "a", "values": []float32{0.1, 0.2}},
			},
		})
	})

	vectors, err := client.Fetch(context.Background(), []string{"a", "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/vectors/fetch" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotQuery != "ids=a&ids=missing" {
		t.Errorf("unexpected query: %s", gotQuery)
	}
	if len(vectors) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vectors))
	}
	if v, ok := vectors["a"]; !ok || len(v.Values) != 2 {
		t.Errorf("unexpected vector: %+v", vectors)
	}
}

func TestDescribeIndexStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{
			"dimension":        768,
			"totalVectorCount": 3125,
		})
	})

	stats, err := client.DescribeIndexStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Dimension != 768 || stats.TotalVectorCount != 3125 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestHostDerivedFromIndexAndRegion(t *testing.T) {
	c := New(&Config{Index: "products", Region: "us-east1-gcp", Logger: zap.NewNop()})
	want := "https://products.svc.us-east1-gcp.pinecone.io"
	if c.host != want {
		t.Errorf("host = %q, want %q", c.host, want)
	}
}
