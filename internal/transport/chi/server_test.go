package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/domain"
	healthuc "github.com/ikarus-cloud/furnish/internal/usecase/health"
	itemuc "github.com/ikarus-cloud/furnish/internal/usecase/item"
	searchuc "github.com/ikarus-cloud/furnish/internal/usecase/search"
)

// --- Mocks ---

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockIndex struct {
	candidates []domain.Candidate
	err        error
	healthErr  error
}

func (m *mockIndex) Query(_ context.Context, _ []float32, _ int) ([]domain.Candidate, error) {
	return m.candidates, m.err
}

func (m *mockIndex) HealthCheck(_ context.Context) error { return m.healthErr }

type mockCatalog struct {
	products map[string]domain.Product
	pingErr  error
}

func (m *mockCatalog) GetByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	found := make(map[string]domain.Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func (m *mockCatalog) GetByID(_ context.Context, id string) (domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalog) Ping(_ context.Context) error { return m.pingErr }

type fixture struct {
	embed   *mockEmbedder
	index   *mockIndex
	catalog *mockCatalog
	router  chirouter.Router
}

func newFixture() *fixture {
	f := &fixture{
		embed: &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}},
		index: &mockIndex{},
		catalog: &mockCatalog{products: map[string]domain.Product{
			"B001": {ID: "B001", Title: "Oak Table", Brand: "Ikarus"},
		}},
	}
	logger := zap.NewNop()
	server := NewServer(
		searchuc.New(f.embed, f.index, f.catalog, 3, logger),
		itemuc.New(f.catalog, nil, logger),
		healthuc.New(f.catalog, f.index, nil),
		logger,
	)
	f.router = chirouter.NewRouter()
	server.Register(f.router)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return e
}

// --- Tests ---

func TestHealth(t *testing.T) {
	f := newFixture()
	// Liveness stays green even with every dependency failing.
	f.catalog.pingErr = domain.ErrIndexUnavailable
	f.index.healthErr = domain.ErrIndexUnavailable

	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected ok, got %q", body.Status)
	}
}

func TestReady_Degraded(t *testing.T) {
	f := newFixture()
	f.index.healthErr = domain.ErrIndexUnavailable

	rec := f.do(t, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["index"] != "error" || body.Checks["database"] != "ok" {
		t.Errorf("unexpected checks: %v", body.Checks)
	}
}

func TestSearch_OK(t *testing.T) {
	f := newFixture()
	f.index.candidates = []domain.Candidate{{ID: "B001", Score: 0.93}}

	rec := f.do(t, http.MethodPost, "/search", `{"query":"oak table"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 1 || body.Results[0].ID != "B001" {
		t.Fatalf("unexpected results: %+v", body.Results)
	}
	if body.Results[0].Score != 0.93 {
		t.Errorf("expected score in response, got %v", body.Results[0].Score)
	}
}

func TestSearch_EmptyResultIsArray(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/search", `{"query":"oak table"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestSearch_BadJSON(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/search", `{"query":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != codeInvalidInput {
		t.Errorf("expected %s, got %s", codeInvalidInput, e.Code)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/search", `{"query":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearch_EmbeddingProviderDown(t *testing.T) {
	f := newFixture()
	f.embed.err = domain.ErrEmbeddingProviderError

	rec := f.do(t, http.MethodPost, "/search", `{"query":"oak table"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	e := decodeError(t, rec)
	if e.Code != codeEmbeddingError {
		t.Errorf("expected %s, got %s", codeEmbeddingError, e.Code)
	}
}

func TestSearch_IndexDown(t *testing.T) {
	f := newFixture()
	f.index.err = domain.ErrIndexUnavailable

	rec := f.do(t, http.MethodPost, "/search", `{"query":"oak table"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != codeIndexUnavailable {
		t.Errorf("expected %s, got %s", codeIndexUnavailable, e.Code)
	}
}

func TestSearch_ProviderDetailNotLeaked(t *testing.T) {
	f := newFixture()
	f.embed.err = domain.ErrEmbeddingProviderError

	rec := f.do(t, http.MethodPost, "/search", `{"query":"oak table"}`)
	if strings.Contains(rec.Body.String(), "vectorize query") {
		t.Errorf("internal error chain leaked: %s", rec.Body.String())
	}
}

func TestItem_OK(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/item/B001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body productDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != "B001" || body.Title != "Oak Table" {
		t.Errorf("unexpected detail: %+v", body)
	}
	if body.CreativeDescription == "" {
		t.Error("creative_description must always be present")
	}
}

func TestItem_NotFound(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/item/NOPE", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != codeNotFound {
		t.Errorf("expected %s, got %s", codeNotFound, e.Code)
	}
}

func TestItem_MangledID(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/item/B001%250A", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected normalized lookup to succeed, got %d", rec.Code)
	}
}
