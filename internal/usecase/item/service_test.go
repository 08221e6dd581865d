package item

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/domain"
)

// --- Mocks ---

type mockProducts struct {
	products map[string]domain.Product
	calls    []string
}

func (m *mockProducts) GetByID(_ context.Context, id string) (domain.Product, error) {
	m.calls = append(m.calls, id)
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

type mockBlurbs struct {
	blurb  string
	err    error
	called bool
	title  string
}

func (m *mockBlurbs) Write(_ context.Context, title string) (string, error) {
	m.called = true
	m.title = title
	return m.blurb, m.err
}

// --- Tests ---

func TestGet_Success(t *testing.T) {
	catalog := &mockProducts{products: map[string]domain.Product{
		"B001": {ID: "B001", Title: "Oak Table", Brand: "Ikarus"},
	}}
	blurbs := &mockBlurbs{blurb: "a sturdy oak centerpiece for family dinners."}
	svc := New(catalog, blurbs, zap.NewNop())

	detail, err := svc.Get(context.Background(), "B001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ID != "B001" || detail.Title != "Oak Table" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if !blurbs.called {
		t.Error("expected blurb generation")
	}
	if blurbs.title != "Oak Table" {
		t.Errorf("blurb prompted with %q", blurbs.title)
	}
	if detail.CreativeDescription == "" {
		t.Error("expected a creative description")
	}
}

func TestGet_NormalizesID(t *testing.T) {
	catalog := &mockProducts{products: map[string]domain.Product{
		"B001": {ID: "B001", Title: "Oak Table"},
	}}
	svc := New(catalog, nil, zap.NewNop())

	detail, err := svc.Get(context.Background(), `"B001%0A"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ID != "B001" {
		t.Errorf("unexpected detail id: %q", detail.ID)
	}
	if len(catalog.calls) != 1 || catalog.calls[0] != "B001" {
		t.Errorf("expected lookup with normalized id, got %v", catalog.calls)
	}
}

func TestGet_AlternateIDRetry(t *testing.T) {
	// Double-encoded newline: the first lookup uses "B001%0A", the retry the
	// fully decoded "B001".
	catalog := &mockProducts{products: map[string]domain.Product{
		"B001": {ID: "B001", Title: "Oak Table"},
	}}
	svc := New(catalog, nil, zap.NewNop())

	detail, err := svc.Get(context.Background(), "B001%250A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ID != "B001" {
		t.Errorf("unexpected detail id: %q", detail.ID)
	}
	if len(catalog.calls) != 2 {
		t.Fatalf("expected two lookups, got %v", catalog.calls)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := New(&mockProducts{}, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_EmptyID(t *testing.T) {
	svc := New(&mockProducts{}, nil, zap.NewNop())

	for _, raw := range []string{"", "   ", `""`} {
		_, err := svc.Get(context.Background(), raw)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("id %q: expected ErrInvalidInput, got %v", raw, err)
		}
	}
}

func TestGet_BlurbFailureFallsBack(t *testing.T) {
	catalog := &mockProducts{products: map[string]domain.Product{
		"B001": {ID: "B001", Title: "Oak Table"},
	}}
	blurbs := &mockBlurbs{err: errors.New("llm timeout")}
	svc := New(catalog, blurbs, zap.NewNop())

	detail, err := svc.Get(context.Background(), "B001")
	if err != nil {
		t.Fatalf("blurb failure must not fail the request: %v", err)
	}
	if detail.CreativeDescription != fallbackBlurb {
		t.Errorf("expected fallback blurb, got %q", detail.CreativeDescription)
	}
}

func TestGet_NilBlurbWriter(t *testing.T) {
	catalog := &mockProducts{products: map[string]domain.Product{
		"B001": {ID: "B001", Title: "Oak Table"},
	}}
	svc := New(catalog, nil, zap.NewNop())

	detail, err := svc.Get(context.Background(), "B001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.CreativeDescription != fallbackBlurb {
		t.Errorf("expected fallback blurb, got %q", detail.CreativeDescription)
	}
}
