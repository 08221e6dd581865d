// Package hfspace embeds text through a Hugging Face Space exposing a Gradio
// /run/embed_fn endpoint. Alternate provider to openrouter, selected by config.
package hfspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/domain"
	"github.com/ikarus-cloud/furnish/internal/metrics"
)

const providerName = "hfspace"

// Embedder calls a Space's embed_fn endpoint over HTTP.
type Embedder struct {
	baseURL string
	token   string
	space   string
	client  *http.Client
	logger  *zap.Logger
}

// Config holds the Space connection settings.
type Config struct {
	Space   string // "owner/space-name"
	Token   string
	BaseURL string // optional override, mainly for tests
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewEmbedder creates a Space-backed embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	base := cfg.BaseURL
	if base == "" {
		base = spaceURL(cfg.Space)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Embedder{
		baseURL: strings.TrimRight(base, "/"),
		token:   cfg.Token,
		space:   cfg.Space,
		client:  &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

// spaceURL derives the public host from a space id: "owner/name" maps to
// https://owner-name.hf.space (dots and underscores flatten to dashes).
func spaceURL(space string) string {
	host := strings.NewReplacer("/", "-", "_", "-", ".", "-").Replace(space)
	return "https://" + strings.ToLower(host) + ".hf.space"
}

type runRequest struct {
	Data []any `json:"data"`
}

type runResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Embed implements domain.Embedder. The Space reports no token usage, so
// PromptTokens/TotalTokens stay zero.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	body, err := json.Marshal(runRequest{Data: []any{text, true}}) // normalize=true
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/run/embed_fn", bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.space, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.space, "transport").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("space request: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.space, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.space, "api_error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.EmbeddingResult{}, fmt.Errorf("space returned %d: %s: %w",
			resp.StatusCode, string(snippet), domain.ErrEmbeddingProviderError)
	}

	var parsed runResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.space, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.space, "bad_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("decode space response: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(parsed.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.space, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.space, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty space response: %w", domain.ErrEmbeddingProviderError)
	}

	vec, err := ParseVector(parsed.Data[0])
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.space, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.space, "bad_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", err, domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.space, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.space).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck probes the Space root. A reachable Space answers 200 on /.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("space unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("space returned %d", resp.StatusCode)
	}
	return nil
}

// ParseVector tolerates the response shapes Spaces have been observed to
// return for embed_fn: a bare numeric list, a nested list, or an object
// keyed "embeddings"/"embedding"/"vector" holding either.
func ParseVector(raw json.RawMessage) ([]float32, error) {
	// Bare list: [0.1, 0.2, ...] or [[0.1, 0.2, ...]]
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err == nil && len(nums) > 0 {
		return toFloat32(nums), nil
	}
	var nested [][]float64
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return toFloat32(nested[0]), nil
	}

	// Object (or single-element list of objects) with a known key.
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		var list []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return nil, fmt.Errorf("unexpected embed_fn response shape")
		}
		obj = list[0]
	}
	for _, key := range []string{"embeddings", "embedding", "vector", "data"} {
		inner, ok := obj[key]
		if !ok {
			continue
		}
		if vec, err := ParseVector(inner); err == nil {
			return vec, nil
		}
	}
	return nil, fmt.Errorf("unexpected embed_fn response shape")
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
