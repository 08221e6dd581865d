// Package pinecone is a minimal REST client for the Pinecone vector index:
// query, fetch, upsert, and index stats. Only the operations the retrieval
// pipeline and the ingest CLI need.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/domain"
	"github.com/ikarus-cloud/furnish/internal/metrics"
)

// Client talks to a single Pinecone index over its data-plane REST API.
type Client struct {
	host   string
	apiKey string
	http   *http.Client
	logger *zap.Logger
}

// Config holds index connection settings.
type Config struct {
	APIKey  string
	Index   string
	Region  string
	Host    string // optional override; derived from Index+Region when empty
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates an index client.
func New(cfg *Config) *Client {
	host := cfg.Host
	if host == "" {
		host = fmt.Sprintf("https://%s.svc.%s.pinecone.io", cfg.Index, cfg.Region)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		host:   strings.TrimRight(host, "/"),
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: timeout},
		logger: cfg.Logger,
	}
}

// Vector is one index entry for upserts and fetches.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Stats is the index summary used for readiness and dimension verification.
type Stats struct {
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query runs a nearest-neighbor search and returns candidates in the index's
// descending-score order, length <= topK.
func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]domain.Candidate, error) {
	var resp queryResponse
	err := c.do(ctx, http.MethodPost, "/query",
		queryRequest{Vector: vector, TopK: topK, IncludeMetadata: true}, &resp, "query")
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, len(resp.Matches))
	for i, m := range resp.Matches {
		candidates[i] = domain.Candidate{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: stringifyMetadata(m.Metadata),
		}
	}
	return candidates, nil
}

// Fetch retrieves stored vectors by id. Missing ids are absent from the map.
func (c *Client) Fetch(ctx context.Context, ids []string) (map[string]Vector, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids", id)
	}
	var resp struct {
		Vectors map[string]Vector `json:"vectors"`
	}
	if err := c.do(ctx, http.MethodGet, "/vectors/fetch?"+q.Encode(), nil, &resp, "fetch"); err != nil {
		return nil, err
	}
	return resp.Vectors, nil
}

// Upsert writes vectors in one call. Ingest-only path.
func (c *Client) Upsert(ctx context.Context, vectors []Vector) error {
	body := struct {
		Vectors []Vector `json:"vectors"`
	}{Vectors: vectors}
	var resp struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	return c.do(ctx, http.MethodPost, "/vectors/upsert", body, &resp, "upsert")
}

// DescribeIndexStats returns the index dimension and vector count.
func (c *Client) DescribeIndexStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodPost, "/describe_index_stats", struct{}{}, &stats, "stats"); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// HealthCheck verifies the index answers stats calls.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.DescribeIndexStats(ctx)
	return err
}

// do issues one request and decodes the response. Every failure wraps
// domain.ErrIndexUnavailable so the HTTP surface maps it to 503.
func (c *Client) do(ctx context.Context, method, path string, body, out any, op string) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, payload)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IndexQueriesTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("index %s: %w: %w", op, err, domain.ErrIndexUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.IndexQueriesTotal.WithLabelValues(op, "error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Index request failed",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return fmt.Errorf("index %s returned %d: %w", op, resp.StatusCode, domain.ErrIndexUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.IndexQueriesTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("decode %s response: %w: %w", op, err, domain.ErrIndexUnavailable)
	}

	metrics.IndexQueriesTotal.WithLabelValues(op, "success").Inc()
	metrics.IndexQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return nil
}

// stringifyMetadata flattens Pinecone metadata (strings, numbers, bools) into
// the string map candidates carry. Lists and objects are dropped.
func stringifyMetadata(md map[string]any) map[string]string {
	if len(md) == 0 {
		return nil
	}
	out := make(map[string]string, len(md))
	for k, v := range md {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	return out
}
