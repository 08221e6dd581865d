// Package query holds the validated search request value object plus the
// free-text helpers the retrieval pipeline applies to it: keyword extraction
// for title filtering and product id cleanup for path parameters.
package query

import (
	"fmt"
	"strings"

	"github.com/ikarus-cloud/furnish/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength    = 512
	DefaultTopK       = 12
	MaxTopK           = 50
	DefaultCandidateK = 30
	MaxCandidateK     = 100
)

// Request is a validated search query.
type Request struct {
	query       string
	topK        int
	candidateK  int
	mustContain string
}

// New validates and normalizes search parameters.
// Defaults: topK=12, candidateK=30. CandidateK is raised to at least topK so
// the index always returns enough candidates to fill a page.
func New(text string, topK, candidateK int, mustContain string) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidInput, MaxQueryLength)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if candidateK <= 0 {
		candidateK = DefaultCandidateK
	}
	if candidateK > MaxCandidateK {
		candidateK = MaxCandidateK
	}
	if candidateK < topK {
		candidateK = topK
	}

	return Request{
		query:       text,
		topK:        topK,
		candidateK:  candidateK,
		mustContain: strings.TrimSpace(mustContain),
	}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// TopK returns the maximum number of results to return.
func (r *Request) TopK() int { return r.topK }

// CandidateK returns how many candidates to request from the vector index.
func (r *Request) CandidateK() int { return r.candidateK }

// Keyword returns the effective title filter: the explicit must_contain
// override when present, otherwise a keyword extracted from the query text.
// Empty means no title filtering.
func (r *Request) Keyword() string {
	if r.mustContain != "" {
		return strings.ToLower(r.mustContain)
	}
	return ExtractKeyword(r.query)
}
