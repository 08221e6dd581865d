package domain

import "errors"

var (
	// ErrInvalidInput signals a malformed or empty request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound signals a missing product.
	ErrNotFound = errors.New("product not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexUnavailable signals a vector index connectivity or auth failure.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	// Should never happen in a correctly configured deployment.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
