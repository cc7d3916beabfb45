package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals a malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPageOutOfRange signals a page number past the last page.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthorized signals missing or invalid admin credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorNotFound signals that a document has no vector in the similarity index.
	ErrVectorNotFound = errors.New("vector not found")
	// ErrBatchTooLarge signals a batch request over the configured maximum.
	ErrBatchTooLarge = errors.New("batch too large")
)

// PageOutOfRangeError wraps ErrPageOutOfRange with the requested and last page.
type PageOutOfRangeError struct {
	Page     int
	LastPage int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: requested %d, last page is %d", ErrPageOutOfRange.Error(), e.Page, e.LastPage)
}

func (e *PageOutOfRangeError) Unwrap() error { return ErrPageOutOfRange }

// NewPageOutOfRange creates a page out of range error.
func NewPageOutOfRange(page, lastPage int) error {
	return &PageOutOfRangeError{Page: page, LastPage: lastPage}
}
