package util

import (
	"errors"
	"fmt"
)

var (
	ErrIndexMismatch     = errors.New("index and corpus size mismatch")
	ErrMalformedVector   = errors.New("malformed index vector")
	ErrMalformedCorpus   = errors.New("malformed player corpus")
	ErrDimensionMismatch = errors.New("query embedding dimension mismatch")
	ErrOrdinalOutOfRange = errors.New("index ordinal out of range")
	ErrUnknownCategory   = errors.New("unknown player category")
	ErrEmptyQuery        = errors.New("query is required")

	ErrQuotaExhausted = errors.New("provider quota exhausted")
	ErrRateLimited    = errors.New("provider rate limited")
	ErrTransient      = errors.New("transient provider error")
	ErrPermanent      = errors.New("permanent provider error")
	ErrContextTooLong = errors.New("context too long")
)

// RetrievalError is fatal to the current request and reported verbatim.
type RetrievalError struct {
	Category string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s players: %v", e.Category, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ExternalServiceError wraps a failed language-model call. Type carries the
// provider error class (quota, rate, transient, permanent, context).
type ExternalServiceError struct {
	Provider string
	Model    string
	Type     string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("llm %s (%s) failed: %v", e.Provider, e.Model, e.Err)
	}
	return fmt.Sprintf("llm %s failed: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Is lets callers match the error class with the provider sentinels.
func (e *ExternalServiceError) Is(target error) bool {
	switch e.Type {
	case "quota":
		return target == ErrQuotaExhausted
	case "rate":
		return target == ErrRateLimited
	case "transient":
		return target == ErrTransient
	case "context":
		return target == ErrContextTooLong
	case "permanent":
		return target == ErrPermanent
	}
	return false
}
