package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrGenerationFailed is returned when the text-generation service could
	// not produce usable candidate names (safety block, credential
	// exhaustion, unparsable output)
	ErrGenerationFailed = errors.New("candidate generation failed")

	// ErrInsufficientCandidates is returned when fewer than 3 usable
	// candidate names exist even after backfill
	ErrInsufficientCandidates = errors.New("insufficient candidate names")

	// ErrInsufficientQualityResults is returned when fewer than 2 products
	// survive quality filtering
	ErrInsufficientQualityResults = errors.New("insufficient valid alternatives")

	// ErrSeedUnavailable is returned when neither share text nor scraping
	// produced a seed; recovered locally via a placeholder, never surfaced
	ErrSeedUnavailable = errors.New("seed unavailable")

	// ErrRateLimited is returned when the generation service rejects a call
	// for quota/rate-limit reasons
	ErrRateLimited = errors.New("generation service rate limit exceeded")

	// ErrOverloaded is returned when the generation service is transiently
	// overloaded and the call may be retried after a delay
	ErrOverloaded = errors.New("generation service overloaded")

	// ErrSafetyBlocked is returned when the generation service blocked the
	// completion on safety grounds
	ErrSafetyBlocked = errors.New("generation blocked by safety filter")

	// ErrEmptyGeneration is returned when a completion carries no text
	ErrEmptyGeneration = errors.New("empty generation result")

	// ErrSearchTimeout is returned when a marketplace lookup exceeds its
	// per-task timeout
	ErrSearchTimeout = errors.New("marketplace search timed out")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache service is unavailable;
	// recovered silently, never surfaced
	ErrCacheUnavailable = errors.New("cache service unavailable")
)

// PipelineError reports a fatal pipeline failure with the step that failed
// and the underlying cause. The HTTP layer maps it to a service-unavailable
// response so clients can retry through an alternate path.
type PipelineError struct {
	Step string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("recommendation pipeline failed at %s: %v", e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps a fatal cause with the step it occurred at.
func NewPipelineError(step string, err error) *PipelineError {
	return &PipelineError{Step: step, Err: err}
}
