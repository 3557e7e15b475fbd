package domain

import (
	"context"
	"time"
)

// StopReason classifies why a generation completion stopped.
type StopReason string

const (
	StopNormal    StopReason = "STOP"
	StopMaxTokens StopReason = "MAX_TOKENS"
	StopSafety    StopReason = "SAFETY"
	StopOther     StopReason = "OTHER"
)

// Completion is the raw outcome of one generation call.
type Completion struct {
	StopReason StopReason
	Text       string
}

// CacheRepository defines the interface for caching recommendation results
type CacheRepository interface {
	Get(ctx context.Context, key string) (*RecommendationResult, error)
	Set(ctx context.Context, key string, value *RecommendationResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GenerationClient defines the interface for the external text-generation
// service. Credential selects one of the interchangeable API credentials;
// implementations classify failures as ErrRateLimited, ErrOverloaded or
// other errors.
type GenerationClient interface {
	Generate(ctx context.Context, prompt string, credential int) (*Completion, error)
	CredentialCount() int
	Model() string
}

// SearchClient defines the interface for marketplace product lookups.
// A nil result with nil error means the search returned nothing.
type SearchClient interface {
	Search(ctx context.Context, name string, marketplace Marketplace) (*RawSearchResult, error)
}

// SeedSource defines the interface for resolving the input product page
// into a seed description.
type SeedSource interface {
	Scrape(ctx context.Context, url string) (*RecommendationSeed, error)
}

// UsageRepository persists generation-service usage events. Callers treat
// it as fire-and-forget: failures are logged, never propagated.
type UsageRepository interface {
	Record(ctx context.Context, event *UsageEvent) error
}
