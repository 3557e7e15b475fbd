package domain

import "time"

// RecommendationSeed is the minimal description of the input product that the
// pipeline starts from. It is built from share text, a scraped product page,
// or a URL-derived placeholder, and lives for one pipeline run.
type RecommendationSeed struct {
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// RawSearchResult is one marketplace lookup result before normalization.
// Every field may be missing; the normalizer fills the gaps.
type RawSearchResult struct {
	Title       string   `json:"title"`
	PriceText   string   `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Rating      *float64 `json:"rating,omitempty"`
	RatingCount *int     `json:"ratingCount,omitempty"`
	Specs       []string `json:"specs"`
	SourceURL   string   `json:"url"`
}

// Product is the canonical alternative-product record returned to clients.
// PriceRaw is in minor currency units (paise); SourceURL is never empty.
type Product struct {
	ID             string      `json:"id"`
	Brand          string      `json:"brand"`
	Model          string      `json:"model"`
	Title          string      `json:"title"`
	ImageURL       string      `json:"imageUrl"`
	PriceEstimate  string      `json:"priceEstimate"`
	PriceRaw       int         `json:"priceRaw"`
	RatingEstimate *float64    `json:"ratingEstimate,omitempty"`
	RatingCount    *int        `json:"ratingCountEstimate,omitempty"`
	Specs          []string    `json:"specs"`
	WhyPick        string      `json:"whyPick"`
	Tradeoffs      string      `json:"tradeoffs"`
	SourceURL      string      `json:"sourceUrl"`
	SourceSite     Marketplace `json:"sourceSite"`
}

// RecommendationResult is the immutable output of one pipeline run.
type RecommendationResult struct {
	SourceSite   Marketplace `json:"source"`
	CanonicalURL string      `json:"canonicalUrl"`
	GeneratedAt  time.Time   `json:"generatedAt"`
	Alternatives []Product   `json:"alternatives"`
	Warnings     []string    `json:"warnings"`
}

// RecommendRequest is the library-level input to the pipeline.
type RecommendRequest struct {
	URL       string
	Device    string
	ShareText string
	Refresh   bool
}

// UsageEvent records one generation-service call for auditing.
type UsageEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Model           string    `json:"model"`
	Endpoint        string    `json:"endpoint"`
	PromptLength    int       `json:"promptLength"`
	TokensEstimated int       `json:"tokensEstimated"`
	DurationMs      int64     `json:"durationMs"`
	Success         bool      `json:"success"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
