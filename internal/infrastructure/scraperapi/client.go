package scraperapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/mailidpwd/similarlinks/internal/domain"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://api.scraperapi.com"

// Client talks to the ScraperAPI structured-data endpoints. It owns both
// collaborator roles the pipeline needs: marketplace search lookups and
// input-product scraping. HTML never crosses this boundary; the proxy
// returns parsed JSON records.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new ScraperAPI client
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// The hobby plan allows 10 concurrent requests; stay under it even when
	// several pipeline runs fan out at once.
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Client{
		httpClient: &http.Client{
			// No client-side timeout: each call runs under the caller's
			// per-task context deadline.
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug toggles request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// searchResponse mirrors the structured search endpoint output.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Name         string   `json:"name"`
	PriceString  string   `json:"price_string"`
	Price        float64  `json:"price"`
	Image        string   `json:"image"`
	URL          string   `json:"url"`
	Stars        *float64 `json:"stars,omitempty"`
	TotalReviews *int     `json:"total_reviews,omitempty"`
}

// productResponse mirrors the structured product endpoint output.
type productResponse struct {
	Name string `json:"name"`
}

// Search looks up a candidate name on the marketplace and returns the first
// result, or nil when the search found nothing. No retries here; the fan-out
// treats each call as a single shot under its own deadline.
func (c *Client) Search(ctx context.Context, name string, marketplace domain.Marketplace) (*domain.RawSearchResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/structured/%s/search", c.baseURL, structuredSite(marketplace))
	params := url.Values{}
	params.Add("api_key", c.apiKey)
	params.Add("query", name)
	params.Add("country_code", "in")

	body, err := c.doRequest(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if len(parsed.Results) == 0 {
		if c.debug {
			log.Printf("[SCRAPER] No results for %q on %s", name, marketplace)
		}
		return nil, nil
	}

	first := parsed.Results[0]
	priceText := first.PriceString
	if priceText == "" && first.Price > 0 {
		priceText = fmt.Sprintf("₹%.2f", first.Price)
	}

	return &domain.RawSearchResult{
		Title:       first.Name,
		PriceText:   priceText,
		ImageURL:    first.Image,
		Rating:      first.Stars,
		RatingCount: first.TotalReviews,
		SourceURL:   first.URL,
	}, nil
}

// Scrape fetches the input product page through the structured product
// endpoint and returns a seed with its title. The category is resolved
// downstream from the title.
func (c *Client) Scrape(ctx context.Context, productURL string) (*domain.RecommendationSeed, error) {
	marketplace := domain.DetectMarketplace(productURL)
	if marketplace == domain.MarketplaceOther {
		return nil, fmt.Errorf("%w: unsupported marketplace for %s", domain.ErrSeedUnavailable, productURL)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/structured/%s/product", c.baseURL, structuredSite(marketplace))
	params := url.Values{}
	params.Add("api_key", c.apiKey)
	params.Add("url", productURL)
	params.Add("country_code", "in")

	body, err := c.doRequest(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	if parsed.Name == "" {
		return nil, fmt.Errorf("%w: product page had no title", domain.ErrSeedUnavailable)
	}

	if c.debug {
		log.Printf("[SCRAPER] Scraped title: %q", parsed.Name)
	}
	return &domain.RecommendationSeed{Title: parsed.Name}, nil
}

// doRequest executes a GET and returns the body on 200.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "similarlinks/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if c.debug {
		log.Printf("[SCRAPER] GET status %d in %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper API error: status %d", resp.StatusCode)
	}
	return body, nil
}

// structuredSite maps a marketplace to its structured-endpoint path segment.
// Unknown marketplaces search Amazon, matching the origin behavior.
func structuredSite(m domain.Marketplace) string {
	if m == domain.MarketplaceFlipkart {
		return "flipkart"
	}
	return "amazon"
}
