package domain

import (
	"net/url"
	"strings"
)

// Marketplace identifies which e-commerce site a URL or product belongs to.
type Marketplace string

const (
	MarketplaceAmazon   Marketplace = "amazon"
	MarketplaceFlipkart Marketplace = "flipkart"
	MarketplaceOther    Marketplace = "other"
)

// DetectMarketplace classifies a product URL by its host/content.
func DetectMarketplace(rawURL string) Marketplace {
	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, "amazon") || strings.Contains(lower, "amzn") {
		return MarketplaceAmazon
	}
	if strings.Contains(lower, "flipkart") {
		return MarketplaceFlipkart
	}
	return MarketplaceOther
}

// SearchURL builds a search-results URL for the given query on this
// marketplace. Unknown marketplaces fall back to Amazon, matching the
// behavior of the origin system.
func (m Marketplace) SearchURL(query string) string {
	escaped := strings.ReplaceAll(strings.TrimSpace(query), " ", "+")
	if m == MarketplaceFlipkart {
		return "https://www.flipkart.com/search?q=" + escaped
	}
	return "https://www.amazon.in/s?k=" + escaped
}

// IsDirectProductURL reports whether a URL points at a specific product page
// rather than a search-results page. This is the single predicate shared by
// the normalizer and the quality filter so the two cannot drift apart.
func IsDirectProductURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	if strings.Contains(rawURL, "/s?k=") || strings.Contains(rawURL, "/search?") {
		return false
	}
	return strings.Contains(rawURL, "/dp/") || strings.Contains(rawURL, "/p/")
}

// ProductNameFromURL extracts a human-readable product name from a
// marketplace URL slug. Both Amazon and Flipkart put the slug in the path
// segment before the product-id marker (/dp/ and /p/ respectively). Returns
// "" when the path carries no usable slug.
func ProductNameFromURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(parsed.Path, "/")
	var slug string
	for i, part := range parts {
		if (part == "dp" || part == "p") && i > 0 {
			slug = parts[i-1]
			break
		}
	}

	if len(slug) <= 10 {
		return ""
	}
	name := strings.ReplaceAll(slug, "-", " ")
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
