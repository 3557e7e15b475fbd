package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mailidpwd/similarlinks/internal/domain"
)

const maxSpecsPerProduct = 8

// Package-level compiled spec-extraction patterns. Each pattern contributes
// its first match; results are de-duplicated and case preserved as written.
var specPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:GB|TB)\s+(?:RAM|Storage|SSD|HDD))`),
	regexp.MustCompile(`(?i)(Core\s+i\d+[-\w]+|Ryzen\s+\d+)`),
	regexp.MustCompile(`(?i)(\d+(?:\.?\d+)?"\s*(?:FHD|HD|Display)?)`),
	regexp.MustCompile(`(?i)(\d+(?:mAh|WHR)\s+Battery)`),
}

var nonPriceCharsRegex = regexp.MustCompile(`[^\d.]`)

// Normalizer converts one (candidate name, lookup outcome) pair into exactly
// one canonical Product. It never fails: timeout, error and empty outcomes
// all yield a usable fallback record so scoring can proceed.
type Normalizer struct {
	marketplace domain.Marketplace
	category    string
}

// NewNormalizer creates a normalizer bound to one pipeline run's marketplace
// and resolved category.
func NewNormalizer(marketplace domain.Marketplace, category string) *Normalizer {
	return &Normalizer{marketplace: marketplace, category: category}
}

// Normalize builds the Product for the idx-th candidate name.
func (n *Normalizer) Normalize(name string, outcome SearchOutcome, idx int) domain.Product {
	if outcome.Kind == OutcomeSuccess && outcome.Result != nil {
		return n.fromResult(name, outcome.Result, idx)
	}
	return n.fallback(name, idx)
}

// fromResult builds a Product from real lookup data.
func (n *Normalizer) fromResult(name string, result *domain.RawSearchResult, idx int) domain.Product {
	title := result.Title
	if title == "" {
		title = name
	}

	sourceURL := result.SourceURL
	if !domain.IsDirectProductURL(sourceURL) {
		// Search-results or empty URL from the lookup; replace it with a
		// constructed marketplace search so the link is never dead.
		sourceURL = n.marketplace.SearchURL(name)
	}

	specs := dedupeSpecs(result.Specs)
	if len(specs) == 0 {
		specs = ExtractSpecs(title)
	}
	if len(specs) > maxSpecsPerProduct {
		specs = specs[:maxSpecsPerProduct]
	}

	priceText := result.PriceText
	if priceText == "" {
		priceText = "₹0"
	}

	return domain.Product{
		ID:             strconv.Itoa(idx + 1),
		Brand:          firstToken(title),
		Model:          name,
		Title:          title,
		ImageURL:       result.ImageURL,
		PriceEstimate:  priceText,
		PriceRaw:       parsePriceMinorUnits(result.PriceText),
		RatingEstimate: result.Rating,
		RatingCount:    result.RatingCount,
		Specs:          specs,
		WhyPick:        fmt.Sprintf("Found via search: %s", name),
		Tradeoffs:      "",
		SourceURL:      sourceURL,
		SourceSite:     n.marketplace,
	}
}

// fallback builds the limited-data Product used for timeout, error and
// no-result outcomes alike.
func (n *Normalizer) fallback(name string, idx int) domain.Product {
	return domain.Product{
		ID:            strconv.Itoa(idx + 1),
		Brand:         firstToken(name),
		Model:         name,
		Title:         name,
		ImageURL:      "",
		PriceEstimate: "₹0",
		PriceRaw:      0,
		Specs:         ExtractSpecs(name),
		WhyPick:       fmt.Sprintf("Similar %s alternative (limited data available)", n.category),
		Tradeoffs:     "Could not verify all details - check product page",
		SourceURL:     n.marketplace.SearchURL(name),
		SourceSite:    n.marketplace,
	}
}

// ExtractSpecs pulls specification snippets out of free text via the fixed
// pattern set: memory/storage size, processor family, screen size, battery
// capacity. First match per pattern, de-duplicated, order of the pattern
// list preserved.
func ExtractSpecs(text string) []string {
	var specs []string
	seen := make(map[string]bool)

	for _, pattern := range specPatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		match = strings.TrimSpace(match)
		if !seen[match] {
			specs = append(specs, match)
			seen[match] = true
		}
	}
	return specs
}

// parsePriceMinorUnits strips non-numeric characters from a display price
// and scales to minor currency units (paise). Unparsable prices yield 0.
func parsePriceMinorUnits(priceText string) int {
	cleaned := nonPriceCharsRegex.ReplaceAllString(priceText, "")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0
	}
	return int(value * 100)
}

// firstToken returns the first whitespace-delimited token, or "Unknown".
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "Unknown"
	}
	return fields[0]
}

// dedupeSpecs removes duplicate entries preserving first-seen order.
func dedupeSpecs(specs []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" || seen[spec] {
			continue
		}
		out = append(out, spec)
		seen[spec] = true
	}
	return out
}
