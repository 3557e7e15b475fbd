package usecase

import (
	"fmt"
	"log"
	"strings"

	"github.com/mailidpwd/similarlinks/internal/domain"
)

const (
	minQualityScore    = 2
	minAcceptedResults = 2
	preferredResults   = 3
	maxQualityScore    = 4
)

// FilterResult is the quality filter's output.
type FilterResult struct {
	Accepted      []domain.Product
	RejectedCount int
	Warnings      []string
}

// QualityFilter scores each normalized product and discards those below
// threshold, producing user-facing warnings about what was dropped.
type QualityFilter struct {
	debug bool
}

// NewQualityFilter creates a quality filter.
func NewQualityFilter(debug bool) *QualityFilter {
	return &QualityFilter{debug: debug}
}

// QualityScore computes the 0-4 heuristic for one product:
// +1 real price, +1 non-generic title, +1 direct product link, +1 image.
func QualityScore(p domain.Product) int {
	score := 0
	if p.PriceRaw > 0 {
		score++
	}
	if !strings.Contains(strings.ToLower(p.Title), "generic") {
		score++
	}
	if domain.IsDirectProductURL(p.SourceURL) {
		score++
	}
	if p.ImageURL != "" {
		score++
	}
	return score
}

// Filter accepts products scoring >= 2, preserving input order. Fewer than 2
// accepted products is a terminal pipeline failure, not a partial result.
func (f *QualityFilter) Filter(products []domain.Product) (*FilterResult, error) {
	var accepted []domain.Product
	rejected := 0

	for _, p := range products {
		score := QualityScore(p)
		if score >= minQualityScore {
			accepted = append(accepted, p)
			if f.debug && score < preferredResults {
				log.Printf("[QUALITY] Kept with issues (score %d/%d): %q", score, maxQualityScore, truncate(p.Title, 50))
			}
			continue
		}
		rejected++
		if f.debug {
			log.Printf("[QUALITY] Filtered out (score %d/%d): %q", score, maxQualityScore, truncate(p.Title, 50))
		}
	}

	if len(accepted) < minAcceptedResults {
		return nil, fmt.Errorf("%w: %d valid of %d candidates (%d filtered out)",
			domain.ErrInsufficientQualityResults, len(accepted), len(products), rejected)
	}

	var warnings []string
	if len(accepted) < preferredResults {
		warnings = append(warnings, fmt.Sprintf("Only %d alternatives found", len(accepted)))
	}
	if rejected > 0 {
		warnings = append(warnings, fmt.Sprintf("Filtered out %d low-quality results", rejected))
	}

	return &FilterResult{Accepted: accepted, RejectedCount: rejected, Warnings: warnings}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
