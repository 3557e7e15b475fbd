package usecase

import "strings"

// Category detection is an ordered rule list evaluated against the lowered
// seed title; the first matching rule wins. Accessory and furniture rules
// come before primary-device rules so a "laptop backpack" is never
// classified as a "laptop".

// categoryRule matches when the title contains any keyword from each
// non-empty keyword group and none from noneOf.
type categoryRule struct {
	category string
	anyOf    []string
	alsoOf   []string
	noneOf   []string
}

var categoryRules = []categoryRule{
	// Accessories and furniture first.
	{
		category: "laptop table/desk",
		anyOf:    []string{"table", "desk", "stand table", "workstation"},
		alsoOf:   []string{"laptop", "adjustable", "height", "foldable", "portable"},
	},
	{
		category: "laptop backpack",
		anyOf:    []string{"backpack", "bag pack", "rucksack"},
		alsoOf:   []string{"laptop", "notebook", "macbook", "15", "16", "17"},
	},
	{
		category: "laptop accessory",
		anyOf:    []string{"case", "cover", "sleeve", "bag", "pouch", "holder"},
		alsoOf:   []string{"laptop", "notebook", "macbook"},
	},
	{
		category: "phone accessory",
		anyOf:    []string{"case", "cover", "sleeve", "pouch", "holder", "protector"},
		alsoOf:   []string{"phone", "mobile", "iphone", "smartphone"},
	},
	{
		category: "charger/cable",
		anyOf:    []string{"charger", "adapter", "cable", "charging"},
	},
	{
		category: "stand/mount",
		anyOf:    []string{"stand", "mount", "holder"},
		noneOf:   []string{"tv", "monitor"},
	},

	// Primary device categories only after accessories have been ruled out.
	{category: "laptop", anyOf: []string{"laptop", "notebook", "chromebook", "macbook"}},
	{category: "keyboard", anyOf: []string{"keyboard", "mechanical keyboard", "gaming keyboard"}},
	{category: "mouse", anyOf: []string{"mouse", "gaming mouse", "wireless mouse"}},
	{category: "smartphone", anyOf: []string{"phone", "smartphone", "mobile", "iphone"}},
	{category: "tablet", anyOf: []string{"tablet", "ipad"}},
	{category: "speaker", anyOf: []string{"speaker", "soundbar"}},
	{category: "earbuds", anyOf: []string{"earbuds", "headphones", "earphones", "airpods"}},
	{category: "smartwatch", anyOf: []string{"watch", "smartwatch"}},
	{category: "monitor", anyOf: []string{"monitor", "display", "screen"}},
}

const defaultCategory = "product"

// DetectCategory resolves the product category for a seed title.
func DetectCategory(title string) string {
	lower := strings.ToLower(title)
	for _, rule := range categoryRules {
		if rule.matches(lower) {
			return rule.category
		}
	}
	return defaultCategory
}

func (r categoryRule) matches(lowerTitle string) bool {
	if !containsAny(lowerTitle, r.anyOf) {
		return false
	}
	if len(r.alsoOf) > 0 && !containsAny(lowerTitle, r.alsoOf) {
		return false
	}
	if containsAny(lowerTitle, r.noneOf) {
		return false
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// GuessCategoryFromURL makes a best-guess category from URL keywords for the
// placeholder seed path, when no title could be scraped.
func GuessCategoryFromURL(rawURL string) string {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "laptop") || strings.Contains(lower, "notebook"):
		return "laptop"
	case strings.Contains(lower, "phone") || strings.Contains(lower, "mobile"):
		return "smartphone"
	default:
		return defaultCategory
	}
}
