package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Generated text is supposed to contain a single JSON object, but it often
// arrives wrapped in a markdown fence and/or truncated mid-structure when the
// model hits its output-token ceiling. RepairParse recovers what it can.

var (
	// Opening fence with optional language tag. The closing fence may be
	// missing entirely on truncated output, so it is never required.
	codeFenceRegex    = regexp.MustCompile("```(?:json)?\\s*")
	trailingFenceRegex = regexp.MustCompile("```\\s*$")
)

const parseErrorPreviewLimit = 200

// RepairParse extracts a JSON object from noisy, possibly truncated generated
// text. Strategies are tried in order, stopping at the first success:
//  1. direct parse of the fence-stripped candidate
//  2. parse of the first balanced {...} substring
//  3. parse after appending the missing closing brackets
func RepairParse(text string) (map[string]json.RawMessage, error) {
	candidate := extractCandidate(text)

	var data map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &data); err == nil {
		return data, nil
	}

	if data := parseBalancedObject(candidate); data != nil {
		return data, nil
	}

	completed, firstErr := completeBrackets(candidate)
	if err := json.Unmarshal([]byte(completed), &data); err == nil {
		return data, nil
	}

	preview := text
	if len(preview) > parseErrorPreviewLimit {
		preview = preview[:parseErrorPreviewLimit]
	}
	return nil, fmt.Errorf("unparsable structured text: %v (input preview: %q)", firstErr, preview)
}

// extractCandidate strips a leading code fence, or falls back to everything
// from the first '{'.
func extractCandidate(text string) string {
	if loc := codeFenceRegex.FindStringIndex(text); loc != nil {
		candidate := text[loc[1]:]
		candidate = trailingFenceRegex.ReplaceAllString(candidate, "")
		return strings.TrimSpace(candidate)
	}

	if start := strings.Index(text, "{"); start >= 0 {
		return strings.TrimSpace(text[start:])
	}
	return strings.TrimSpace(text)
}

// parseBalancedObject scans from the first '{' tracking brace depth and
// attempts to parse the first substring that closes back to depth zero.
// Returns nil if no balanced object parses.
func parseBalancedObject(candidate string) map[string]json.RawMessage {
	start := strings.Index(candidate, "{")
	if start < 0 {
		return nil
	}

	depth := 0
	for i := start; i < len(candidate); i++ {
		switch candidate[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				var data map[string]json.RawMessage
				if err := json.Unmarshal([]byte(candidate[start:i+1]), &data); err == nil {
					return data
				}
				return nil
			}
		}
	}
	return nil
}

// completeBrackets appends the closing brackets a truncated object is
// missing. If the alternatives/candidates array was opened but never closed,
// a ']' goes in before the braces. Returns the completed text and the parse
// error of the raw candidate for diagnostics.
func completeBrackets(candidate string) (string, error) {
	var probe map[string]json.RawMessage
	firstErr := json.Unmarshal([]byte(candidate), &probe)

	missing := strings.Count(candidate, "{") - strings.Count(candidate, "}")
	if missing <= 0 {
		return candidate, firstErr
	}

	completed := candidate
	openArray := strings.Count(candidate, "[") > strings.Count(candidate, "]")
	if openArray && (strings.Contains(candidate, `"product_names"`) || strings.Contains(candidate, `"alternatives"`)) {
		completed += "]"
	}
	completed += strings.Repeat("}", missing)
	return completed, firstErr
}
