package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mailidpwd/similarlinks/internal/domain"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second

	minCandidateNames = 3
	maxCandidateNames = 6

	promptTitleLimit = 60
)

// GeneratorConfig holds configuration for the candidate name generator
type GeneratorConfig struct {
	MaxAttempts        int
	BaseDelay          time.Duration
	EnableDebugLogging bool
}

// CandidateSet is the generator's output: a resolved category and 3-6
// candidate product names in generation order.
type CandidateSet struct {
	Category       string
	CandidateNames []string
}

// NameGenerator drives the text-generation call that proposes alternative
// product names: prompt construction, retry/backoff, credential rotation on
// quota exhaustion, and repair of malformed output.
type NameGenerator struct {
	client      domain.GenerationClient
	maxAttempts int
	baseDelay   time.Duration
	debug       bool

	// sleep is swappable in tests so backoff behavior can be asserted
	// without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewNameGenerator creates a generator with the given configuration.
func NewNameGenerator(client domain.GenerationClient, config GeneratorConfig) *NameGenerator {
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	delay := config.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}

	return &NameGenerator{
		client:      client,
		maxAttempts: attempts,
		baseDelay:   delay,
		debug:       config.EnableDebugLogging,
		sleep:       sleepContext,
	}
}

// Generate returns 3-6 candidate names plus the resolved category for a seed.
// The credential cursor is request-scoped: each run starts at credential 0
// and advances only on quota errors, so concurrent runs never interleave
// credential switches.
func (g *NameGenerator) Generate(ctx context.Context, seed *domain.RecommendationSeed) (*CandidateSet, error) {
	if seed == nil || seed.Title == "" {
		return nil, domain.ErrInvalidRequest
	}

	category := seed.Category
	if category == "" {
		category = DetectCategory(seed.Title)
	}
	prompt := buildNamePrompt(seed.Title, category)

	completion, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	if completion.StopReason == domain.StopSafety {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, domain.ErrSafetyBlocked)
	}
	if completion.StopReason == domain.StopMaxTokens && g.debug {
		log.Printf("[GENERATE] Completion hit the output-length ceiling, extracting partial text")
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: %v (stop reason: %s)", domain.ErrGenerationFailed, domain.ErrEmptyGeneration, completion.StopReason)
	}

	parsed, err := RepairParse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: could not extract structured result: %v", domain.ErrGenerationFailed, err)
	}

	names := readNameList(parsed)
	names = backfillNames(names, category)

	if g.debug {
		log.Printf("[GENERATE] %d candidate names for category %q: %v", len(names), category, names)
	}

	return &CandidateSet{Category: category, CandidateNames: names}, nil
}

// callWithRetry runs the invocation protocol: up to maxAttempts calls,
// advancing the credential on quota errors without delay, backing off
// exponentially on overload, failing fast on anything else.
func (g *NameGenerator) callWithRetry(ctx context.Context, prompt string) (*domain.Completion, error) {
	credential := 0
	var lastErr error

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if g.debug {
			log.Printf("[GENERATE] Attempt %d/%d with credential %d/%d",
				attempt+1, g.maxAttempts, credential+1, g.client.CredentialCount())
		}

		completion, err := g.client.Generate(ctx, prompt, credential)
		if err == nil {
			return completion, nil
		}
		lastErr = err

		switch {
		case errors.Is(err, domain.ErrRateLimited):
			if credential < g.client.CredentialCount()-1 {
				credential++
				if g.debug {
					log.Printf("[GENERATE] Quota exhausted, switching to credential %d/%d",
						credential+1, g.client.CredentialCount())
				}
				// Retry immediately with the next credential, no delay.
				continue
			}
			return nil, fmt.Errorf("all credentials exhausted: %w", err)

		case errors.Is(err, domain.ErrOverloaded):
			if attempt == g.maxAttempts-1 {
				return nil, fmt.Errorf("max attempts reached: %w", err)
			}
			delay := g.baseDelay * (1 << attempt)
			if g.debug {
				log.Printf("[GENERATE] Service overloaded, retrying in %s", delay)
			}
			if err := g.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			return nil, err
		}
	}

	return nil, fmt.Errorf("max attempts reached: %w", lastErr)
}

// buildNamePrompt embeds the category and a truncated product title and asks
// for 5-6 real, purchasable, same-category names as a single JSON object.
func buildNamePrompt(title, category string) string {
	short := title
	if len(short) > promptTitleLimit {
		short = short[:promptTitleLimit]
	}

	return fmt.Sprintf(`Product: %s
Category: %s

Find 5 to 6 REAL EXISTING %ss that are similar alternatives (minimum 5, maximum 6).

IMPORTANT RULES:
1. MUST be actual %s products (NOT books, NOT documents, NOT other categories)
2. Use REAL brand names and model numbers that exist on Amazon/Flipkart
3. Must be available for purchase in India
4. Must be in the SAME category as the input product
5. Include brand name + model number in each name

JSON output (5-6 real product names):
{"product_names":["Brand1 Model1","Brand2 Model2","Brand3 Model3","Brand4 Model4","Brand5 Model5","Brand6 Model6"]}`,
		short, category, category, category)
}

// readNameList pulls the product_names array out of the parsed object,
// dropping empty entries.
func readNameList(parsed map[string]json.RawMessage) []string {
	raw, ok := parsed["product_names"]
	if !ok {
		return nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil
	}

	kept := names[:0]
	for _, name := range names {
		if strings.TrimSpace(name) != "" {
			kept = append(kept, strings.TrimSpace(name))
		}
	}
	return kept
}

// backfillNames pads the list with placeholder names until at least 3 exist
// and truncates to at most 6.
func backfillNames(names []string, category string) []string {
	for len(names) < minCandidateNames {
		names = append(names, fmt.Sprintf("Alternative %s %d", category, len(names)+1))
	}
	if len(names) > maxCandidateNames {
		names = names[:maxCandidateNames]
	}
	return names
}

// sleepContext waits for the duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
