package usecase

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/mailidpwd/similarlinks/internal/domain"
)

const (
	defaultCacheTTL      = 24 * time.Hour
	defaultScrapeTimeout = 20 * time.Second

	// Side-effect writes get their own budget detached from the request.
	sideEffectTimeout = 10 * time.Second

	minShareTextLength = 20
)

var asinRegex = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

// Share text from the marketplace mobile apps prefixes the product
// description with deal wording; strip it before using the rest as a title.
var shareTextPrefixes = []string{
	"Limited-time deal:",
	"Deal of the Day:",
	"Amazon Deal:",
	"Flipkart Deal:",
	"Deal:",
}

// RecommendationServiceConfig holds configuration for the pipeline
// orchestrator.
type RecommendationServiceConfig struct {
	CacheTTL           time.Duration
	ScrapeTimeout      time.Duration
	SearchTimeout      time.Duration
	Generator          GeneratorConfig
	EnableDebugLogging bool
}

// RecommendationService sequences the full pipeline: seed acquisition,
// candidate generation, search fan-out, normalization, quality filtering and
// the cache boundaries around it all.
type RecommendationService struct {
	cache     domain.CacheRepository
	seeds     domain.SeedSource
	genClient domain.GenerationClient
	generator *NameGenerator
	fanout    *SearchFanout
	filter    *QualityFilter
	usage     domain.UsageRepository

	cacheTTL      time.Duration
	scrapeTimeout time.Duration
	debug         bool
	now           func() time.Time
}

// NewRecommendationService wires the pipeline components together.
func NewRecommendationService(
	cache domain.CacheRepository,
	seeds domain.SeedSource,
	genClient domain.GenerationClient,
	searchClient domain.SearchClient,
	usage domain.UsageRepository,
	config RecommendationServiceConfig,
) *RecommendationService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}
	scrapeTimeout := config.ScrapeTimeout
	if scrapeTimeout == 0 {
		scrapeTimeout = defaultScrapeTimeout
	}

	return &RecommendationService{
		cache:         cache,
		seeds:         seeds,
		genClient:     genClient,
		generator:     NewNameGenerator(genClient, config.Generator),
		fanout:        NewSearchFanout(searchClient, config.SearchTimeout, config.EnableDebugLogging),
		filter:        NewQualityFilter(config.EnableDebugLogging),
		usage:         usage,
		cacheTTL:      cacheTTL,
		scrapeTimeout: scrapeTimeout,
		debug:         config.EnableDebugLogging,
		now:           time.Now,
	}
}

// Recommend turns a product URL into a ranked set of validated alternative
// products. Fatal failures come back as *domain.PipelineError; degraded
// collaborators (seed source, cache, usage log) never fail the run.
func (s *RecommendationService) Recommend(ctx context.Context, req *domain.RecommendRequest) (*domain.RecommendationResult, error) {
	if req == nil || req.URL == "" {
		return nil, domain.ErrInvalidRequest
	}

	marketplace := domain.DetectMarketplace(req.URL)
	key := cacheKey(req.URL)

	if !req.Refresh {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
			if s.debug {
				log.Printf("[RECOMMEND] Cache hit for %s", req.URL)
			}
			return cached, nil
		}
	}

	seed := s.resolveSeed(ctx, req)

	llmStart := s.now()
	candidates, err := s.generator.Generate(ctx, seed)
	s.recordUsage(seed.Title, llmStart, err)
	if err != nil {
		return nil, domain.NewPipelineError("candidate generation", err)
	}

	outcomes := s.fanout.Run(ctx, candidates.CandidateNames, marketplace)

	normalizer := NewNormalizer(marketplace, candidates.Category)
	products := make([]domain.Product, len(outcomes))
	for i, outcome := range outcomes {
		products[i] = normalizer.Normalize(candidates.CandidateNames[i], outcome, i)
	}

	filtered, err := s.filter.Filter(products)
	if err != nil {
		return nil, domain.NewPipelineError("quality filter", err)
	}

	result := &domain.RecommendationResult{
		SourceSite:   marketplace,
		CanonicalURL: req.URL,
		GeneratedAt:  s.now().UTC(),
		Alternatives: filtered.Accepted,
		Warnings:     filtered.Warnings,
	}

	// Best-effort cache write; a cache outage never turns a successful run
	// into a failed response.
	go s.writeCache(key, result)

	return result, nil
}

// resolveSeed acquires the input product description: share text when the
// caller supplied enough of it (instant), otherwise a scrape under a
// generous timeout, degrading to a URL-derived placeholder on failure.
func (s *RecommendationService) resolveSeed(ctx context.Context, req *domain.RecommendRequest) *domain.RecommendationSeed {
	if req.ShareText != "" {
		if title, ok := titleFromShareText(req.ShareText, req.URL); ok {
			if s.debug {
				log.Printf("[RECOMMEND] Seed from share text: %q", truncate(title, 80))
			}
			return &domain.RecommendationSeed{Title: title}
		}
	}

	scrapeCtx, cancel := context.WithTimeout(ctx, s.scrapeTimeout)
	defer cancel()

	seed, err := s.seeds.Scrape(scrapeCtx, req.URL)
	if err == nil && seed != nil && seed.Title != "" {
		if s.debug {
			log.Printf("[RECOMMEND] Seed from scrape: %q", truncate(seed.Title, 80))
		}
		return seed
	}

	if s.debug {
		log.Printf("[RECOMMEND] Scrape failed (%v), using URL-derived placeholder seed", err)
	}
	return placeholderSeed(req.URL)
}

// placeholderSeed builds a best-guess seed from the URL alone so the
// pipeline can proceed instead of aborting.
func placeholderSeed(rawURL string) *domain.RecommendationSeed {
	category := GuessCategoryFromURL(rawURL)

	if m := asinRegex.FindStringSubmatch(rawURL); m != nil {
		asin := m[1]
		switch category {
		case "laptop":
			return &domain.RecommendationSeed{Title: "Laptop Product " + asin, Category: category}
		case "smartphone":
			return &domain.RecommendationSeed{Title: "Smartphone Product " + asin, Category: category}
		default:
			return &domain.RecommendationSeed{Title: "Product " + asin, Category: category}
		}
	}

	if name := domain.ProductNameFromURL(rawURL); name != "" {
		return &domain.RecommendationSeed{Title: name, Category: category}
	}

	segments := strings.Split(strings.TrimRight(rawURL, "/"), "/")
	title := segments[len(segments)-1]
	if len(title) > 50 {
		title = title[:50]
	}
	return &domain.RecommendationSeed{Title: title, Category: category}
}

// titleFromShareText extracts the product description from marketplace share
// text. The URL and deal prefixes are stripped; anything shorter than 20
// characters is rejected as too thin to seed the pipeline.
func titleFromShareText(shareText, url string) (string, bool) {
	clean := strings.TrimSpace(strings.ReplaceAll(shareText, url, ""))

	for _, prefix := range shareTextPrefixes {
		if strings.HasPrefix(clean, prefix) {
			clean = strings.TrimSpace(clean[len(prefix):])
			break
		}
	}

	if len(clean) < minShareTextLength {
		return "", false
	}
	return clean, true
}

// writeCache persists the result with its own detached context. The outcome
// is observed only for diagnostics.
func (s *RecommendationService) writeCache(key string, result *domain.RecommendationResult) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		log.Printf("[RECOMMEND] Cache write failed: %v", err)
	}
}

// recordUsage logs the generation call to the usage repository,
// fire-and-forget.
func (s *RecommendationService) recordUsage(promptTitle string, start time.Time, genErr error) {
	if s.usage == nil {
		return
	}

	event := &domain.UsageEvent{
		Model:           s.genClient.Model(),
		Endpoint:        "/recommend",
		PromptLength:    len(promptTitle),
		TokensEstimated: len(promptTitle) / 4,
		DurationMs:      s.now().Sub(start).Milliseconds(),
		Success:         genErr == nil,
	}
	if genErr != nil {
		event.ErrorMessage = genErr.Error()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := s.usage.Record(ctx, event); err != nil {
			log.Printf("[RECOMMEND] Usage log write failed: %v", err)
		}
	}()
}

// cacheKey is a stable hash of the input URL.
func cacheKey(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}
