package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mailidpwd/similarlinks/config"
	httpDelivery "github.com/mailidpwd/similarlinks/internal/delivery/http"
	"github.com/mailidpwd/similarlinks/internal/domain"
	"github.com/mailidpwd/similarlinks/internal/infrastructure/cache"
	"github.com/mailidpwd/similarlinks/internal/infrastructure/gemini"
	"github.com/mailidpwd/similarlinks/internal/infrastructure/scraperapi"
	"github.com/mailidpwd/similarlinks/internal/infrastructure/usagelog"
	"github.com/mailidpwd/similarlinks/internal/usecase"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting similarlinks v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	debug := cfg.Server.Environment == "development"

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()

	geminiClient := gemini.NewClient(cfg.Gemini.APIKeys(), cfg.Gemini.BaseURL, cfg.Gemini.Model)
	scraperClient := scraperapi.NewClient(cfg.Scraper.APIKey, cfg.Scraper.BaseURL)
	if debug {
		geminiClient.SetDebug(true)
		scraperClient.SetDebug(true)
		log.Printf("Debug logging enabled for outbound clients")
	}

	log.Printf("Gemini configured: model=%s, credentials=%d", cfg.Gemini.Model, geminiClient.CredentialCount())

	var usageRepo domain.UsageRepository = usagelog.NewNoopRepository()
	if cfg.UsageLog.Enabled {
		db, err := gorm.Open(postgres.Open(cfg.UsageLog.DSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect usage log database: %v", err)
		}
		repo := usagelog.NewPostgresRepository(db)
		if err := repo.Migrate(); err != nil {
			log.Fatalf("Failed to migrate usage log schema: %v", err)
		}
		usageRepo = repo
		log.Printf("Usage logging enabled (Postgres)")
	}

	// Initialize usecase layer
	recommendationService := usecase.NewRecommendationService(
		memoryCache,
		scraperClient,
		geminiClient,
		scraperClient,
		usageRepo,
		usecase.RecommendationServiceConfig{
			CacheTTL:      cfg.Cache.TTL,
			ScrapeTimeout: cfg.Pipeline.ScrapeTimeout,
			SearchTimeout: cfg.Pipeline.SearchTimeout,
			Generator: usecase.GeneratorConfig{
				MaxAttempts:        cfg.Gemini.MaxAttempts,
				BaseDelay:          cfg.Gemini.BaseDelay,
				EnableDebugLogging: debug,
			},
			EnableDebugLogging: debug,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(recommendationService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
