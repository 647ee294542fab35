package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/consilium/internal/agent"
	"github.com/Harshitk-cp/consilium/internal/api/handlers"
	mw "github.com/Harshitk-cp/consilium/internal/api/middleware"
	"github.com/Harshitk-cp/consilium/internal/buildconfig"
	"github.com/Harshitk-cp/consilium/internal/config"
	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/Harshitk-cp/consilium/internal/embedding"
	"github.com/Harshitk-cp/consilium/internal/llm"
	"github.com/Harshitk-cp/consilium/internal/service"
	"github.com/Harshitk-cp/consilium/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router  *chi.Mux
	Expirer *service.ExpirerService

	cache        *service.CacheService
	registry     domain.AgentRegistry
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	cacheStore := store.NewCacheStore(db, config.CacheMetric())

	// External clients via provider factory. A failed init leaves the
	// client nil; every service degrades around a nil client rather
	// than failing the query.
	var embeddingClient domain.EmbeddingClient
	var llmClient domain.LLMClient

	llmProvider := config.LLMProvider()
	llmAPIKey := config.LLMAPIKey()
	embeddingProvider := config.EmbeddingProvider()
	embeddingAPIKey := config.EmbeddingAPIKey()

	var err error
	llmClient, err = llm.NewClient(llmProvider, llmAPIKey)
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	embeddingClient, err = embedding.NewClient(embeddingProvider, embeddingAPIKey)
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("Embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Research agents. A bad provider leaves the registry empty, which
	// surfaces on /health and fails every subtask with a clear reason.
	agentProvider := config.AgentProvider()
	agents, err := agent.NewPool(agentProvider,
		config.WebAgentURL(), config.AcademicAgentURL(), config.MediaAgentURL(),
		config.AgentTimeout())
	if err != nil {
		logger.Warn("agent pool initialization failed", zap.String("provider", agentProvider), zap.Error(err))
	} else {
		logger.Info("agent pool initialized",
			zap.String("provider", agentProvider),
			zap.Int("agents", len(agents)))
	}
	registry := agent.NewRegistry(agents...)

	// Services
	cacheSvc := service.NewCacheService(cacheStore, embeddingClient,
		config.CacheSimilarityThreshold(), config.CacheTTL(), logger)

	validationSvc := service.NewValidationService(embeddingClient, llmClient, logger)
	validationSvc.TopicThreshold = config.TopicSimilarityThreshold()
	validationSvc.AgentPriority = agentPriorityFromConfig(config.AgentPriority())

	decomposer := service.NewDecomposer(llmClient, logger)

	orchestratorSvc := service.NewOrchestratorService(registry, cacheSvc, validationSvc, decomposer, llmClient, logger)
	orchestratorSvc.QueryTimeout = config.QueryTimeout()
	orchestratorSvc.MaxConcurrentSubtasks = config.MaxConcurrentSubtasks()

	expirerSvc := service.NewExpirerService(cacheStore, logger)
	expirerSvc.SetInterval(config.CacheExpiryInterval())

	// Handlers
	researchHandler := handlers.NewResearchHandler(orchestratorSvc, registry)

	r := chi.NewRouter()

	// Initialize app with metrics tracking
	app := &App{
		Router:    r,
		Expirer:   expirerSvc,
		cache:     cacheSvc,
		registry:  registry,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(metricsCollector.Middleware)                                  // Collect metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	// Health (no auth)
	r.Get("/health", healthHandler(db, registry))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/research", func(r chi.Router) {
			r.Post("/", researchHandler.Run)
			r.Get("/capabilities", researchHandler.Capabilities)
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool, registry domain.AgentRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":       "ok",
			"capabilities": registry.Capabilities(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		cacheStats := app.cache.Stats()

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"cache": map[string]any{
				"hits":     cacheStats.Hits,
				"misses":   cacheStats.Misses,
				"degraded": cacheStats.Degraded,
			},
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// agentPriorityFromConfig converts the flat config map to capability keys,
// dropping entries that name no known capability.
func agentPriorityFromConfig(raw map[string]int) map[domain.Capability]int {
	priorities := make(map[domain.Capability]int, len(raw))
	for name, p := range raw {
		if domain.ValidCapability(name) {
			priorities[domain.Capability(name)] = p
		}
	}
	return priorities
}

// Ensure stores, clients and agents satisfy interfaces at compile time.
var (
	_ domain.CacheStore      = (*store.CacheStore)(nil)
	_ domain.AgentRegistry   = (*agent.Registry)(nil)
	_ domain.Agent           = (*agent.HTTPAgent)(nil)
	_ domain.Agent           = (*agent.MockAgent)(nil)
	_ domain.EmbeddingClient = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient = (*embedding.MockClient)(nil)
	_ domain.LLMClient       = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient       = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient       = (*llm.GeminiClient)(nil)
	_ domain.LLMClient       = (*llm.CerebrasClient)(nil)
	_ domain.LLMClient       = (*llm.MockClient)(nil)
)
