package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/config"
	"github.com/ikarus-cloud/furnish/internal/db"
	dbRedis "github.com/ikarus-cloud/furnish/internal/db/redis"
	"github.com/ikarus-cloud/furnish/internal/domain"
	logpkg "github.com/ikarus-cloud/furnish/internal/logger"
	"github.com/ikarus-cloud/furnish/internal/metrics"
	"github.com/ikarus-cloud/furnish/internal/repository/embcache"
	"github.com/ikarus-cloud/furnish/internal/repository/products"
	chiTransport "github.com/ikarus-cloud/furnish/internal/transport/chi"
	"github.com/ikarus-cloud/furnish/internal/transport/hfspace"
	"github.com/ikarus-cloud/furnish/internal/transport/openrouter"
	"github.com/ikarus-cloud/furnish/internal/transport/pinecone"
	embeddinguc "github.com/ikarus-cloud/furnish/internal/usecase/embedding"
	healthuc "github.com/ikarus-cloud/furnish/internal/usecase/health"
	itemuc "github.com/ikarus-cloud/furnish/internal/usecase/item"
	searchuc "github.com/ikarus-cloud/furnish/internal/usecase/search"
	"github.com/ikarus-cloud/furnish/internal/version"
)

func main() {
	// Load .env if present (local dev convenience; production uses real env).
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting furnish API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("pinecone_index", cfg.Pinecone.Index),
	)

	ctx := context.Background()

	// Product catalog
	catalog, err := products.New(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal("Failed to connect to catalog database", zap.Error(err))
	}
	defer catalog.Close()

	readyCtx, cancelReady := context.WithTimeout(ctx,
		time.Duration(cfg.Database.ReadinessTimeout)*time.Second)
	if err := catalog.Ping(readyCtx); err != nil {
		cancelReady()
		logger.Fatal("Catalog database not ready", zap.Error(err))
	}
	cancelReady()
	if err := catalog.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure catalog schema", zap.Error(err))
	}
	logger.Info("Connected to catalog database")

	// Optional embedding cache
	var cache db.Store
	if len(cfg.Cache.Addrs) > 0 {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	metrics.RegisterProviderMetrics()

	embedder, embedderHealth := buildEmbedder(cfg, cache, logger)

	// Vector index
	index := pinecone.New(&pinecone.Config{
		APIKey:  cfg.Pinecone.APIKey,
		Index:   cfg.Pinecone.Index,
		Region:  cfg.Pinecone.Region,
		Host:    cfg.Pinecone.Host,
		Timeout: time.Duration(cfg.Pinecone.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	verifyIndexDimensions(ctx, index, cfg.Embedding.Dimensions, logger)

	// Blurb generation
	blurbs := openrouter.NewBlurbWriter(&openrouter.BlurbConfig{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		Logger:      logger,
	})

	// Use case services
	searchSvc := searchuc.New(embedder, index, catalog, cfg.Embedding.Dimensions, logger)
	itemSvc := itemuc.New(catalog, blurbs, logger)
	healthSvc := healthuc.New(catalog, index, embedderHealth)

	server := chiTransport.NewServer(searchSvc, itemSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware())
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: provider -> cached ->
// instrumented. The second return is the base provider's health check,
// which the decorators do not carry.
func buildEmbedder(cfg config.Config, cache db.Store, logger *zap.Logger) (domain.Embedder, healthuc.EmbeddingChecker) {
	var base domain.Embedder
	var check healthuc.EmbeddingChecker
	var model string

	switch cfg.Embedding.Provider {
	case config.ProviderHFSpace:
		model = cfg.Embedding.Space
		provider := hfspace.NewEmbedder(&hfspace.Config{
			Space:   cfg.Embedding.Space,
			Token:   cfg.Embedding.HFToken,
			Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		base, check = provider, provider
	default:
		model = cfg.Embedding.Model
		provider := openrouter.NewEmbedder(&openrouter.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:     logger,
		})
		base, check = provider, provider
	}

	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, model, logger), check
}

// verifyIndexDimensions compares the configured embedding dimensionality with
// what the index reports. A mismatch is a deployment defect worth failing
// loudly over at startup instead of on the first search.
func verifyIndexDimensions(ctx context.Context, index *pinecone.Client, want int, logger *zap.Logger) {
	statsCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats, err := index.DescribeIndexStats(statsCtx)
	if err != nil {
		// The index may simply not be reachable yet; readiness will keep checking.
		logger.Warn("Could not verify index dimensions at startup", zap.Error(err))
		return
	}
	if want > 0 && stats.Dimension > 0 && stats.Dimension != want {
		logger.Fatal("Index dimension does not match embedding configuration",
			zap.Int("index_dimension", stats.Dimension),
			zap.Int("configured_dimension", want),
		)
	}
	logger.Info("Vector index verified",
		zap.Int("dimension", stats.Dimension),
		zap.Int("vector_count", stats.TotalVectorCount),
	)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
