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
	"go.uber.org/zap"

	"github.com/scenedex/scenedex/internal/config"
	"github.com/scenedex/scenedex/internal/db"
	dbRedis "github.com/scenedex/scenedex/internal/db/redis"
	"github.com/scenedex/scenedex/internal/domain"
	"github.com/scenedex/scenedex/internal/domain/channel"
	domweights "github.com/scenedex/scenedex/internal/domain/weights"
	logpkg "github.com/scenedex/scenedex/internal/logger"
	"github.com/scenedex/scenedex/internal/metrics"
	channelrepo "github.com/scenedex/scenedex/internal/repository/channel"
	"github.com/scenedex/scenedex/internal/repository/embcache"
	personrepo "github.com/scenedex/scenedex/internal/repository/person"
	weightsrepo "github.com/scenedex/scenedex/internal/repository/weights"
	"github.com/scenedex/scenedex/internal/transport/httpapi"
	openaiEmb "github.com/scenedex/scenedex/internal/transport/openai"
	embeddinguc "github.com/scenedex/scenedex/internal/usecase/embedding"
	healthuc "github.com/scenedex/scenedex/internal/usecase/health"
	searchuc "github.com/scenedex/scenedex/internal/usecase/search"
	weightsuc "github.com/scenedex/scenedex/internal/usecase/weights"
	"github.com/scenedex/scenedex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting scenedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Build embedder chain — composition root
	// Take the first vectorizer config
	var vecCfg config.VectorizerConfig
	var provName string
	for _, vc := range cfg.Embedding.Vectorizers {
		vecCfg = vc
		provName = vc.Provider
		break
	}
	provCfg := cfg.Embedding.Providers[provName]

	cacheTTL := time.Duration(cfg.Storage.EmbeddingCacheTTLSec) * time.Second
	queryEmbedder := buildEmbedder(provName, provCfg, vecCfg, cacheTTL, store, logger)
	logger.Info("Query embedder created",
		zap.String("provider", provName),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
	)

	// System default weight model, also fixes fusion tie-break priority
	defaults, err := defaultWeights(cfg.Channels.Defaults)
	if err != nil {
		logger.Fatal("Invalid default channel weights", zap.Error(err))
	}

	// Repositories (domain-native, no adapters)
	weightsRepo := weightsrepo.New(store)
	personRepo := personrepo.New(store)
	retrievers := buildRetrievers(cfg.Channels.Defaults, store)

	// Use case services
	searchSvc := searchuc.New(retrievers, defaults, weightsRepo, personRepo, queryEmbedder, searchuc.Config{
		ChannelTimeout:     time.Duration(cfg.Channels.TimeoutMS) * time.Millisecond,
		ContentWeight:      cfg.Fusion.ContentWeight,
		PersonWeight:       cfg.Fusion.PersonWeight,
		PersonCandidateCap: cfg.Fusion.PersonCandidateCap,
	})
	weightsSvc := weightsuc.New(defaults, weightsRepo)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(queryEmbedder))

	server := httpapi.NewServer(searchSvc, weightsSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.BearerAuthMiddleware(cfg.Auth.APIKeys))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// defaultWeights builds the system weight model from configuration.
func defaultWeights(channels []config.ChannelConfig) (domweights.Model, error) {
	entries := make([]domweights.Entry, len(channels))
	for i, ch := range channels {
		entries[i] = domweights.NewEntry(channel.Key(ch.Key), ch.Weight, ch.Locked)
	}
	return domweights.New(entries)
}

// buildRetrievers creates one retriever per configured channel, plus the
// person identity retriever used by person-aware fusion.
func buildRetrievers(channels []config.ChannelConfig, store db.Store) []searchuc.Retriever {
	var out []searchuc.Retriever
	for _, ch := range channels {
		switch ch.Kind {
		case "text":
			out = append(out, channelrepo.NewLexical(store))
		default:
			out = append(out, channelrepo.NewVector(channel.Key(ch.Key), store))
		}
	}
	out = append(out, channelrepo.NewVector(channel.Person, store))
	return out
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	provName string,
	provCfg config.ProviderConfig,
	vecCfg config.VectorizerConfig,
	cacheTTL time.Duration,
	store db.Store,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   provName,
		Logger:     logger,
	})

	// Cached — keys are scoped to the model name
	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, vecCfg.Model, cacheTTL, metrics.EmbeddingCacheTotal, logger)
	}

	// Instrumented (logging + metrics)
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, provName, vecCfg.Model, logger)

	// Instruction prefix (outermost — cache key includes instruction)
	if vecCfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, vecCfg.QueryInstruction)
	}

	return embedder
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
