package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/teamaeris/opendata-api/internal/config"
	dbElastic "github.com/teamaeris/opendata-api/internal/db/elastic"
	dbMilvus "github.com/teamaeris/opendata-api/internal/db/milvus"
	"github.com/teamaeris/opendata-api/internal/db/mongodb"
	dbRedis "github.com/teamaeris/opendata-api/internal/db/redis"
	"github.com/teamaeris/opendata-api/internal/domain"
	logpkg "github.com/teamaeris/opendata-api/internal/logger"
	"github.com/teamaeris/opendata-api/internal/metrics"
	catalogrepo "github.com/teamaeris/opendata-api/internal/repository/catalog"
	commentrepo "github.com/teamaeris/opendata-api/internal/repository/comment"
	documentrepo "github.com/teamaeris/opendata-api/internal/repository/document"
	"github.com/teamaeris/opendata-api/internal/repository/embcache"
	"github.com/teamaeris/opendata-api/internal/repository/ratelimit"
	recrepo "github.com/teamaeris/opendata-api/internal/repository/recommendation"
	searchrepo "github.com/teamaeris/opendata-api/internal/repository/search"
	vectorrepo "github.com/teamaeris/opendata-api/internal/repository/vector"
	chiTransport "github.com/teamaeris/opendata-api/internal/transport/chi"
	openaiEmb "github.com/teamaeris/opendata-api/internal/transport/openai"
	batchuc "github.com/teamaeris/opendata-api/internal/usecase/batch"
	cataloguc "github.com/teamaeris/opendata-api/internal/usecase/catalog"
	commentuc "github.com/teamaeris/opendata-api/internal/usecase/comment"
	documentuc "github.com/teamaeris/opendata-api/internal/usecase/document"
	embeddinguc "github.com/teamaeris/opendata-api/internal/usecase/embedding"
	healthuc "github.com/teamaeris/opendata-api/internal/usecase/health"
	listinguc "github.com/teamaeris/opendata-api/internal/usecase/listing"
	recuc "github.com/teamaeris/opendata-api/internal/usecase/recommendation"
	searchuc "github.com/teamaeris/opendata-api/internal/usecase/search"
	"github.com/teamaeris/opendata-api/internal/version"
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

	logger.Info("Starting opendata API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.Strings("es_addresses", cfg.Elasticsearch.Addresses),
		zap.String("milvus_address", cfg.Milvus.Address),
		zap.Bool("redis_enabled", cfg.Redis.Enabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Mongo is required.
	store, err := mongodb.NewStore(ctx, mongodb.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		ConnectTimeout: time.Duration(cfg.Mongo.ReadinessTimeout) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create mongo store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Mongo.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Mongo not ready", zap.Error(err))
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure mongo indexes", zap.Error(err))
	}
	logger.Info("Connected to mongo")

	es, err := dbElastic.NewClient(dbElastic.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	milvusCli, err := dbMilvus.NewClient(ctx, dbMilvus.Config{
		Address:  cfg.Milvus.Address,
		Username: cfg.Milvus.Username,
		Password: cfg.Milvus.Password,
		DBName:   cfg.Milvus.DBName,
	})
	if err != nil {
		logger.Fatal("Failed to connect to milvus", zap.Error(err))
	}
	defer func() { _ = milvusCli.Close() }()

	vectors, err := vectorrepo.New(milvusCli, cfg.Milvus.Collection, cfg.Milvus.Dimensions)
	if err != nil {
		logger.Fatal("Failed to create vector repository", zap.Error(err))
	}
	if err := vectors.EnsureCollection(ctx); err != nil {
		logger.Fatal("Failed to ensure milvus collection", zap.Error(err))
	}

	// Redis is optional: shared rate-limit counters and the embedding cache.
	var redisStore *dbRedis.Store
	if cfg.Redis.Enabled() {
		redisStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer redisStore.Close()
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Redis.Addrs))
	}

	// HTTP metrics register in init(); domain metrics here.
	metrics.RegisterCatalogMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRecommendationMetrics()

	// Repositories
	catalogRepo := catalogrepo.NewFromStore(store)
	docRepo := documentrepo.NewFromStore(store)
	commentRepo := commentrepo.New(store.Collection(mongodb.CollComments))
	recRepo := recrepo.New(store.Collection(mongodb.CollDocRecommendations))
	searchRepo := searchrepo.New(es.ES(), cfg.Elasticsearch.Index)

	// Use cases
	catalogSvc := cataloguc.New(catalogRepo, catalogRepo, catalogRepo, catalogRepo).
		WithSnapshotSize(cfg.Snapshot.Size).
		WithLogger(logger)
	recSvc := recuc.New(recRepo, vectors).
		WithThreshold(cfg.Recommendation.Threshold).
		WithTTL(time.Duration(cfg.Recommendation.CacheTTLHours) * time.Hour).
		WithMaxBatch(cfg.Recommendation.MaxBatch).
		WithLogger(logger)
	listingSvc := listinguc.New(catalogSvc, searchRepo, docRepo).WithLogger(logger)
	docSvc := documentuc.New(docRepo, catalogSvc, recSvc).
		WithRecommendations(cfg.Recommendation.TopK, time.Duration(cfg.Recommendation.DetailTimeoutMs)*time.Millisecond).
		WithLogger(logger)
	commentSvc := commentuc.New(commentRepo)
	searchSvc := searchuc.New(searchRepo, docRepo).WithMaxPageSize(cfg.Snapshot.MaxPageSize)

	instrumented := embeddinguc.NewInstrumentedEmbedder(
		openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		}),
		cfg.Embedding.Provider, cfg.Embedding.Model,
	).
		WithChunkSize(cfg.Embedding.BatchSize).
		WithTimeout(time.Duration(cfg.Embedding.TimeoutSec) * time.Second).
		WithLogger(logger)
	var embedder domain.Embedder = instrumented
	if redisStore != nil && cfg.Embedding.CacheTTLHours > 0 {
		embedder = embcache.New(instrumented, redisStore, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour).
			WithMetrics(metrics.EmbeddingCacheTotal).
			WithLogger(logger)
	}
	indexSvc := batchuc.New(vectors, embedder).
		WithMaxBatchSize(cfg.Recommendation.MaxBatch).
		WithLogger(logger)

	healthSvc := healthuc.New(store).
		WithComponent("elasticsearch", es).
		WithComponent("milvus", vectors).
		WithComponent("embedding", healthuc.PingFunc(instrumented.HealthCheck)).
		WithLogger(logger)

	// Rate limiting: Redis when configured, in-memory otherwise and as fallback.
	limitCfg := ratelimit.Config{
		Requests: cfg.RateLimit.Requests,
		Window:   time.Duration(cfg.RateLimit.WindowSec) * time.Second,
	}
	memLimiter := ratelimit.NewMemory(limitCfg)
	go memLimiter.Run(ctx)

	var limiter ratelimit.Limiter = memLimiter
	if redisStore != nil {
		limiter = ratelimit.NewRedis(redisStore, limitCfg,
			ratelimit.WithFallback(memLimiter),
			ratelimit.WithLogger(logger),
		)
		healthSvc.WithComponent("redis", redisStore)
	}

	go catalogSvc.RunPeriodic(ctx, time.Duration(cfg.Snapshot.RebuildIntervalSec)*time.Second)

	server := chiTransport.NewServer(chiTransport.Services{
		Listing:         listingSvc,
		Ranks:           catalogSvc,
		Documents:       docSvc,
		Comments:        commentSvc,
		Search:          searchSvc,
		Recommendations: recSvc,
		Indexer:         indexSvc,
		Health:          healthSvc,
	}, logger).
		WithAdminKeys(cfg.Auth.AdminAPIKeys).
		WithRateLimiter(limiter)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    "internal_error",
						Message: "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx := logpkg.With(logpkg.ContextWithLogger(r.Context(), logger), zap.String("request_id", requestID))
			reqLogger := logpkg.FromContext(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
