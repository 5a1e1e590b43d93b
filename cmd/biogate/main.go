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

	"github.com/kailas-cloud/biogate/internal/config"
	"github.com/kailas-cloud/biogate/internal/db"
	dbMemory "github.com/kailas-cloud/biogate/internal/db/memory"
	dbRedis "github.com/kailas-cloud/biogate/internal/db/redis"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/extract"
	logpkg "github.com/kailas-cloud/biogate/internal/logger"
	"github.com/kailas-cloud/biogate/internal/metrics"
	accesslogrepo "github.com/kailas-cloud/biogate/internal/repository/accesslog"
	identityrepo "github.com/kailas-cloud/biogate/internal/repository/identity"
	templaterepo "github.com/kailas-cloud/biogate/internal/repository/template"
	"github.com/kailas-cloud/biogate/internal/score"
	"github.com/kailas-cloud/biogate/internal/secrets"
	chiTransport "github.com/kailas-cloud/biogate/internal/transport/chi"
	enrolluc "github.com/kailas-cloud/biogate/internal/usecase/enroll"
	healthuc "github.com/kailas-cloud/biogate/internal/usecase/health"
	matchuc "github.com/kailas-cloud/biogate/internal/usecase/match"
	sessionuc "github.com/kailas-cloud/biogate/internal/usecase/session"
	validateuc "github.com/kailas-cloud/biogate/internal/usecase/validate"
	"github.com/kailas-cloud/biogate/internal/version"
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

	logger.Info("Starting biogate API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Create database store based on driver
	var store db.Store
	switch cfg.Database.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	case "memory":
		store = dbMemory.NewStore()
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
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

	// Register domain metrics explicitly (no init())
	metrics.RegisterBiometricMetrics()

	// Security primitives — key material is injected, never ambient
	keys, err := secrets.NewDerivedKeyProvider(cfg.Security.EncryptionSecret, cfg.Security.EncryptionSalt)
	if err != nil {
		logger.Fatal("Failed to derive encryption key", zap.Error(err))
	}
	cipher := secrets.NewAESGCMCipher(keys)
	hasher := secrets.NewHasher(cfg.Security.HashSalt)

	extractors := extract.NewSet()

	// Repositories (domain-native, no adapters)
	templateRepo := templaterepo.New(store, cipher).
		WithKeyPrefix(cfg.Storage.KeyPrefix).
		WithReextract(func(m modality.Modality, capture []byte) (feature.Vector, error) {
			ex, ok := extractors.For(m)
			if !ok {
				return feature.Vector{}, fmt.Errorf("no extractor for modality %s", m)
			}
			return ex.Extract(capture)
		})
	accessRepo := accesslogrepo.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)
	identityRepo := identityrepo.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)

	// Use case services
	matchSvc := matchuc.New(templateRepo, score.NewSet(), thresholdsFromConfig(cfg), logger).
		WithMargins(cfg.Matching.ReplaceMargin, cfg.Matching.ContestMargin)
	for name, rules := range cfg.Matching.Discrimination {
		m, err := modality.Parse(name)
		if err != nil {
			logger.Fatal("Invalid discrimination modality", zap.String("modality", name))
		}
		matchSvc.WithTieBreaker(m, matchuc.NewProfileTieBreaker(rulesFromConfig(rules)))
	}

	guard := sessionuc.NewGuard(cfg.Session.OverrideIdentity, logger)
	enrollSvc := enrolluc.New(templateRepo, extractors, hasher, logger)
	validateSvc := validateuc.New(extractors, matchSvc, guard, accessRepo, identityRepo, hasher, logger)
	healthSvc := healthuc.New(store)

	// Chi server
	server := chiTransport.NewServer(enrollSvc, validateSvc, identityRepo, healthSvc, logger).
		WithMaxBodyBytes(int64(cfg.HTTP.MaxCaptureBytes))

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

func thresholdsFromConfig(cfg config.Config) map[modality.Modality]float64 {
	out := make(map[modality.Modality]float64, len(cfg.Matching.Thresholds))
	for name, v := range cfg.Matching.Thresholds {
		m, err := modality.Parse(name)
		if err != nil {
			continue
		}
		out[m] = v
	}
	return out
}

func rulesFromConfig(rules []config.DiscriminationRule) []matchuc.DiscriminationRule {
	out := make([]matchuc.DiscriminationRule, len(rules))
	for i, r := range rules {
		out[i] = matchuc.DiscriminationRule{
			Feature:      r.Feature,
			Threshold:    r.Threshold,
			AbovePrefers: r.AbovePrefers,
			BelowPrefers: r.BelowPrefers,
		}
	}
	return out
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
