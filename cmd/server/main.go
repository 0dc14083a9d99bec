package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/groovemind/djbooth/internal/audio"
	"github.com/groovemind/djbooth/internal/config"
	"github.com/groovemind/djbooth/internal/database"
	"github.com/groovemind/djbooth/internal/dj"
	"github.com/groovemind/djbooth/internal/handlers"
	"github.com/groovemind/djbooth/internal/logger"
	"github.com/groovemind/djbooth/internal/middleware"
	"github.com/groovemind/djbooth/internal/moderation"
	"github.com/groovemind/djbooth/internal/models"
	"github.com/groovemind/djbooth/internal/prompts"
	"github.com/groovemind/djbooth/internal/queue"
	"github.com/groovemind/djbooth/internal/services/catalog"
	"github.com/groovemind/djbooth/internal/services/llm"
	"github.com/groovemind/djbooth/internal/services/speech"
	"github.com/groovemind/djbooth/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewProductionLogger(cfg.ServerDebugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", cfg.ServerDebugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "djbooth-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureSchema(schemaCtx); err != nil {
		schemaCancel()
		zapLogger.Fatal("failed_to_ensure_database_schema", zap.Error(err))
	}
	schemaCancel()
	zapLogger.Info("connected_to_database")

	// Connect to Redis for rate limiting
	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ for playlist jobs (required).
	// Retry with exponential backoff to ride out RabbitMQ startup delays.
	const maxRetries = 10
	const initialDelay = 2 * time.Second
	var jobQueue queue.JobQueue
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
			break
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
	}

	// Prompt templates; an empty dir falls back to the built-in defaults.
	promptStore, err := prompts.NewStore(cfg.PromptDir, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_load_prompt_templates", zap.Error(err))
	}

	// Language model provider (moderation gate and response generators)
	provider, err := createLLMProvider(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_llm_provider", zap.Error(err))
	}

	// Moderation: gate, runtime-tunable config, per-user penalty state
	gate := moderation.NewGate(provider, promptStore, zapLogger)
	modConfig, err := moderation.NewConfigHolder(models.ModerationConfig{
		WarningThreshold:   cfg.ModWarningThreshold,
		MuteDuration:       time.Duration(cfg.ModMuteDurationSec) * time.Second,
		MuteThreshold:      cfg.ModMuteThreshold,
		SuspensionDuration: time.Duration(cfg.ModSuspensionDurSec) * time.Second,
	})
	if err != nil {
		zapLogger.Fatal("invalid_moderation_configuration", zap.Error(err))
	}
	userStates := moderation.NewUserStateStore(modConfig)

	// Voice synthesis is optional; the orchestrator degrades to
	// text-only replies when it is not configured.
	var synthesizer dj.Synthesizer
	var voiceLister handlers.VoiceLister
	speechClient := speech.NewClient(cfg.ElevenLabsURL, cfg.ElevenLabsKey, cfg.DefaultVoiceID, zapLogger)
	if speechClient.Enabled() {
		synthesizer = speechClient
		voiceLister = speechClient
		zapLogger.Info("voice_synthesis_enabled")
	} else {
		zapLogger.Warn("voice_synthesis_disabled_text_only_replies")
	}

	// The music catalog is optional too; generators fall back to
	// scripted lines when it is absent.
	musicServer := catalog.NewClient(cfg.MusicServerURL, cfg.MusicServerUser, cfg.MusicServerPassword, zapLogger)
	if musicServer.Enabled() {
		zapLogger.Info("music_catalog_enabled", zap.String("url", cfg.MusicServerURL))
	} else {
		zapLogger.Warn("music_catalog_disabled")
	}

	audioStore, err := audio.NewStore(cfg.AudioDir)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_audio_store", zap.Error(err))
	}

	profileRepo := database.NewProfileRepository(db)
	enqueuer := queue.NewPlaylistEnqueuer(jobQueue)

	generators := dj.NewGenerators(provider, promptStore, musicServer, enqueuer, zapLogger)
	orchestrator := dj.NewOrchestrator(
		gate,
		userStates,
		generators,
		synthesizer,
		audioStore,
		profileRepo,
		dj.NewInteractionLog(),
		zapLogger,
	)

	// Handlers
	djHandler := handlers.NewDJHandler(orchestrator, voiceLister, musicServer)
	playlistHandler := handlers.NewPlaylistHandler(musicServer, enqueuer)
	profileHandler := handlers.NewProfileHandler(profileRepo)
	adminHandler := handlers.NewAdminHandler(userStates, modConfig)
	healthChecker := handlers.NewHealthChecker(map[string]handlers.Pinger{
		"postgres": db,
		"redis":    handlers.PingerFunc(redisLimiter.Ping),
		"rabbitmq": handlers.PingerFunc(jobQueue.HealthCheck),
	})

	rateLimitMW, err := middleware.RateLimit(redisLimiter.Client(), cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Setup router. gorilla/mux runs middleware in registration order,
	// so the outermost wrappers are registered first.
	r := mux.NewRouter()

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("djbooth-api"))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// Synthesized audio is served straight off disk.
	r.PathPrefix("/static/audio/").Handler(
		http.StripPrefix("/static/audio/", http.FileServer(http.Dir(audioStore.Dir()))),
	).Methods("GET")

	// API v1 routes (rate limited per client IP)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)
	djHandler.RegisterRoutes(apiRouter)
	playlistHandler.RegisterRoutes(apiRouter)
	profileHandler.RegisterRoutes(apiRouter)

	// Admin routes: moderation config and user penalty state
	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(rateLimitMW)
	adminHandler.RegisterRoutes(adminRouter)

	// Catch-all OPTIONS handler so preflight requests succeed on every
	// route; the CORS middleware has already set the headers.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second, // synthesis calls can be slow
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// DLQ garbage collector: hourly sweep, 24h retention
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour)
		go func() {
			if err := dlqGC.Start(bgCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	// Audio files are throwaway artifacts; sweep old ones daily.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-bgCtx.Done():
				return
			case <-ticker.C:
				removed, err := audioStore.Prune(7 * 24 * time.Hour)
				if err != nil {
					zapLogger.Warn("failed_to_prune_audio_files", zap.Error(err))
					continue
				}
				if removed > 0 {
					zapLogger.Info("pruned_audio_files", zap.Int("removed", removed))
				}
			}
		}
	}()

	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// createLLMProvider builds the configured language model provider.
// The default OpenAI provider is constructed directly so it carries
// the logger; other names resolve through the registry.
func createLLMProvider(cfg *config.Config, logger *zap.Logger) (llm.Provider, error) {
	providerType := cfg.AIProvider
	if providerType == "" {
		providerType = "openai"
	}

	if providerType == "openai" {
		return llm.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			logger,
			cfg.ServerDebugMode,
		), nil
	}

	registry := llm.NewProviderRegistry()
	llm.RegisterOpenAI(registry)

	return registry.GetProvider(providerType, map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	})
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
