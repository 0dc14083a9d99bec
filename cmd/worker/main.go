package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/groovemind/djbooth/internal/config"
	"github.com/groovemind/djbooth/internal/logger"
	"github.com/groovemind/djbooth/internal/prompts"
	"github.com/groovemind/djbooth/internal/queue"
	"github.com/groovemind/djbooth/internal/services/catalog"
	"github.com/groovemind/djbooth/internal/services/llm"
	"github.com/groovemind/djbooth/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("Starting playlist worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
	)

	// Initialize RabbitMQ queue
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to RabbitMQ",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	promptStore, err := prompts.NewStore(cfg.PromptDir, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to load prompt templates", zap.Error(err))
	}

	// Create LLM provider with logger
	var provider llm.Provider
	if cfg.AIProvider == "openai" {
		provider = llm.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			zapLogger,
			debugMode,
		)
	} else {
		zapLogger.Fatal("Unsupported AI provider", zap.String("provider", cfg.AIProvider))
	}

	zapLogger.Info("Initialized AI provider",
		zap.String("provider", cfg.AIProvider),
		zap.String("model", cfg.AIModel),
	)

	// Music server client. Playlist jobs are skipped, not failed, when
	// the catalog is not configured.
	musicServer := catalog.NewClient(cfg.MusicServerURL, cfg.MusicServerUser, cfg.MusicServerPassword, zapLogger)
	if !musicServer.Enabled() {
		zapLogger.Warn("Music catalog not configured, playlist jobs will be skipped")
	}

	builder := workers.NewPlaylistBuilder(
		provider,
		promptStore,
		musicServer,
		jobQueue,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start consuming messages
	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("Failed to start consuming messages", zap.Error(err))
	}

	zapLogger.Info("Worker started, consuming messages from queue")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("Message channel closed")
					return
				}

				if err := builder.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("Failed to process job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	// Handle errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("Queue error", zap.Error(err))
			}
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("Shutting down worker")
	cancel()
}
