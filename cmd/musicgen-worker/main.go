// Command musicgen-worker runs the NATS-driven music-generation service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/thaitrn/musicgen-service/internal/config"
	"github.com/thaitrn/musicgen-service/internal/core"
	"github.com/thaitrn/musicgen-service/internal/musicgen"
	"github.com/thaitrn/musicgen-service/internal/objectstore"
	"github.com/thaitrn/musicgen-service/internal/worker"
)

const workerLogFileName = "musicgen-worker.log"

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, workerLogFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// A local .env may carry NATS credentials; absence is not an error.
	_ = godotenv.Load()

	// 1. Create a temporary logger for the bootstrap process.
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		// If bootstrap logger fails, we can only print to stderr.
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator.
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration.
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return runWorker(cfg, finalLog)
}

func runWorker(cfg *config.Config, log *logger.Logger) error {
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to get JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to initialize audio object store: %w", err)
	}

	generator, err := buildGenerator(cfg, log)
	if err != nil {
		return err
	}

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		cfg.NATS.GenerationJobsSubject,
		store,
		generator,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.System(
		"Musicgen worker initialized. Listening for jobs on subject: %s",
		cfg.NATS.GenerationJobsSubject,
	)

	runErr := natsWorker.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("worker stopped with error: %w", runErr)
	}

	return nil
}

// buildGenerator selects the local binary backend when one is configured,
// and the HTTP engine service otherwise.
func buildGenerator(cfg *config.Config, log *logger.Logger) (core.Generator, error) {
	if cfg.Engine.BinaryPath != "" {
		generator, err := musicgen.NewBinaryGenerator(cfg.Engine.BinaryPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create binary backend: %w", err)
		}

		return generator, nil
	}

	timeout := time.Duration(cfg.Engine.TimeoutSeconds) * time.Second

	return musicgen.NewHTTPClient(cfg.Engine.GetServiceURL(), timeout), nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
