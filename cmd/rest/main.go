package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-chat-be/internal/bootstrap"
	"ai-chat-be/internal/config"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/server"
	"ai-chat-be/internal/tracer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		log.Printf("rest: %v", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred log flushing always happens.
func run(ctx context.Context) error {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	// 2. Tracer
	shutdownTracer, err := tracer.InitTracer(ctx, tracer.Config{
		Enabled:  cfg.App.OtelEnabled,
		Endpoint: cfg.App.OtelEndpoint,
	})
	if err != nil {
		sysLogger.Warn("bootstrap", "Tracing disabled", map[string]interface{}{"error": err.Error()})
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg, sysLogger)
	if err != nil {
		sysLogger.Error("bootstrap", "Failed to build container", map[string]interface{}{"error": err})
		_ = shutdownTracer(context.Background())
		return fmt.Errorf("bootstrap: %w", err)
	}

	// 4. Start Background Services
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	if err := container.ConsumerService.Consume(consumerCtx); err != nil {
		sysLogger.Error("consumer", "Failed to start purge consumer", map[string]interface{}{"error": err})
	}

	// 5. Run Server
	srv := server.New(cfg, container)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		sysLogger.Info("bootstrap", "Shutting down", nil)
	case err := <-serverErr:
		if err != nil {
			sysLogger.Error("bootstrap", "Server stopped", map[string]interface{}{"error": err})
		}
	}

	// 6. Graceful Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sysLogger.Warn("bootstrap", "HTTP shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	stopConsumer()
	_ = container.Close(shutdownCtx)
	if err := shutdownTracer(shutdownCtx); err != nil {
		sysLogger.Warn("bootstrap", "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	return nil
}
