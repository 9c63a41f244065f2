package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"fisiqia-be/internal/bootstrap"
	"fisiqia-be/internal/config"
	"fisiqia-be/internal/server"
	"fisiqia-be/internal/tracer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(ctx)

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to bootstrap container: %v", err)
	}

	// 3. Start Background Services
	log.Println("[INFO] Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("[WARN] Background Consumer Error: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	// 5. Wait for a signal or a listener failure
	select {
	case err := <-errCh:
		log.Printf("[ERROR] Server stopped: %v", err)
	case <-ctx.Done():
		log.Println("[INFO] Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] Server shutdown: %v", err)
	}
	if err := container.Close(); err != nil {
		log.Printf("[WARN] Container close: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("[WARN] Tracer shutdown: %v", err)
	}
}
