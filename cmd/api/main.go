// Broodjes AI API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/container"

	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.NopLogger,
		container.APIModule,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("failed to stop application: %v", err)
	}
}
