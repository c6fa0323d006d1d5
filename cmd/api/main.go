package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"packpay/internal/infrastructure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := infrastructure.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("Bootstrap error: %v", err)
	}
	defer cleanup()

	log.Println("packpay ledger is running")

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Server failed: %v", err)
	}
}
