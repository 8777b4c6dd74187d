package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cosmonotes/internal/app"
	"cosmonotes/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "initializing app: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "running app: %v\n", err)
		os.Exit(1)
	}
}
