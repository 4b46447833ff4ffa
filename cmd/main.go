package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Moxx-Company/Nomadly2/internal/app"
)

const (
	appName   = "nomadly_bot"
	envPrefix = "NOMADLY"
)

func main() {
	cfg, err := app.NewEnvConfig(envPrefix)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := app.New(appName, cfg)

	if err := app.Run(ctx); err != nil {
		panic(err)
	}
}
