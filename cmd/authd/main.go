package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/expensetracker/internal/buildinfo"
	"github.com/dmitrijs2005/expensetracker/internal/config"
	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"github.com/dmitrijs2005/expensetracker/internal/server"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(os.Stdout, logging.Options{
		Backend: cfg.LogBackend,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}
