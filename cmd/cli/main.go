package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/expensetracker/internal/buildinfo"
	"github.com/dmitrijs2005/expensetracker/internal/client/cli"
	"github.com/dmitrijs2005/expensetracker/internal/config"
	"github.com/dmitrijs2005/expensetracker/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// the REPL owns stdout
	logger, err := logging.New(os.Stderr, logging.Options{
		Backend: cfg.LogBackend,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx := context.Background()
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
