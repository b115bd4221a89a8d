// Package server runs the auth daemon: it opens the configured credential
// storage, restores the session and serves it over gRPC until interrupted.
package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/expensetracker/internal/config"
	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/expensetracker/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	sessions *Sessions
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	sessions, err := OpenSessions(ctx, c, logger)
	if err != nil {
		return nil, err
	}
	return &App{config: c, logger: logger, sessions: sessions}, nil
}

// notifySignals subscribes ch to shutdown signals; replaced in tests.
var notifySignals = func(ch chan<- os.Signal) func() {
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	return func() { signal.Stop(ch) }
}

// Run serves until ctx is done, a shutdown signal arrives or the gRPC server
// fails. Storage is closed before Run returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreBackend, "scheme", app.config.PasswordScheme)

	sigs := make(chan os.Signal, 1)
	stop := notifySignals(sigs)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case sig := <-sigs:
			app.logger.Info(gctx, "Received signal", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions)
		err := s.Run(gctx)
		cancel()
		return err
	})

	runErr := g.Wait()
	closeErr := app.sessions.Close()
	if runErr != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", runErr)
	}
	app.logger.Info(ctx, "Stopped")
	return errors.Join(runErr, closeErr)
}
