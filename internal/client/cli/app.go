package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/expensetracker/internal/config"
	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"github.com/dmitrijs2005/expensetracker/internal/models"
	"github.com/dmitrijs2005/expensetracker/internal/server"
	"github.com/dmitrijs2005/expensetracker/internal/server/grpc"
)

type App struct {
	backend Backend
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	// last state seen by the watcher; nil when signed out
	user atomic.Pointer[models.UserRecord]
}

// NewApp connects to the daemon at c.RemoteAddr, or opens the configured
// storage in-process when no remote address is set.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	var b Backend
	if c.RemoteAddr != "" {
		client, err := grpc.Dial(c.RemoteAddr)
		if err != nil {
			return nil, fmt.Errorf("connect to %s: %w", c.RemoteAddr, err)
		}
		logger.Debug(ctx, "using remote session service", "addr", c.RemoteAddr)
		b = client
	} else {
		sessions, err := server.OpenSessions(ctx, c, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug(ctx, "using local session service", "store", c.StoreBackend)
		b = &localBackend{Sessions: sessions}
	}
	return newApp(b, logger, os.Stdin, os.Stdout), nil
}

func newApp(b Backend, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{backend: b, logger: logger, reader: bufio.NewReader(in), out: out}
}

// Run starts the session watcher and the REPL. It returns when the user
// exits, input ends or ctx is done, and closes the backend.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	states, err := a.backend.Watch(ctx)
	if err != nil {
		printlnFn("Session updates unavailable:", describe(err))
		a.logger.Warn(ctx, "watch session", "error", err)
	} else {
		a.user.Store((<-states).User)
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.watch(ctx, states)
		}()
	}

	printlnFn("Expense tracker CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)

	cancel()
	wg.Wait()
	return a.backend.Close()
}

// watch prints each state received on states and remembers it for the prompt.
func (a *App) watch(ctx context.Context, states <-chan models.State) {
	for {
		select {
		case st, ok := <-states:
			if !ok {
				return
			}
			a.user.Store(st.User)
			if st.LoggedIn() {
				printlnFn("session: signed in as " + displayName(st.User))
			} else {
				printlnFn("session: signed out")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.user.Load() != nil
}

func (a *App) status() string {
	if u := a.user.Load(); u != nil {
		return displayName(u)
	}
	return "not logged in"
}

func displayName(u *models.UserRecord) string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
