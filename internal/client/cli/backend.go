package cli

import (
	"context"

	"github.com/dmitrijs2005/expensetracker/internal/models"
	"github.com/dmitrijs2005/expensetracker/internal/server"
	"github.com/dmitrijs2005/expensetracker/internal/server/grpc"
)

// Backend is the session surface the REPL drives. Errors match the
// sentinels in internal/common regardless of the implementation.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.UserRecord, error)
	Register(ctx context.Context, email, username, password string) (*models.UserRecord, error)
	Logout(ctx context.Context) error
	IsLoggedIn(ctx context.Context) (bool, error)

	// Watch yields the current state and then every change until ctx is
	// done or the backend goes away.
	Watch(ctx context.Context) (<-chan models.State, error)

	Close() error
}

var (
	_ Backend = (*localBackend)(nil)
	_ Backend = (*grpc.Client)(nil)
)

// localBackend serves the REPL from a session service in this process.
type localBackend struct {
	*server.Sessions
}

func (b *localBackend) IsLoggedIn(context.Context) (bool, error) {
	return b.Sessions.IsLoggedIn(), nil
}

func (b *localBackend) Watch(ctx context.Context) (<-chan models.State, error) {
	return b.Sessions.Watch(ctx).C(), nil
}
