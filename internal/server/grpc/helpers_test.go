package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/expensetracker/internal/credstore"
	"github.com/dmitrijs2005/expensetracker/internal/cryptox"
	"github.com/dmitrijs2005/expensetracker/internal/kv"
	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"github.com/dmitrijs2005/expensetracker/internal/session"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

func newSessions(t *testing.T, store kv.Store) *session.Service {
	t.Helper()
	svc, err := session.NewService(context.Background(), credstore.New(store), cryptox.Legacy{})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

type harness struct {
	svc    *session.Service
	client *Client
	cancel context.CancelFunc
	done   chan error
}

// startServer serves svc over an in-memory listener and returns a client
// connected to it.
func startServer(t *testing.T, svc Sessions) *harness {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", nopLogger{}, svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	h := &harness{client: client, cancel: cancel, done: done}
	if s, ok := svc.(*session.Service); ok {
		h.svc = s
	}

	t.Cleanup(func() {
		_ = client.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return h
}
