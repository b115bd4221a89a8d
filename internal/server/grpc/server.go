// Package grpc exposes the session service over gRPC and provides the
// matching client.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"github.com/dmitrijs2005/expensetracker/internal/models"
	"github.com/dmitrijs2005/expensetracker/internal/session"
	"google.golang.org/grpc"
)

// Sessions is the part of *session.Service the server exposes.
type Sessions interface {
	Login(ctx context.Context, email, password string) (*models.UserRecord, error)
	Register(ctx context.Context, email, username, password string) (*models.UserRecord, error)
	Logout(ctx context.Context) error
	IsLoggedIn() bool
	Watch(ctx context.Context) *session.Subscription
}

type GRPCServer struct {
	address  string
	sessions Sessions
	logger   logging.Logger

	// closed when the server starts shutting down, so open WatchSession
	// streams return and GracefulStop can finish
	stopping chan struct{}
}

func NewGRPCServer(addr string, l logging.Logger, s Sessions) *GRPCServer {
	return &GRPCServer{
		address:  addr,
		logger:   l.With("module", "grpc_server"),
		sessions: s,
		stopping: make(chan struct{}),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	srv.RegisterService(&sessionServiceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		close(s.stopping)
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
