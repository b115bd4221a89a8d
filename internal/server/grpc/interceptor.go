package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// loggingInterceptor records every unary call with its outcome. Expected
// outcomes such as a wrong password are logged at Debug.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}

	switch code {
	case codes.OK, codes.NotFound, codes.Unauthenticated, codes.AlreadyExists, codes.InvalidArgument, codes.Canceled:
		s.logger.Debug(ctx, "rpc", args...)
	default:
		s.logger.Warn(ctx, "rpc failed", append(args, "error", err)...)
	}
	return resp, err
}
