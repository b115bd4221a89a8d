package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.sessions.Login(ctx, stringField(req, "email"), stringField(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"user": structpb.NewStructValue(userToStruct(u)),
	}}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.sessions.Register(ctx,
		stringField(req, "email"),
		stringField(req, "username"),
		stringField(req, "password"),
	)
	if err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"user": structpb.NewStructValue(userToStruct(u)),
	}}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.sessions.Logout(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) IsLoggedIn(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.sessions.IsLoggedIn()), nil
}

// WatchSession streams the current state, then every change, until the
// client goes away or the server stops.
func (s *GRPCServer) WatchSession(_ *emptypb.Empty, stream grpc.ServerStream) error {
	ctx := stream.Context()
	sub := s.sessions.Watch(ctx)
	defer sub.Close()

	s.logger.Debug(ctx, "session watcher attached")
	for {
		select {
		case st, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := stream.SendMsg(stateToStruct(st)); err != nil {
				return err
			}
		case <-s.stopping:
			return nil
		case <-ctx.Done():
			return toStatus(ctx.Err())
		}
	}
}

var _ sessionServer = (*GRPCServer)(nil)
