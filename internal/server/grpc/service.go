package grpc

import (
	"context"

	"github.com/dmitrijs2005/expensetracker/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is declared by hand over protobuf well-known types, so no
// generated code is needed on either side.
const (
	serviceName = "expensetracker.auth.v1.SessionService"

	methodLogin        = "/" + serviceName + "/Login"
	methodRegister     = "/" + serviceName + "/Register"
	methodLogout       = "/" + serviceName + "/Logout"
	methodIsLoggedIn   = "/" + serviceName + "/IsLoggedIn"
	methodWatchSession = "/" + serviceName + "/WatchSession"
)

// sessionServer is implemented by *GRPCServer.
type sessionServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	IsLoggedIn(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	WatchSession(*emptypb.Empty, grpc.ServerStream) error
}

var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*sessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Login",
			Handler: unaryHandler(methodLogin, new(structpb.Struct), func(s sessionServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.Login(ctx, in)
			}),
		},
		{
			MethodName: "Register",
			Handler: unaryHandler(methodRegister, new(structpb.Struct), func(s sessionServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.Register(ctx, in)
			}),
		},
		{
			MethodName: "Logout",
			Handler: unaryHandler(methodLogout, new(emptypb.Empty), func(s sessionServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.Logout(ctx, in)
			}),
		},
		{
			MethodName: "IsLoggedIn",
			Handler: unaryHandler(methodIsLoggedIn, new(emptypb.Empty), func(s sessionServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.IsLoggedIn(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchSession",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(emptypb.Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(sessionServer).WatchSession(in, stream)
			},
		},
	},
	Metadata: "expensetracker/auth/v1/session.proto",
}

// unaryHandler adapts call to the grpc MethodHandler shape. Each request is
// decoded into a fresh clone of prototype.
func unaryHandler[Req proto.Message](
	fullMethod string,
	prototype Req,
	call func(sessionServer, context.Context, Req) (proto.Message, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := proto.Clone(prototype).(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(sessionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(sessionServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func userToStruct(u *models.UserRecord) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewStringValue(u.ID),
		"email":    structpb.NewStringValue(u.Email),
		"username": structpb.NewStringValue(u.Username),
	}}
}

func userFromStruct(s *structpb.Struct) *models.UserRecord {
	if s == nil {
		return nil
	}
	return &models.UserRecord{
		ID:       stringField(s, "id"),
		Email:    stringField(s, "email"),
		Username: stringField(s, "username"),
	}
}

func stateToStruct(st models.State) *structpb.Struct {
	out := &structpb.Struct{Fields: map[string]*structpb.Value{
		"logged_in": structpb.NewBoolValue(st.LoggedIn()),
	}}
	if st.LoggedIn() {
		out.Fields["user"] = structpb.NewStructValue(userToStruct(st.User))
	}
	return out
}

func stateFromStruct(s *structpb.Struct) models.State {
	if !s.GetFields()["logged_in"].GetBoolValue() {
		return models.Unauthenticated
	}
	u := userFromStruct(s.GetFields()["user"].GetStructValue())
	if u == nil {
		return models.Unauthenticated
	}
	return models.Authenticated(*u)
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}
