package grpc

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/expensetracker/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client talks to a running auth daemon. Errors are mapped back to the
// sentinels in internal/common, so callers handle remote and in-process
// sessions the same way.
type Client struct {
	conn grpc.ClientConnInterface
	// nil when the connection was supplied by the caller
	closer io.Closer
}

// Dial creates a client for endpointURL. The connection is established lazily.
func Dial(endpointURL string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, closer: conn}, nil
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.UserRecord, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"email":    structpb.NewStringValue(email),
		"password": structpb.NewStringValue(password),
	}}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodLogin, in, out); err != nil {
		return nil, mapError(err)
	}
	return userFromResponse(out)
}

func (c *Client) Register(ctx context.Context, email, username, password string) (*models.UserRecord, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"email":    structpb.NewStringValue(email),
		"username": structpb.NewStringValue(username),
		"password": structpb.NewStringValue(password),
	}}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodRegister, in, out); err != nil {
		return nil, mapError(err)
	}
	return userFromResponse(out)
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.conn.Invoke(ctx, methodLogout, &emptypb.Empty{}, new(emptypb.Empty)); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Client) IsLoggedIn(ctx context.Context) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, methodIsLoggedIn, &emptypb.Empty{}, out); err != nil {
		return false, mapError(err)
	}
	return out.GetValue(), nil
}

// Watch streams session states from the daemon: the current one first, then
// each change. The channel closes when ctx is done or the stream ends.
func (c *Client) Watch(ctx context.Context) (<-chan models.State, error) {
	stream, err := c.conn.NewStream(ctx, &sessionServiceDesc.Streams[0], methodWatchSession)
	if err != nil {
		return nil, mapError(err)
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, mapError(err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, mapError(err)
	}

	// the first message is the current state; reading it here surfaces an
	// unreachable daemon as an error instead of a silently closed channel
	first := new(structpb.Struct)
	if err := stream.RecvMsg(first); err != nil {
		return nil, mapError(err)
	}

	out := make(chan models.State, 1)
	out <- stateFromStruct(first)
	go func() {
		defer close(out)
		for {
			msg := new(structpb.Struct)
			if err := stream.RecvMsg(msg); err != nil {
				return
			}
			select {
			case out <- stateFromStruct(msg):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

var errMalformedResponse = errors.New("malformed response: missing user")

func userFromResponse(out *structpb.Struct) (*models.UserRecord, error) {
	u := userFromStruct(out.GetFields()["user"].GetStructValue())
	if u == nil || u.ID == "" {
		return nil, errMalformedResponse
	}
	return u, nil
}
