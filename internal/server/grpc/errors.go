package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/expensetracker/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrUnavailable means the daemon could not be reached.
var ErrUnavailable = errors.New("auth daemon unavailable")

var codeBySentinel = []struct {
	err  error
	code codes.Code
}{
	{common.ErrNotFound, codes.NotFound},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrAlreadyExists, codes.AlreadyExists},
	{common.ErrInvalidInput, codes.InvalidArgument},
	{common.ErrStorageFailure, codes.Unavailable},
	{context.Canceled, codes.Canceled},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
}

// toStatus converts a service error into a gRPC status. Unknown errors are
// reported as Internal without their text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range codeBySentinel {
		if errors.Is(err, m.err) {
			return status.Error(m.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}

// mapError turns a gRPC status back into the sentinel the server started from.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return withRemoteMessage(common.ErrNotFound, st.Message())
	case codes.Unauthenticated:
		return withRemoteMessage(common.ErrInvalidCredentials, st.Message())
	case codes.AlreadyExists:
		return withRemoteMessage(common.ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return withRemoteMessage(common.ErrInvalidInput, st.Message())
	case codes.Unavailable:
		if strings.HasPrefix(st.Message(), common.ErrStorageFailure.Error()) {
			return withRemoteMessage(common.ErrStorageFailure, st.Message())
		}
		return withRemoteMessage(ErrUnavailable, st.Message())
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	}
	return withRemoteMessage(errors.New("rpc error"), st.Message())
}

func withRemoteMessage(sentinel error, msg string) error {
	rest := strings.TrimPrefix(msg, sentinel.Error())
	rest = strings.TrimPrefix(rest, ": ")
	if rest == "" {
		return sentinel
	}
	return &remoteError{sentinel: sentinel, detail: rest}
}

type remoteError struct {
	sentinel error
	detail   string
}

func (e *remoteError) Error() string { return e.sentinel.Error() + ": " + e.detail }
func (e *remoteError) Unwrap() error { return e.sentinel }
