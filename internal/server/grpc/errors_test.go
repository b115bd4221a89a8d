package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/expensetracker/internal/common"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatusAndBack(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		want error
	}{
		{"not found", fmt.Errorf("%w: a@x.com", common.ErrNotFound), codes.NotFound, common.ErrNotFound},
		{"invalid credentials", common.ErrInvalidCredentials, codes.Unauthenticated, common.ErrInvalidCredentials},
		{"already exists", fmt.Errorf("%w: a@x.com", common.ErrAlreadyExists), codes.AlreadyExists, common.ErrAlreadyExists},
		{"invalid input", fmt.Errorf("%w: email and password are required", common.ErrInvalidInput), codes.InvalidArgument, common.ErrInvalidInput},
		{"storage", fmt.Errorf("%w: save registry: %w", common.ErrStorageFailure, errors.New("disk full")), codes.Unavailable, common.ErrStorageFailure},
		{"canceled", context.Canceled, codes.Canceled, context.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := toStatus(tt.err)
			assert.Equal(t, tt.code, status.Code(st))

			back := mapError(st)
			assert.ErrorIs(t, back, tt.want)
			assert.Equal(t, tt.err.Error(), back.Error(), "message survives the round trip")
		})
	}
}

func TestToStatus_HidesUnknownErrors(t *testing.T) {
	st := toStatus(errors.New("pq: password authentication failed for user root"))
	assert.Equal(t, codes.Internal, status.Code(st))
	assert.NotContains(t, st.Error(), "root")

	assert.NoError(t, toStatus(nil))
}

func TestMapError_TransportUnavailable(t *testing.T) {
	err := mapError(status.Error(codes.Unavailable, "connection refused"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, errors.Is(err, common.ErrStorageFailure))
}

func TestMapError_PassThrough(t *testing.T) {
	plain := errors.New("not a status")
	assert.Equal(t, plain, mapError(plain))
	assert.NoError(t, mapError(nil))

	err := mapError(status.Error(codes.Internal, "internal error"))
	assert.ErrorContains(t, err, "internal error")
}
