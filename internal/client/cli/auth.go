package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/expensetracker/internal/common"
	"github.com/dmitrijs2005/expensetracker/internal/server/grpc"
)

// getSimpleText, getPassword and getNewPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getNewPassword = GetNewPassword

// Register prompts for an email, a display name and a confirmed password,
// then creates the account and signs it in.
//
// The byte slice read from the terminal is wiped before returning. The
// backend takes the password as a string, and that immutable copy is left
// to the garbage collector.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter name (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getNewPassword(a.out)
	if errors.Is(err, ErrPasswordMismatch) {
		printlnFn("Registration failed:", err)
		return err
	}
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.backend.Register(ctx, email, username, string(password))
	if err != nil {
		printlnFn("Registration failed:", describe(err))
		return err
	}

	a.user.Store(u)
	printlnFn("Account created")
	return nil
}

// Login prompts for credentials and signs in. Signing in while another
// account is active replaces it. Only the terminal buffer is wiped; see
// Register.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.backend.Login(ctx, email, string(password))
	if err != nil {
		printlnFn("Login failed:", describe(err))
		return err
	}

	a.user.Store(u)
	printlnFn("Login successful")
	return nil
}

// Logout signs out. When the stored session could not be cleared the user
// is still signed out for now, and is told the session may come back on
// the next start.
func (a *App) Logout(ctx context.Context) error {
	err := a.backend.Logout(ctx)
	if err != nil && !errors.Is(err, common.ErrStorageFailure) {
		printlnFn("Logout failed:", describe(err))
		return err
	}

	a.user.Store(nil)
	if err != nil {
		printlnFn("Signed out, but the saved session could not be cleared:", describe(err))
		return err
	}
	printlnFn("Signed out")
	return nil
}

// Whoami prints the account the watcher last reported.
func (a *App) Whoami(context.Context) error {
	u := a.user.Load()
	if u == nil {
		printlnFn("Not logged in")
		return nil
	}
	printlnFn("email:", u.Email)
	if u.Username != "" {
		printlnFn("name: ", u.Username)
	}
	printlnFn("id:   ", u.ID)
	return nil
}

// Status asks the backend whether a session is active.
func (a *App) Status(ctx context.Context) error {
	ok, err := a.backend.IsLoggedIn(ctx)
	if err != nil {
		printlnFn("Status unavailable:", describe(err))
		return err
	}
	if ok {
		printlnFn("Logged in")
	} else {
		printlnFn("Not logged in")
	}
	return nil
}

// describe turns a backend error into a short message for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return "no account with that email"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "wrong email or password"
	case errors.Is(err, common.ErrAlreadyExists):
		return "an account with that email already exists"
	case errors.Is(err, common.ErrStorageFailure), errors.Is(err, common.ErrDecodeFailure):
		return "credential storage is not available"
	case errors.Is(err, grpc.ErrUnavailable):
		return "auth daemon is not reachable"
	default:
		return err.Error()
	}
}
