// Package cli provides the interactive command-line client for the session
// subsystem.
//
// The client runs either against an in-process session service opened from
// the local configuration, or against a running auth daemon over gRPC when a
// remote address is configured. Both are reached through Backend, so the
// REPL behaves the same way in either mode.
//
// Commands:
//   - register, login, logout
//   - whoami, status
//   - help, exit | quit
//
// A background watcher prints every session change, including changes made
// by other clients of the same daemon. The REPL is started via App.Run,
// which blocks until the user exits.
package cli
