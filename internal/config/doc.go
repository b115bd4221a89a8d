// Package config loads runtime configuration for the auth daemon and the CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Environment variables prefixed with EXPENSETRACKER_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-s string   store backend: sqlite, postgres, file, memory, s3, redis
//	-d string   database DSN (sqlite path or postgres URL)
//	-f string   directory for the file backend
//	-t duration per-operation storage timeout
//	-p string   password scheme for new accounts: argon2id, bcrypt, legacy
//	-g          report unknown email and wrong password as the same error
//	-a string   gRPC listen address of the daemon
//	-r string   daemon address for the CLI (empty runs the service in-process)
//	-l string   log level
//
// # File schema
//
// Durations accept either strings like "5s" or integer nanoseconds:
//
//	{
//	  "store_backend": "sqlite",
//	  "database_dsn": "expensetracker.db",
//	  "storage_timeout": "5s",
//	  "password_scheme": "argon2id"
//	}
package config
