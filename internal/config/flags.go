package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/expensetracker/internal/flagx"
)

var knownFlags = []string{"-s", "-d", "-f", "-t", "-p", "-g", "-a", "-r", "-l"}

// parseFlags overlays cfg with the flags it owns. Other flags (for example
// -c, handled by parseFile) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "store backend")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.StoreDir, "f", cfg.StoreDir, "directory for the file backend")
	fs.DurationVar(&cfg.StorageTimeout, "t", cfg.StorageTimeout, "per-operation storage timeout")
	fs.StringVar(&cfg.PasswordScheme, "p", cfg.PasswordScheme, "password scheme for new accounts")
	fs.BoolVar(&cfg.GenericAuthErrors, "g", cfg.GenericAuthErrors, "hide whether an email is registered")
	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "gRPC listen address")
	fs.StringVar(&cfg.RemoteAddr, "r", cfg.RemoteAddr, "daemon address for the CLI")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
