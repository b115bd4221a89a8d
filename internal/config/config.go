package config

import (
	"fmt"
	"os"
	"time"
)

const envPrefix = "EXPENSETRACKER_"

// Config holds runtime settings shared by cmd/authd and cmd/cli.
type Config struct {
	StoreBackend   string        `env:"STORE_BACKEND"`
	DatabaseDSN    string        `env:"DATABASE_DSN"`
	StoreDir       string        `env:"STORE_DIR"`
	StorageTimeout time.Duration `env:"STORAGE_TIMEOUT"`

	PasswordScheme    string `env:"PASSWORD_SCHEME"`
	GenericAuthErrors bool   `env:"GENERIC_AUTH_ERRORS"`

	EndpointAddrGRPC string `env:"ENDPOINT_ADDR_GRPC"`
	RemoteAddr       string `env:"REMOTE_ADDR"`

	LogLevel   string `env:"LOG_LEVEL"`
	LogFormat  string `env:"LOG_FORMAT"`
	LogBackend string `env:"LOG_BACKEND"`

	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3Prefix       string `env:"S3_PREFIX"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	RedisPrefix   string `env:"REDIS_PREFIX"`
}

// LoadDefaults populates c with defaults suitable for a single local device.
func (c *Config) LoadDefaults() {
	c.StoreBackend = "sqlite"
	c.DatabaseDSN = "expensetracker.db"
	c.StoreDir = "./data"
	c.StorageTimeout = 5 * time.Second

	c.PasswordScheme = "argon2id"
	c.GenericAuthErrors = false

	c.EndpointAddrGRPC = "127.0.0.1:50052"
	c.RemoteAddr = ""

	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogBackend = "slog"

	c.S3Bucket = "expensetracker"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3Prefix = "credentials/"

	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "expensetracker:"
}

var (
	backends = map[string]bool{"sqlite": true, "postgres": true, "file": true, "memory": true, "s3": true, "redis": true}
	schemes  = map[string]bool{"argon2id": true, "bcrypt": true, "legacy": true}
)

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if !backends[c.StoreBackend] {
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if !schemes[c.PasswordScheme] {
		return fmt.Errorf("unknown password scheme %q", c.PasswordScheme)
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("storage timeout must be positive, got %s", c.StorageTimeout)
	}
	if (c.StoreBackend == "sqlite" || c.StoreBackend == "postgres") && c.DatabaseDSN == "" {
		return fmt.Errorf("store backend %q requires a database DSN", c.StoreBackend)
	}
	if c.StoreBackend == "file" && c.StoreDir == "" {
		return fmt.Errorf("store backend %q requires a directory", c.StoreBackend)
	}
	return nil
}

// Load builds a Config from defaults, the optional config file, the
// environment and finally args (usually os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
