package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/expensetracker/internal/flagx"
	"github.com/dmitrijs2005/expensetracker/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. It exists so durations can be written
// as "5s" and so only keys present in the file override the current values.
type fileConfig struct {
	StoreBackend   string         `json:"store_backend" yaml:"store_backend"`
	DatabaseDSN    string         `json:"database_dsn" yaml:"database_dsn"`
	StoreDir       string         `json:"store_dir" yaml:"store_dir"`
	StorageTimeout timex.Duration `json:"storage_timeout" yaml:"storage_timeout"`

	PasswordScheme    string `json:"password_scheme" yaml:"password_scheme"`
	GenericAuthErrors bool   `json:"generic_auth_errors" yaml:"generic_auth_errors"`

	EndpointAddrGRPC string `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	RemoteAddr       string `json:"remote_addr" yaml:"remote_addr"`

	LogLevel   string `json:"log_level" yaml:"log_level"`
	LogFormat  string `json:"log_format" yaml:"log_format"`
	LogBackend string `json:"log_backend" yaml:"log_backend"`

	S3Bucket       string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Prefix       string `json:"s3_prefix" yaml:"s3_prefix"`

	RedisAddr     string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`
	RedisPrefix   string `json:"redis_prefix" yaml:"redis_prefix"`
}

func toFile(c *Config) *fileConfig {
	return &fileConfig{
		StoreBackend:      c.StoreBackend,
		DatabaseDSN:       c.DatabaseDSN,
		StoreDir:          c.StoreDir,
		StorageTimeout:    timex.Duration{Duration: c.StorageTimeout},
		PasswordScheme:    c.PasswordScheme,
		GenericAuthErrors: c.GenericAuthErrors,
		EndpointAddrGRPC:  c.EndpointAddrGRPC,
		RemoteAddr:        c.RemoteAddr,
		LogLevel:          c.LogLevel,
		LogFormat:         c.LogFormat,
		LogBackend:        c.LogBackend,
		S3Bucket:          c.S3Bucket,
		S3Region:          c.S3Region,
		S3BaseEndpoint:    c.S3BaseEndpoint,
		S3AccessKey:       c.S3AccessKey,
		S3SecretKey:       c.S3SecretKey,
		S3Prefix:          c.S3Prefix,
		RedisAddr:         c.RedisAddr,
		RedisPassword:     c.RedisPassword,
		RedisDB:           c.RedisDB,
		RedisPrefix:       c.RedisPrefix,
	}
}

func (f *fileConfig) apply(c *Config) {
	c.StoreBackend = f.StoreBackend
	c.DatabaseDSN = f.DatabaseDSN
	c.StoreDir = f.StoreDir
	c.StorageTimeout = f.StorageTimeout.Duration
	c.PasswordScheme = f.PasswordScheme
	c.GenericAuthErrors = f.GenericAuthErrors
	c.EndpointAddrGRPC = f.EndpointAddrGRPC
	c.RemoteAddr = f.RemoteAddr
	c.LogLevel = f.LogLevel
	c.LogFormat = f.LogFormat
	c.LogBackend = f.LogBackend
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
	c.S3AccessKey = f.S3AccessKey
	c.S3SecretKey = f.S3SecretKey
	c.S3Prefix = f.S3Prefix
	c.RedisAddr = f.RedisAddr
	c.RedisPassword = f.RedisPassword
	c.RedisDB = f.RedisDB
	c.RedisPrefix = f.RedisPrefix
}

// parseFile overlays cfg with the file named by -c/-config, if any.
// Keys missing from the file keep their current values.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := toFile(cfg)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}
