// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON or TOML config file
// and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// Config is the path to the Config file.
	Config string

	// SecretKey signs new access tokens.
	SecretKey string `env:"JWT_SECRET"`

	// PreviousSecretKeys are retired signing keys still accepted when verifying.
	PreviousSecretKeys []string `env:"JWT_PREVIOUS_SECRETS" env-separator:","`

	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL"`

	// RefreshTokenTTL is the lifetime of a refresh-token session.
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL"`

	// MaxSessions caps stored sessions per user, 0 disables the cap.
	MaxSessions int `env:"MAX_SESSIONS"`

	// SessionCleanupInterval is how often expired sessions are purged.
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL"`

	// LogLevel is the zap level name.
	LogLevel string `env:"LOG_LEVEL"`

	// AllowedOrigins lists CORS origins.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:","`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `env:"TLS_CERT"`
	TLSKey  string `env:"TLS_KEY"`
}

// fileOptions mirrors Options as it appears in a config file. Pointers mark
// keys that are present; durations are Go duration strings.
type fileOptions struct {
	Port                   *string  `json:"port" toml:"port"`
	DatabaseDSN            *string  `json:"database_dsn" toml:"database_dsn"`
	SecretKey              *string  `json:"secret_key" toml:"secret_key"`
	PreviousSecretKeys     []string `json:"previous_secret_keys" toml:"previous_secret_keys"`
	AccessTokenTTL         *string  `json:"access_token_ttl" toml:"access_token_ttl"`
	RefreshTokenTTL        *string  `json:"refresh_token_ttl" toml:"refresh_token_ttl"`
	MaxSessions            *int     `json:"max_sessions" toml:"max_sessions"`
	SessionCleanupInterval *string  `json:"session_cleanup_interval" toml:"session_cleanup_interval"`
	LogLevel               *string  `json:"log_level" toml:"log_level"`
	AllowedOrigins         []string `json:"allowed_origins" toml:"allowed_origins"`
	TLSCert                *string  `json:"tls_cert" toml:"tls_cert"`
	TLSKey                 *string  `json:"tls_key" toml:"tls_key"`
}

// ErrNoSecret is returned by Validate when no signing key is configured.
var ErrNoSecret = errors.New("config: secret key is required")

// options holds the current configuration values.
var options = defaults()

func defaults() *Options {
	return &Options{
		Port:                   "localhost:8080",
		Config:                 "config.json",
		AccessTokenTTL:         15 * time.Minute,
		RefreshTokenTTL:        10 * 24 * time.Hour,
		MaxSessions:            10,
		SessionCleanupInterval: time.Hour,
		LogLevel:               "info",
		AllowedOrigins:         []string{"*"},
	}
}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", options.Port, "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", options.Config, "path to config file")
	flag.StringVar(&options.Config, "c", options.Config, "path to config file (shorthand)")
	flag.StringVar(&options.SecretKey, "k", "", "access token signing key")
	flag.Func("previous-keys", "comma separated retired signing keys", func(s string) error {
		options.PreviousSecretKeys = splitList(s)
		return nil
	})
	flag.DurationVar(&options.AccessTokenTTL, "access-ttl", options.AccessTokenTTL, "access token lifetime")
	flag.DurationVar(&options.RefreshTokenTTL, "refresh-ttl", options.RefreshTokenTTL, "refresh session lifetime")
	flag.IntVar(&options.MaxSessions, "max-sessions", options.MaxSessions, "sessions kept per user (0 = unbounded)")
	flag.DurationVar(&options.SessionCleanupInterval, "session-cleanup", options.SessionCleanupInterval, "expired session purge interval")
	flag.StringVar(&options.LogLevel, "l", options.LogLevel, "log level")
	flag.Func("origins", "comma separated CORS origins", func(s string) error {
		options.AllowedOrigins = splitList(s)
		return nil
	})
	flag.StringVar(&options.TLSCert, "tls-cert", "", "TLS certificate file")
	flag.StringVar(&options.TLSKey, "tls-key", "", "TLS key file")
}

// Parse parses the command-line flags, the config file and environment
// variables, in that order of increasing precedence. It returns a pointer to
// the Options struct containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	if err := load(options); err != nil {
		log.Fatalf("error while loading config: %v", err)
	}
	return options
}

// load applies the config file and the environment on top of o.
func load(o *Options) error {
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			if err := applyFile(o, o.Config); err != nil {
				return err
			}
		}
	}

	if err := cleanenv.ReadEnv(o); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

func applyFile(o *Options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	var f fileOptions
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	setString(&o.Port, f.Port)
	setString(&o.DatabaseDSN, f.DatabaseDSN)
	setString(&o.SecretKey, f.SecretKey)
	setString(&o.LogLevel, f.LogLevel)
	setString(&o.TLSCert, f.TLSCert)
	setString(&o.TLSKey, f.TLSKey)
	if f.PreviousSecretKeys != nil {
		o.PreviousSecretKeys = f.PreviousSecretKeys
	}
	if f.AllowedOrigins != nil {
		o.AllowedOrigins = f.AllowedOrigins
	}
	if f.MaxSessions != nil {
		o.MaxSessions = *f.MaxSessions
	}

	for _, d := range []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"access_token_ttl", f.AccessTokenTTL, &o.AccessTokenTTL},
		{"refresh_token_ttl", f.RefreshTokenTTL, &o.RefreshTokenTTL},
		{"session_cleanup_interval", f.SessionCleanupInterval, &o.SessionCleanupInterval},
	} {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

// Validate checks that the options are usable by the server.
func (o *Options) Validate() error {
	if o.SecretKey == "" {
		return ErrNoSecret
	}
	if o.AccessTokenTTL <= 0 || o.RefreshTokenTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	if o.MaxSessions < 0 {
		return errors.New("config: max sessions must not be negative")
	}
	if o.SessionCleanupInterval <= 0 {
		return errors.New("config: session cleanup interval must be positive")
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
