package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds process-level settings for the gradebook CLI.
type Config struct {
	// DBPath is the SQLite run archive. Empty means the default XDG path.
	DBPath string `env:"DB"`

	// PolicyFile is an optional JSON grading policy. Empty means the
	// built-in course policy.
	PolicyFile string `env:"POLICY"`

	Log LogConfig `envPrefix:"LOG_"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// File enables a rotating JSON log in addition to the console.
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"10" validate:"gte=1"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3" validate:"gte=0"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"28" validate:"gte=0"`
}

// envPrefix namespaces every variable, e.g. GRADEBOOK_LOG_LEVEL.
const envPrefix = "GRADEBOOK_"

var validate = validator.New()

// DefaultConfig returns a Config with defaults applied and no environment.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// FromEnv builds a Config from GRADEBOOK_* environment variables. Entries in
// dotenvPath fill in variables the process environment leaves unset; a
// missing file is ignored.
func FromEnv(dotenvPath string) (Config, error) {
	vars, err := readDotEnv(dotenvPath)
	if err != nil {
		return Config{}, err
	}
	maps.Copy(vars, env.ToMap(os.Environ()))
	return FromMap(vars)
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// FromMap builds a Config from an explicit variable map, for tests.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: envPrefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
