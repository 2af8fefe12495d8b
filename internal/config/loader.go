package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names and prefixes.
const (
	EnvPrefix     = "SPORTINDEX_"
	EnvConfigPath = "SPORTINDEX_CONFIG"
	EnvDotenvPath = "SPORTINDEX_DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional file, .env and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file if SPORTINDEX_CONFIG is set
//  3. .env file (SPORTINDEX_DOTENV, default ./.env) when present; it never
//     overrides variables already set in the process environment
//  4. env (prefix SPORTINDEX_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	dotenv := os.Getenv(EnvDotenvPath)
	if dotenv == "" {
		dotenv = defaultDotenv
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotenv, err)
	}

	// SPORTINDEX_MAX_RETRIES -> max_retries; comma-separated values become lists.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		switch key {
		case "cors_origins":
			return key, splitList(value)
		case "metrics_latency_buckets":
			if buckets, ok := parseFloats(value); ok {
				return key, buckets
			}
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Decode lists into nil slices so a shorter override replaces the default
	// instead of overwriting its leading elements.
	cfg := *base
	cfg.MetricsLatencyBuckets = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if cfg.MetricsLatencyBuckets == nil {
		cfg.MetricsLatencyBuckets = base.MetricsLatencyBuckets
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the rest of the process relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: max_retries must be at least 1", ErrInvalidConfig)
	case c.BaseDelayMS < 0 || c.InitialDelayMS < 0 || c.MaxDelayMS < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case !metricName.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	case c.MetricsSubsystem != "" && !metricName.MatchString(c.MetricsSubsystem):
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name", ErrInvalidConfig, c.MetricsSubsystem)
	case !ascending(c.MetricsLatencyBuckets):
		return fmt.Errorf("%w: metrics_latency_buckets must be positive and strictly ascending", ErrInvalidConfig)
	}
	return nil
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func ascending(buckets []float64) bool {
	if len(buckets) == 0 {
		return false
	}
	prev := 0.0
	for _, b := range buckets {
		if b <= prev {
			return false
		}
		prev = b
	}
	return true
}

// parseFloats reads a comma-separated list; ok is false on any bad entry.
func parseFloats(v string) ([]float64, bool) {
	parts := splitList(v)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
