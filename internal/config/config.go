// Package config defines process configuration and its loading hooks.
//
// Durations are expressed in milliseconds so they map cleanly onto flat
// YAML keys and environment variables.
package config

import (
	"time"

	"github.com/JolanDUBOIS/sport-index/pkg/metrics"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BaseURL is the upstream API root every endpoint template hangs off.
	BaseURL string `koanf:"base_url"`

	// UserAgent is sent with every upstream request.
	UserAgent string `koanf:"user_agent"`

	// MaxRetries is the number of GET attempts per fetch.
	MaxRetries int `koanf:"max_retries"`

	// BaseDelayMS seeds the exponential backoff between attempts.
	BaseDelayMS int `koanf:"base_delay_ms"`

	// InitialDelayMS is the politeness wait before the first attempt.
	InitialDelayMS int `koanf:"initial_delay_ms"`

	// MaxDelayMS caps a single backoff wait.
	MaxDelayMS int `koanf:"max_delay_ms"`

	// RequestTimeoutMS bounds a single HTTP round-trip.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// MaxEvents caps event listings when the caller does not give a limit.
	MaxEvents int `koanf:"max_events"`

	// CORSOrigins lists origins allowed to call the HTTP API.
	CORSOrigins []string `koanf:"cors_origins"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLatencyBuckets are the histogram bounds in seconds, ascending.
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		BaseURL:           "https://www.sofascore.com/api/v1",
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
		MaxRetries:        3,
		BaseDelayMS:       5_000,
		InitialDelayMS:    1_000,
		MaxDelayMS:        30_000,
		RequestTimeoutMS:  15_000,
		MaxEvents:         50,
		CORSOrigins:       []string{},
		ShutdownTimeoutMS: 30_000,
		MetricsNamespace:  "sportindex",
		MetricsSubsystem:  "core",
		MetricsLatencyBuckets: []float64{
			0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		},
	}
}

// BaseDelay returns BaseDelayMS as a duration.
func (c *Config) BaseDelay() time.Duration { return ms(c.BaseDelayMS) }

// InitialDelay returns InitialDelayMS as a duration.
func (c *Config) InitialDelay() time.Duration { return ms(c.InitialDelayMS) }

// MaxDelay returns MaxDelayMS as a duration.
func (c *Config) MaxDelay() time.Duration { return ms(c.MaxDelayMS) }

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration { return ms(c.RequestTimeoutMS) }

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration { return ms(c.ShutdownTimeoutMS) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// MetricsOptions maps the metrics settings onto metrics.Configure options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithLatencyBuckets(c.MetricsLatencyBuckets),
	}
}
