package service

import (
	"fmt"

	"github.com/JolanDUBOIS/sport-index/internal/config"
	"github.com/JolanDUBOIS/sport-index/internal/endpoints"
	"github.com/JolanDUBOIS/sport-index/internal/provider"
	"github.com/JolanDUBOIS/sport-index/internal/transport"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
)

// FromConfig builds the transport, provider and service stack described by
// cfg. Every layer logs through a child of l.
func FromConfig(cfg *config.Config, l logger.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.NamedOrNop("sportindex")
	}
	client, err := transport.NewHTTPClient(cfg.RequestTimeout())
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}
	fetcher := transport.NewFetcher(
		transport.WithHTTPClient(client),
		transport.WithUserAgent(cfg.UserAgent),
		transport.WithMaxRetries(cfg.MaxRetries),
		transport.WithBaseDelay(cfg.BaseDelay()),
		transport.WithInitialDelay(cfg.InitialDelay()),
		transport.WithMaxDelay(cfg.MaxDelay()),
		transport.WithLogger(l.Named("transport")),
	)
	upstream := provider.New(fetcher, endpoints.NewResolver(cfg.BaseURL),
		provider.WithLogger(l.Named("provider")))

	return New(
		WithProvider(upstream),
		WithLogger(l.Named("service")),
		WithDefaultMaxEvents(cfg.MaxEvents),
	), nil
}
