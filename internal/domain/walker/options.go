package walker

import (
	"time"

	"github.com/JolanDUBOIS/sport-index/pkg/logger"
)

type config struct {
	firstPage int
	maxItems  int
	before    *time.Time
	after     *time.Time
	ascending bool
	logger    logger.Logger
}

// Option configures a single walk.
type Option func(*config)

// WithFirstPage sets the page the walk starts from.
func WithFirstPage(page int) Option {
	return func(c *config) { c.firstPage = page }
}

// WithMaxItems caps the number of collected items. Zero or less means no cap.
func WithMaxItems(n int) Option {
	return func(c *config) { c.maxItems = n }
}

// WithBefore keeps only items strictly earlier than t.
func WithBefore(t time.Time) Option {
	return func(c *config) { c.before = &t }
}

// WithAfter keeps only items strictly later than t.
func WithAfter(t time.Time) Option {
	return func(c *config) { c.after = &t }
}

// WithAscending declares that the source lists items oldest first.
func WithAscending(asc bool) Option {
	return func(c *config) { c.ascending = asc }
}

// WithLogger sets a custom logger for the walk.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
