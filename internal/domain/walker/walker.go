// Package walker drives a page-fetch function over a paginated listing,
// applying time bounds and an item cap, and stopping as soon as later pages
// cannot contribute.
package walker

import (
	"context"
	"fmt"
	"time"

	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
	"github.com/JolanDUBOIS/sport-index/pkg/metrics"
)

// PageFunc fetches one page of a listing.
type PageFunc[T any] func(ctx context.Context, page int) (model.PageResult[T], error)

// TimeKey extracts an item's temporal key. Items without one report false
// and are never filtered by the bounds.
type TimeKey[T any] func(item T) (time.Time, bool)

// Stop reasons reported to metrics and logs.
const (
	StopEmptyPage = "empty_page"
	StopNoMore    = "no_more_pages"
	StopMaxItems  = "max_items"
	StopBefore    = "before_bound"
	StopAfter     = "after_bound"
)

// Walk fetches pages in strict sequence starting at the first page and
// returns the accepted items in source order.
//
// With before set, an item at or after it ends the walk when the listing is
// ascending and is merely skipped otherwise. With after set the rule is
// mirrored: an item at or before it ends a descending walk and is skipped in
// an ascending one. A page is fully evaluated before the next is requested.
func Walk[T any](ctx context.Context, fetch PageFunc[T], key TimeKey[T], opts ...Option) ([]T, error) {
	cfg := config{logger: logger.NamedOrNop("walker")}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		collected []T
		reason    string
		pages     int
	)
	page := cfg.firstPage
	for reason == "" {
		if err := ctx.Err(); err != nil {
			return collected, err
		}
		res, err := fetch(ctx, page)
		if err != nil {
			return collected, fmt.Errorf("page %d: %w", page, err)
		}
		pages++
		metrics.RecordWalkerPage()
		if len(res.Items) == 0 {
			reason = StopEmptyPage
			break
		}

		accepted := 0
		for _, item := range res.Items {
			if t, ok := key(item); ok {
				if cfg.before != nil && !t.Before(*cfg.before) {
					if cfg.ascending {
						reason = StopBefore
						break
					}
					continue
				}
				if cfg.after != nil && !t.After(*cfg.after) {
					if !cfg.ascending {
						reason = StopAfter
						break
					}
					continue
				}
			}
			collected = append(collected, item)
			accepted++
			if cfg.maxItems > 0 && len(collected) >= cfg.maxItems {
				reason = StopMaxItems
				break
			}
		}
		metrics.RecordWalkerItems(accepted)

		if reason == "" && !res.HasMore {
			reason = StopNoMore
		}
		page++
	}

	metrics.RecordWalkerStop(reason)
	cfg.logger.Debug(ctx, "Walk finished",
		logger.String("reason", reason),
		logger.Int("pages", pages),
		logger.Int("items", len(collected)))
	return collected, nil
}
