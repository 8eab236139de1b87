// Package proc drives sync cycles: fetch every configured feed, merge the
// snapshots into the history store and report per-feed outcomes.
package proc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/junefeed/pkg/domain"
)

// Fetcher retrieves normalized items for a feed URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.RawItem, error)
}

// Store is the subset of the history store the processor drives
type Store interface {
	Merge(feedName string, raws []domain.RawItem) domain.SyncResult
	SetError(feedName, msg string)
	RemoveFeed(feedName string)
	FeedNames() []string
	Save(ctx context.Context) error
}

// Processor runs sync cycles against the store. Fetches are concurrent,
// merges are applied one at a time by the calling goroutine because the
// store's state is a single document.
type Processor struct {
	fetcher      Fetcher
	store        Store
	fetchTimeout time.Duration
	maxWorkers   int
}

// NewProcessor creates a processor with sane defaults for zero values
func NewProcessor(fetcher Fetcher, store Store, fetchTimeout time.Duration, maxWorkers int) *Processor {
	if fetchTimeout == 0 {
		fetchTimeout = 30 * time.Second
	}
	if maxWorkers == 0 {
		maxWorkers = 5
	}
	return &Processor{fetcher: fetcher, store: store, fetchTimeout: fetchTimeout, maxWorkers: maxWorkers}
}

// fetchResult carries one feed's fetch outcome back to the coordinator
type fetchResult struct {
	cfg   domain.FeedConfig
	items []domain.RawItem
	err   error
}

// Sync runs one full cycle over the configured feeds. Each feed gets a
// single fetch attempt with its own timeout; one feed's failure never
// aborts the others. After all merges the store is reconciled against the
// config list (feeds no longer configured are dropped) and saved once.
// Results are sorted by feed name. Cancellation drops results whose merge
// has not been applied yet; nothing partial is ever flushed. The returned
// error reports a failed save only, the one condition that cannot be
// recovered from.
func (p *Processor) Sync(ctx context.Context, configs []domain.FeedConfig) ([]domain.SyncResult, error) {
	lgr.Printf("[INFO] sync cycle started, %d feeds", len(configs))

	resCh := make(chan fetchResult, len(configs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers)

	for _, cfg := range configs {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, p.fetchTimeout)
			defer cancel()

			items, err := p.fetcher.Fetch(fctx, cfg.URL)
			select {
			case resCh <- fetchResult{cfg: cfg, items: items, err: err}:
			case <-gctx.Done():
			}
			return nil
		})
	}
	_ = g.Wait() // fetch goroutines never return errors, failures travel in fetchResult
	close(resCh)

	results := make([]domain.SyncResult, 0, len(configs))
	for res := range resCh {
		if ctx.Err() != nil {
			lgr.Printf("[WARN] sync cycle canceled, %d merges dropped", len(configs)-len(results))
			sort.Slice(results, func(i, j int) bool { return results[i].Feed < results[j].Feed })
			return results, nil // canceled cycle is never reconciled or saved
		}
		if res.err != nil {
			lgr.Printf("[WARN] fetch failed for %q: %v", res.cfg.Name, res.err)
			p.store.SetError(res.cfg.Name, res.err.Error())
			results = append(results, domain.SyncResult{Feed: res.cfg.Name, Error: res.err.Error()})
			continue
		}
		merged := p.store.Merge(res.cfg.Name, res.items)
		if len(merged.NewItems) > 0 {
			lgr.Printf("[INFO] %d new items from %q", len(merged.NewItems), res.cfg.Name)
		}
		results = append(results, merged)
	}

	p.reconcile(configs)

	if err := p.store.Save(ctx); err != nil {
		return results, fmt.Errorf("save after sync: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Feed < results[j].Feed })
	lgr.Printf("[INFO] sync cycle completed, %d results", len(results))
	return results, nil
}

// reconcile drops stored histories for feeds no longer configured,
// this is how a feed removal cascades into the store
func (p *Processor) reconcile(configs []domain.FeedConfig) {
	configured := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		configured[cfg.Name] = struct{}{}
	}

	for _, name := range p.store.FeedNames() {
		if _, ok := configured[name]; !ok {
			lgr.Printf("[INFO] feed %q no longer configured, history dropped", name)
			p.store.RemoveFeed(name)
		}
	}
}
