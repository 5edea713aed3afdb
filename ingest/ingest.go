// Package ingest loads OHLCV history for a ticker universe into the stocks
// table served by the API.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-dashboard/cache"
	"stock-dashboard/logger"
	"stock-dashboard/models"
)

// Sink appends records to storage.
type Sink interface {
	Append(ctx context.Context, records []models.StockRecord) error
}

// Summary describes one load.
type Summary struct {
	Tickers  int
	Failed   []string
	Rows     int
	Duration time.Duration
}

// Loader fetches every ticker with at most Workers requests in flight and
// appends the combined, deduplicated rows in one write.
type Loader struct {
	source  Source
	sink    Sink
	cache   cache.Cache
	workers int
	log     logger.Interface
}

// NewLoader builds a loader. c may be nil; when set, the API's cached
// responses for loaded tickers are dropped after a successful write.
func NewLoader(source Source, sink Sink, c cache.Cache, workers int, log logger.Interface) *Loader {
	if workers <= 0 {
		workers = 1
	}
	return &Loader{source: source, sink: sink, cache: c, workers: workers, log: log}
}

type rowKey struct {
	at     int64
	ticker string
}

// Run loads tickers. A ticker that fails to fetch is logged and skipped;
// Run fails only when the write fails or ctx is canceled.
func (l *Loader) Run(ctx context.Context, tickers []string) (Summary, error) {
	start := time.Now()
	summary := Summary{Tickers: len(tickers)}

	var (
		mu   sync.Mutex
		all  []models.StockRecord
		seen = make(map[rowKey]bool)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			records, err := l.source.History(gctx, ticker)
			if err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return ctx.Err()
				}
				l.log.Error(fmt.Errorf("error processing data for %s: %w", ticker, err), logger.Field{Key: "ticker", Value: ticker})
				mu.Lock()
				summary.Failed = append(summary.Failed, ticker)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, r := range records {
				k := rowKey{at: r.Datetime.UnixNano(), ticker: r.Ticker}
				if seen[k] {
					continue
				}
				seen[k] = true
				all = append(all, r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	sort.Strings(summary.Failed)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Ticker != all[j].Ticker {
			return all[i].Ticker < all[j].Ticker
		}
		return all[i].Datetime.Before(all[j].Datetime)
	})

	if err := l.sink.Append(ctx, all); err != nil {
		return summary, fmt.Errorf("append %d rows: %w", len(all), err)
	}
	summary.Rows = len(all)
	summary.Duration = time.Since(start)

	l.invalidate(ctx, tickers)
	l.log.Info("ingest finished",
		logger.Field{Key: "tickers", Value: summary.Tickers},
		logger.Field{Key: "failed", Value: len(summary.Failed)},
		logger.Field{Key: "rows", Value: summary.Rows},
		logger.Field{Key: "duration", Value: summary.Duration.String()},
	)
	return summary, nil
}

func (l *Loader) invalidate(ctx context.Context, tickers []string) {
	if l.cache == nil {
		return
	}
	keys := make([]string, 0, len(tickers)+1)
	keys = append(keys, cache.LatestKey)
	for _, t := range tickers {
		keys = append(keys, cache.HistoryKey(t))
	}
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.log.Error(err)
	}
}
