package shared

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MapTickers applies fn to every ticker concurrently, running at most limit
// invocations at a time (limit <= 0 means unbounded). Results are keyed by
// ticker. The first error cancels the context passed to outstanding calls.
func MapTickers[T any](ctx context.Context, tickers []string, limit int,
	fn func(ctx context.Context, ticker string) (T, error)) (map[string]T, error) {
	results := make(map[string]T, len(tickers))
	if len(tickers) == 0 {
		return results, nil
	}

	var mtx sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, ticker := range tickers {
		g.Go(func() error {
			res, err := fn(ctx, ticker)
			if err != nil {
				return err
			}

			mtx.Lock()
			results[ticker] = res
			mtx.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
