package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sourcegraph/conc/pool"
)

// resolveTitles looks up every id with at most workers lookups in flight.
// The result is index-aligned with ids; failed lookups yield nil.
func resolveTitles(ctx context.Context, meta MetadataClient, workers int, ids []string, l *log.Helper) []*TitleDetail {
	return resolveEach(ctx, workers, ids, l, meta.GetByID)
}

func resolveEach(ctx context.Context, workers int, keys []string, l *log.Helper, lookup func(context.Context, string) (*TitleDetail, error)) []*TitleDetail {
	out := make([]*TitleDetail, len(keys))
	if len(keys) == 0 {
		return out
	}
	if workers <= 0 {
		workers = 1
	}

	p := pool.New().WithMaxGoroutines(workers)
	for i, key := range keys {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			d, err := lookup(ctx, key)
			if err != nil {
				l.Warnf("failed to resolve title %s: %v", key, err)
				return
			}
			out[i] = d
		})
	}
	p.Wait()
	return out
}
