package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_merge/internal/domain"
)

// Warm aggregates once and writes the list entry of every query, at most
// workers writes in flight. It returns how many entries were stored.
func (s *CatalogService) Warm(ctx context.Context, queries []domain.HotelsQuery, workers int) (int, error) {
	if len(queries) == 0 {
		return 0, nil
	}
	if workers <= 0 {
		workers = 1
	}
	agg, err := s.agg.Aggregate(ctx)
	if err != nil {
		return 0, err
	}

	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		stored int
		errs   []error
	)
	for _, q := range queries {
		q = q.WithDefaults()
		q.HotelIDs = normalizeIDs(q.HotelIDs)

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(q domain.HotelsQuery) {
			defer wg.Done()
			defer sem.Release(1)

			key := ListKey(q)
			if err := s.cache.Set(ctx, key, buildPage(agg, q), s.ttlFor(s.listTTL, agg)); err != nil {
				log.Warn().Str("key", key).Err(err).Msg("warm failed")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%w: set %s: %w", domain.ErrCacheUnavailable, key, err))
				mu.Unlock()
				return
			}
			mu.Lock()
			stored++
			mu.Unlock()
		}(q)
	}
	wg.Wait()
	return stored, errors.Join(errs...)
}
