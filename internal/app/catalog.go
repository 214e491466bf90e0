package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotel_merge/internal/domain"
)

// CatalogService answers catalog queries cache-aside: a hit is served from
// the cache, a miss runs aggregate -> reconcile -> filter/paginate and stores
// only the narrowed result.
type CatalogService struct {
	agg      *Aggregator
	cache    domain.Cache
	listTTL  time.Duration
	hotelTTL time.Duration
	sf       singleflight.Group
}

func NewCatalogService(agg *Aggregator, c domain.Cache, listTTL, hotelTTL time.Duration) *CatalogService {
	return &CatalogService{agg: agg, cache: c, listTTL: listTTL, hotelTTL: hotelTTL}
}

func (s *CatalogService) ListHotels(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	q = q.WithDefaults()
	q.HotelIDs = normalizeIDs(q.HotelIDs)
	key := ListKey(q)

	var out domain.HotelsPage
	ok, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		return domain.HotelsPage{}, s.cacheErr("get", key, err)
	}
	if ok {
		return out, nil
	}

	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		agg, err := s.agg.Aggregate(ctx)
		if err != nil {
			return nil, err
		}
		page := buildPage(agg, q)
		if err := s.cache.Set(ctx, key, page, s.ttlFor(s.listTTL, agg)); err != nil {
			return nil, s.cacheErr("set", key, err)
		}
		return page, nil
	})
	if err != nil {
		return domain.HotelsPage{}, err
	}
	return v.(domain.HotelsPage), nil
}

func (s *CatalogService) GetHotel(ctx context.Context, id string) (domain.HotelResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.HotelResult{}, domain.ErrNotFound
	}
	key := HotelKey(id)

	var out domain.HotelResult
	ok, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		return domain.HotelResult{}, s.cacheErr("get", key, err)
	}
	if ok {
		return out, nil
	}

	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		agg, err := s.agg.Aggregate(ctx)
		if err != nil {
			return nil, err
		}
		h, found := FindHotel(agg.Hotels, id)
		if !found {
			return nil, domain.ErrNotFound
		}
		res := domain.HotelResult{Hotel: h, FailedSuppliers: agg.FailedSuppliers()}
		if err := s.cache.Set(ctx, key, res, s.ttlFor(s.hotelTTL, agg)); err != nil {
			return nil, s.cacheErr("set", key, err)
		}
		return res, nil
	})
	if err != nil {
		return domain.HotelResult{}, err
	}
	return v.(domain.HotelResult), nil
}

// shared runs fn once per key across concurrent misses, on a context that
// ignores caller cancellation (supplier timeouts still bound it). Each
// caller stops waiting when its own ctx is done.
func (s *CatalogService) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (any, error) { return fn(detached) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

// ttlFor shortens the TTL of degraded results so a recovered supplier is
// picked up without waiting out the long list window.
func (s *CatalogService) ttlFor(base time.Duration, agg Aggregation) int {
	if len(agg.Failed) > 0 && s.hotelTTL < base {
		base = s.hotelTTL
	}
	return ttlSeconds(base)
}

func (s *CatalogService) cacheErr(op, key string, err error) error {
	log.Error().Err(err).Str("op", op).Str("key", key).Msg("cache unavailable")
	return fmt.Errorf("%w: %s %s: %w", domain.ErrCacheUnavailable, op, key, err)
}

func buildPage(agg Aggregation, q domain.HotelsQuery) domain.HotelsPage {
	return domain.HotelsPage{
		Items:           Paginate(FilterHotels(agg.Hotels, q.DestinationID, q.HotelIDs), q.Page, q.Limit),
		Page:            q.Page,
		Limit:           q.Limit,
		FailedSuppliers: agg.FailedSuppliers(),
	}
}

/********** cache keys **********/

// ListKey renders (destinationId, sorted ids, page, limit). Callers pass a
// query that already went through WithDefaults and normalizeIDs.
func ListKey(q domain.HotelsQuery) string {
	dest := "_"
	if q.DestinationID != 0 {
		dest = strconv.FormatInt(q.DestinationID, 10)
	}
	return fmt.Sprintf("hotels:%s:%s:%d:%d", dest, strings.Join(q.HotelIDs, ","), q.Page, q.Limit)
}

func HotelKey(id string) string { return "hotel:" + id }

func ttlSeconds(d time.Duration) int {
	if n := int(d.Seconds()); n > 0 {
		return n
	}
	return 1
}
