package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/retail-insights-engine/internal/cache"
	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
)

// Acquirer hands out a connection scoped to one request.
type Acquirer interface {
	Acquire(ctx context.Context) (repository.Conn, error)
}

// ResultCache keeps serialized results for TTL. A nil ResultCache, a nil
// Cache or a non-positive TTL disables caching.
type ResultCache struct {
	Cache cache.Cache
	TTL   time.Duration
}

// PercentageChange compares current against previous. Growth from a zero
// baseline is reported as 100.
func PercentageChange(current, previous float64) float64 {
	if previous > 0 {
		return (current - previous) / previous * 100
	}
	if current == 0 {
		return 0
	}
	return 100
}

func cached[T any](ctx context.Context, rc *ResultCache, key string, fn func() (T, error)) (T, error) {
	if rc == nil || rc.Cache == nil || rc.TTL <= 0 {
		return fn()
	}

	b, err := rc.Cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, cache.ErrMiss):
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}

	v, err := fn()
	if err != nil {
		return v, err
	}

	if b, err := json.Marshal(v); err == nil {
		if err := rc.Cache.Set(ctx, key, b, rc.TTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return v, nil
}

func cacheKey(op string, parts ...any) string {
	b, _ := json.Marshal(parts)
	return op + ":" + hashID(string(b))
}

func hashID(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// requestLog carries the request fields logged with store failures.
type requestLog struct {
	op      string
	metric  string
	level   query.Level
	filters query.Filters
	window  daterange.Window
}

func (r requestLog) storeFailure(err error) error {
	log.Error().Err(err).
		Str("op", r.op).
		Str("metric", r.metric).
		Str("comparison_level", string(r.level)).
		Object("filters", filterLog(r.filters)).
		Str("start_date", r.window.Current.StartDate()).
		Str("end_date", r.window.Current.EndDate()).
		Msg("fact store query failed")
	return err
}

type filterLog query.Filters

func (f filterLog) MarshalZerologObject(e *zerolog.Event) {
	strs := func(key string, values []string) {
		if len(values) > 0 {
			e.Strs(key, values)
		}
	}
	regions := make([]string, len(f.Regions))
	for i, r := range f.Regions {
		regions[i] = string(r)
	}
	brands := make([]string, len(f.Brands))
	for i, b := range f.Brands {
		brands[i] = string(b)
	}
	strs("regions", regions)
	strs("store_ids", f.StoreIDs)
	strs("store_names", f.StoreNames)
	strs("brands", brands)
	strs("product_ids", f.ProductIDs)
	strs("product_names", f.ProductNames)
}
