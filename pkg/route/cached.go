package route

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/photonlayout/pkg/cache"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/observability"
)

const cacheKeyType = "route"

// CachedRouter memoises a Router by request, obstacle snapshot and
// options. Cache failures never fail a route: a broken or unreachable
// cache only costs a fresh search.
type CachedRouter struct {
	inner Router
	opts  Options
	cache cache.Cache
	keyer cache.Keyer
}

// NewCachedRouter wraps inner, whose configuration is opts. A nil cache
// disables caching and a nil keyer uses the default.
func NewCachedRouter(inner Router, opts Options, c cache.Cache, keyer cache.Keyer) *CachedRouter {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedRouter{inner: inner, opts: opts, cache: c, keyer: keyer}
}

// Route returns the cached result for an identical earlier request, or
// routes and stores the result.
func (r *CachedRouter) Route(ctx context.Context, req Request, obstacles []geom.Polygon) (*Result, error) {
	key, ok := r.key(req, obstacles)
	if ok {
		if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
			var res Result
			if err := json.Unmarshal(data, &res); err == nil {
				observability.Cache().OnCacheHit(ctx, cacheKeyType)
				return &res, nil
			}
			_ = r.cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	res, err := r.inner.Route(ctx, req, obstacles)
	if err != nil || !ok {
		return res, err
	}
	if data, err := json.Marshal(res); err == nil {
		if cache.TrySet(ctx, r.cache, key, data, cache.TTLRoute) == nil {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return res, nil
}

func (r *CachedRouter) key(req Request, obstacles []geom.Polygon) (string, bool) {
	reqHash, err := cache.HashJSON(req)
	if err != nil {
		return "", false
	}
	obsHash, err := cache.HashJSON(obstacles)
	if err != nil {
		return "", false
	}
	return r.keyer.RouteKey(reqHash, obsHash, r.opts.KeyOpts()), true
}

var _ Router = (*CachedRouter)(nil)
