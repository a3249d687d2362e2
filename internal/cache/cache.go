package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/verity-group/claimcheck/internal/model"
)

// Lookup checks a persistent backend for a verdict computed in an earlier
// run. A nil result with a nil error means not found.
type Lookup func(ctx context.Context, signature string) (*model.ClaimResult, error)

// ComputeFunc performs the full verification for one claim when no cached
// verdict exists.
type ComputeFunc func(ctx context.Context) (*model.ClaimResult, error)

// VerdictCache guarantees at-most-once verification per claim signature.
// Three layers: an in-flight singleflight group, an in-memory TTL cache,
// and an optional persistent lookup.
type VerdictCache struct {
	mem    *gocache.Cache
	group  singleflight.Group
	lookup Lookup
}

func New(ttl time.Duration, lookup Lookup) *VerdictCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &VerdictCache{
		mem:    gocache.New(ttl, ttl/2),
		lookup: lookup,
	}
}

// Do returns the verdict for the given signature, computing it at most once
// across concurrent callers. The returned bool reports whether the result
// came from a cache layer rather than a fresh computation.
func (c *VerdictCache) Do(ctx context.Context, signature string, compute ComputeFunc) (*model.ClaimResult, bool, error) {
	if v, ok := c.mem.Get(signature); ok {
		return cachedCopy(v.(*model.ClaimResult)), true, nil
	}

	type outcome struct {
		result *model.ClaimResult
		cached bool
	}
	v, err, shared := c.group.Do(signature, func() (interface{}, error) {
		// Re-check under the group: a concurrent caller may have
		// populated the memory cache while we waited.
		if v, ok := c.mem.Get(signature); ok {
			return outcome{result: v.(*model.ClaimResult), cached: true}, nil
		}

		if c.lookup != nil {
			stored, err := c.lookup(ctx, signature)
			if err != nil {
				zap.L().Warn("verdict cache lookup failed",
					zap.String("signature", signature),
					zap.Error(err))
			} else if stored != nil {
				c.mem.SetDefault(signature, stored)
				return outcome{result: stored, cached: true}, nil
			}
		}

		result, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.mem.SetDefault(signature, result)
		return outcome{result: result, cached: false}, nil
	})
	if err != nil {
		return nil, false, err
	}

	out := v.(outcome)
	return cachedCopy(out.result), out.cached || shared, nil
}

// Invalidate drops the in-memory entry for a signature.
func (c *VerdictCache) Invalidate(signature string) {
	c.mem.Delete(signature)
}

// cachedCopy returns a shallow copy so callers can set per-request fields
// without mutating the cached value.
func cachedCopy(r *model.ClaimResult) *model.ClaimResult {
	cp := *r
	return &cp
}
