// Package ratelimiter implements an in-memory token bucket limiter keyed by string.
//
// Each key gets Capacity tokens and regains RefillRate tokens every RefillInterval:
//
//	limiter, err := ratelimiter.NewMemoryStore(ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: 6 * time.Second,
//	})
//
//	res, err := limiter.Allow(ctx, clientIP)
//	if !res.Allowed {
//		// reject, retry after res.RetryAfter()
//	}
//
// Run removes buckets that have been idle long enough to be full again; it fits errgroup:
//
//	g.Go(limiter.Run(ctx))
package ratelimiter
