package routing

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"safar/internal/domain"
	"safar/internal/geo"
)

// Config holds route resolver tuning. Zero values fall back to the
// defaults below.
type Config struct {
	ProviderTimeout time.Duration // per provider attempt
	CacheTTL        time.Duration
	MaxCacheEntries int
	SweepInterval   time.Duration
	Retry           RetryPolicy
	// FallbackSpeedsKmh derives fallback duration from the haversine
	// distance when the provider is unavailable.
	FallbackSpeedsKmh map[domain.TravelProfile]float64
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{
		ProviderTimeout: 10 * time.Second,
		CacheTTL:        5 * time.Minute,
		MaxCacheEntries: 1000,
		SweepInterval:   time.Minute,
		Retry:           DefaultRetryPolicy(),
		FallbackSpeedsKmh: map[domain.TravelProfile]float64{
			domain.ProfileDriving: 25,
			domain.ProfileCycling: 15,
			domain.ProfileWalking: 5,
		},
	}
}

// cacheEntry is owned exclusively by the resolver and never exposed.
type cacheEntry struct {
	result    domain.RouteResult
	createdAt time.Time
}

// inflightCall is one live provider resolution shared by all coalesced
// waiters for a key.
type inflightCall struct {
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	waiters int // guarded by Resolver.mu
	result  domain.RouteResult
	err     error
}

// Resolver resolves distance/duration for origin/destination pairs via
// cache, request coalescing, the external directions provider with retry,
// and a haversine fallback. Safe for concurrent use; a single mutex guards
// the cache and in-flight maps so coalescing holds (at most one live
// provider call per key).
type Resolver struct {
	provider  DirectionsProvider
	validator *geo.Validator
	cfg       Config
	now       func() time.Time

	mu       sync.Mutex
	cache    map[string]*cacheEntry
	inflight map[string]*inflightCall

	stop     chan struct{}
	stopOnce sync.Once
}

// NewResolver creates a Resolver and starts its background cache sweep.
// Call Close to stop the sweep.
func NewResolver(provider DirectionsProvider, validator *geo.Validator, cfg Config) *Resolver {
	def := DefaultConfig()
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = def.ProviderTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.MaxCacheEntries <= 0 {
		cfg.MaxCacheEntries = def.MaxCacheEntries
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = def.Retry
	}
	if cfg.FallbackSpeedsKmh == nil {
		cfg.FallbackSpeedsKmh = def.FallbackSpeedsKmh
	}

	r := &Resolver{
		provider:  provider,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
		cache:     make(map[string]*cacheEntry),
		inflight:  make(map[string]*inflightCall),
		stop:      make(chan struct{}),
	}
	go r.sweeper()
	return r
}

// Close stops the background sweep.
func (r *Resolver) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Resolve returns the route for the query. Provider failures degrade to a
// haversine estimate; the only caller-visible errors are invalid
// coordinates, the geo-fence, an affirmative no-route answer, and the
// caller's own cancellation.
func (r *Resolver) Resolve(ctx context.Context, q domain.RouteQuery) (domain.RouteResult, error) {
	if err := r.validator.Validate(q.Origin); err != nil {
		return domain.RouteResult{}, err
	}
	if err := r.validator.Validate(q.Destination); err != nil {
		return domain.RouteResult{}, err
	}
	if !r.validator.WithinServiceArea(q.Origin) || !r.validator.WithinServiceArea(q.Destination) {
		return domain.RouteResult{}, ErrServiceAreaRestricted
	}
	if !q.Profile.Valid() {
		q.Profile = domain.ProfileDriving
	}

	key := q.CacheKey()

	r.mu.Lock()
	if e, ok := r.cache[key]; ok && r.now().Sub(e.createdAt) < r.cfg.CacheTTL {
		res := e.result
		r.mu.Unlock()
		res.Cached = true
		return res, nil
	}

	if call, ok := r.inflight[key]; ok {
		call.waiters++
		r.mu.Unlock()
		return r.await(ctx, call)
	}

	// The in-flight operation outlives any single caller: it carries the
	// request values but not the first caller's cancellation.
	opCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	call := &inflightCall{ctx: opCtx, cancel: cancel, done: make(chan struct{}), waiters: 1}
	r.inflight[key] = call
	r.mu.Unlock()

	go r.run(key, q, call)
	return r.await(ctx, call)
}

// await blocks until the shared call finishes or the caller cancels.
// Cancelling detaches only this waiter; the provider call is aborted only
// when the last waiter leaves.
func (r *Resolver) await(ctx context.Context, call *inflightCall) (domain.RouteResult, error) {
	select {
	case <-call.done:
		return call.result, call.err
	case <-ctx.Done():
		r.mu.Lock()
		call.waiters--
		last := call.waiters == 0
		r.mu.Unlock()
		if last {
			call.cancel()
		}
		return domain.RouteResult{}, ctx.Err()
	}
}

// run performs the provider resolution for one key and publishes the result
// to all waiters. It always clears the in-flight entry, and never caches an
// outcome that exists only because every caller cancelled.
func (r *Resolver) run(key string, q domain.RouteQuery, call *inflightCall) {
	result, err := r.fetch(call.ctx, q)

	r.mu.Lock()
	delete(r.inflight, key)
	if err == nil && call.ctx.Err() == nil {
		r.storeLocked(key, result)
	}
	r.mu.Unlock()

	call.result, call.err = result, err
	call.cancel()
	close(call.done)
}

// fetch calls the provider under the retry policy and degrades to a
// haversine estimate when the provider cannot answer.
func (r *Resolver) fetch(ctx context.Context, q domain.RouteQuery) (domain.RouteResult, error) {
	var resp DirectionsResponse
	err := r.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.ProviderTimeout)
		defer cancel()

		var callErr error
		resp, callErr = r.provider.Directions(attemptCtx, DirectionsRequest{
			Origin:      q.Origin,
			Destination: q.Destination,
			Profile:     q.Profile,
		})
		return callErr
	})

	if err == nil {
		km := math.Round(resp.DistanceMeters/1000*100) / 100
		if km < 0.01 {
			km = 0.01
		}
		minutes := int(math.Round(resp.DurationSeconds / 60))
		if minutes < 1 {
			minutes = 1
		}
		return domain.RouteResult{
			DistanceKm:  km,
			DurationMin: minutes,
			Geometry:    resp.Geometry,
		}, nil
	}

	if errors.Is(err, ErrRouteNotFound) {
		return domain.RouteResult{}, ErrRouteNotFound
	}
	if ctx.Err() != nil {
		return domain.RouteResult{}, ctx.Err()
	}

	return r.estimate(q, Classify(err)), nil
}

// estimate builds the degraded great-circle result.
func (r *Resolver) estimate(q domain.RouteQuery, class domain.ErrorClass) domain.RouteResult {
	km := geo.HaversineKm(q.Origin, q.Destination)
	if km < 0.01 {
		km = 0.01
	}

	speed := r.cfg.FallbackSpeedsKmh[q.Profile]
	if speed <= 0 {
		speed = 25
	}
	minutes := int(math.Round(km / speed * 60))
	if minutes < 1 {
		minutes = 1
	}

	return domain.RouteResult{
		DistanceKm:  km,
		DurationMin: minutes,
		IsEstimate:  true,
		ErrorClass:  class,
	}
}

// storeLocked inserts a result and trims the cache to its bound. Caller
// holds r.mu.
func (r *Resolver) storeLocked(key string, res domain.RouteResult) {
	res.Cached = false
	r.cache[key] = &cacheEntry{result: res, createdAt: r.now()}
	if over := len(r.cache) - r.cfg.MaxCacheEntries; over > 0 {
		r.evictOldestLocked(over)
	}
}

// evictOldestLocked removes the n oldest entries. Caller holds r.mu.
func (r *Resolver) evictOldestLocked(n int) {
	for ; n > 0; n-- {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range r.cache {
			if oldestKey == "" || e.createdAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.createdAt
			}
		}
		if oldestKey == "" {
			return
		}
		delete(r.cache, oldestKey)
	}
}

// sweeper periodically evicts expired entries and enforces the size bound.
func (r *Resolver) sweeper() {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

// sweep runs one eviction pass. The scan is bounded by the cache size,
// which the size cap keeps small.
func (r *Resolver) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, e := range r.cache {
		if now.Sub(e.createdAt) >= r.cfg.CacheTTL {
			delete(r.cache, k)
		}
	}
	if over := len(r.cache) - r.cfg.MaxCacheEntries; over > 0 {
		r.evictOldestLocked(over)
	}
}
