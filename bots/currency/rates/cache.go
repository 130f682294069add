package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/twinbots/core/logger"
	"github.com/m3rciful/twinbots/core/telegram/netutil"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrRatesUnavailable means no rates could be obtained.
	ErrRatesUnavailable = errors.New("rates: unavailable")
	// ErrUnsupportedCurrency means the code is not in the supported set.
	ErrUnsupportedCurrency = errors.New("rates: unsupported currency")
	// ErrNoSupportedRates means the feed answered without any supported currency.
	ErrNoSupportedRates = errors.New("rates: feed returned no supported currencies")
)

// Options configures a Cache.
type Options struct {
	// Base is the currency the feed quotes against.
	Base      string
	Supported []string
	// TTL is how long a refresh stays valid.
	TTL          time.Duration
	FetchTimeout time.Duration
	Now          func() time.Time
}

const (
	defaultBase         = "RUB"
	defaultTTL          = time.Hour
	defaultFetchTimeout = 10 * time.Second
)

// DefaultCurrencies is the supported set when none is configured.
var DefaultCurrencies = []string{"USD", "EUR", "RUB", "KZT"}

// Cache holds base-relative rates and refreshes them from a Feed on demand.
type Cache struct {
	feed      Feed
	base      string
	supported map[string]bool
	ttl       time.Duration
	timeout   time.Duration
	now       func() time.Time

	mu        sync.RWMutex
	rates     map[string]float64
	updatedAt time.Time

	refresh singleflight.Group
}

// NewCache returns an empty cache; the first Rate call fills it.
func NewCache(feed Feed, opts Options) *Cache {
	c := &Cache{
		feed:      feed,
		base:      strings.ToUpper(opts.Base),
		supported: make(map[string]bool),
		ttl:       opts.TTL,
		timeout:   opts.FetchTimeout,
		now:       opts.Now,
	}
	if c.base == "" {
		c.base = defaultBase
	}
	if c.ttl <= 0 {
		c.ttl = defaultTTL
	}
	if c.timeout <= 0 {
		c.timeout = defaultFetchTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	supported := opts.Supported
	if len(supported) == 0 {
		supported = DefaultCurrencies
	}
	for _, code := range supported {
		c.supported[strings.ToUpper(code)] = true
	}
	c.supported[c.base] = true
	return c
}

// Supports reports whether code is convertible.
func (c *Cache) Supports(code string) bool {
	return c.supported[strings.ToUpper(code)]
}

// Rate returns how many units of to one unit of from buys.
func (c *Cache) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	for _, code := range []string{from, to} {
		if !c.supported[code] {
			return 0, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
		}
	}
	if from == to {
		return 1, nil
	}
	if err := c.ensureFresh(ctx); err != nil {
		return 0, err
	}

	c.mu.RLock()
	rf, okFrom := c.rates[from]
	rt, okTo := c.rates[to]
	c.mu.RUnlock()
	switch {
	case !okFrom:
		return 0, fmt.Errorf("%w: feed has no %s", ErrRatesUnavailable, from)
	case !okTo:
		return 0, fmt.Errorf("%w: feed has no %s", ErrRatesUnavailable, to)
	}

	switch {
	case from == c.base:
		return 1 / rt, nil
	case to == c.base:
		return rf, nil
	default:
		return rf / rt, nil
	}
}

// UpdatedAt reports when the cache was last filled; zero if never.
func (c *Cache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

func (c *Cache) fresh() (fresh, empty bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	empty = len(c.rates) == 0
	return !empty && c.now().Sub(c.updatedAt) < c.ttl, empty
}

// ensureFresh refreshes an expired or empty cache. A failed refresh over
// existing data keeps serving the stale rates.
func (c *Cache) ensureFresh(ctx context.Context) error {
	if fresh, _ := c.fresh(); fresh {
		logger.Debug(ctx, "rates", "cache.lookup", slog.String("cache", "hit"))
		return nil
	}

	err := c.shared(ctx, func(fctx context.Context) error {
		// Another caller may have refreshed while this one waited.
		if fresh, _ := c.fresh(); fresh {
			return nil
		}
		return c.fetch(fctx)
	})
	if err == nil {
		return nil
	}
	if _, empty := c.fresh(); !empty {
		logger.Warn(ctx, "rates", "cache.lookup",
			slog.String("cache", "stale"),
			slog.Duration("age", c.now().Sub(c.UpdatedAt())),
			slog.String("err", err.Error()),
		)
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRatesUnavailable, err)
}

// Refresh fetches the feed and replaces the cached rates. It joins a refresh
// already in flight instead of starting a second one. On failure the cache is
// left untouched.
func (c *Cache) Refresh(ctx context.Context) error {
	return c.shared(ctx, c.fetch)
}

// shared runs fn as the single in-flight refresh and waits for it or ctx.
// fn gets a context detached from ctx so one cancelled caller does not fail
// the others.
func (c *Cache) shared(ctx context.Context, fn func(context.Context) error) error {
	ch := c.refresh.DoChan("refresh", func() (any, error) {
		return nil, fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache) fetch(ctx context.Context) error {
	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	entries, err := c.feed.FetchDailyRates(fctx)
	if err == nil {
		err = c.store(ctx, entries)
	}
	if err != nil {
		logger.Error(ctx, "rates", "feed.fetch",
			slog.String("status", "fail"),
			slog.String("cache", "refresh"),
			slog.String("error_kind", netutil.Classify(err)),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return err
	}

	logger.Info(ctx, "rates", "feed.fetch",
		slog.String("status", "ok"),
		slog.String("cache", "refresh"),
		slog.Int("rates", len(entries)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// store swaps in the supported rates from entries. A feed without any
// supported currency is an error; codes the feed dropped keep their
// previous rate.
func (c *Cache) store(ctx context.Context, entries []Entry) error {
	next := map[string]float64{c.base: 1}
	for _, e := range entries {
		if c.supported[e.Code] && e.Code != c.base && e.Nominal > 0 {
			next[e.Code] = e.Value / e.Nominal
		}
	}
	if len(next) == 1 {
		return ErrNoSupportedRates
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for code, rate := range c.rates {
		if _, ok := next[code]; !ok {
			next[code] = rate
			logger.Warn(ctx, "rates", "feed.carry", slog.String("code", code))
		}
	}
	c.rates = next
	c.updatedAt = c.now()
	return nil
}
