// Package testimonials keeps a small in-memory cache of the latest
// customer testimonials, refreshed in the background from the booking API.
// Pages render from the cache so a slow or failing backend never blocks a
// page load.
package testimonials

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/soulparadise/web/internal/domain"
	"github.com/soulparadise/web/internal/metrics"
)

// Source fetches testimonials from the backend. Implemented by the API
// client.
type Source interface {
	LatestTestimonials(ctx context.Context, limit int) ([]domain.Testimonial, error)
}

// Cache holds the most recently fetched testimonials.
type Cache struct {
	source   Source
	limit    int
	interval time.Duration
	logger   *slog.Logger

	mu        sync.RWMutex
	items     []domain.Testimonial
	fetchedAt time.Time

	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates a testimonial cache. The cache is empty until Start runs the
// first refresh or Refresh is called directly.
func New(source Source, limit int, interval time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		source:   source,
		limit:    limit,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Latest returns the cached testimonials. The returned slice is shared;
// callers must not modify it.
func (c *Cache) Latest() []domain.Testimonial {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items
}

// FetchedAt returns when the cache last refreshed successfully. Zero when
// no refresh has succeeded yet.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Refresh fetches testimonials once and replaces the cached set. A failed
// fetch leaves the previous set in place.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.source.LatestTestimonials(ctx, c.limit)
	if err != nil {
		metrics.TestimonialRefreshes.WithLabelValues("error").Inc()
		return err
	}

	c.mu.Lock()
	c.items = items
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	metrics.TestimonialRefreshes.WithLabelValues("success").Inc()
	metrics.TestimonialCacheSize.Set(float64(len(items)))
	return nil
}

// Start launches the background refresh loop. It performs an immediate
// refresh so pages have content as soon as possible, then refreshes on the
// configured interval until Stop is called or the context is cancelled.
func (c *Cache) Start(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial testimonial refresh failed", "error", err)
	}

	c.wg.Add(1)
	go c.run(ctx)

	c.logger.Info("testimonial cache started", "limit", c.limit, "interval", c.interval)
}

// Stop signals the refresh loop to stop and waits for it to finish.
func (c *Cache) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *Cache) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("testimonial refresh failed", "error", err)
			}
		}
	}
}
