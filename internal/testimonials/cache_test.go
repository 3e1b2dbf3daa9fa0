package testimonials

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/soulparadise/web/internal/domain"
)

type stubSource struct {
	LatestTestimonialsFunc func(ctx context.Context, limit int) ([]domain.Testimonial, error)
}

func (s *stubSource) LatestTestimonials(ctx context.Context, limit int) ([]domain.Testimonial, error) {
	return s.LatestTestimonialsFunc(ctx, limit)
}

func testCache(source Source) *Cache {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(source, 6, time.Hour, logger)
}

func TestCache_EmptyBeforeRefresh(t *testing.T) {
	c := testCache(&stubSource{})

	if items := c.Latest(); len(items) != 0 {
		t.Errorf("expected empty cache, got %d items", len(items))
	}
	if !c.FetchedAt().IsZero() {
		t.Error("FetchedAt should be zero before any refresh")
	}
}

func TestCache_RefreshReplacesItems(t *testing.T) {
	source := &stubSource{
		LatestTestimonialsFunc: func(ctx context.Context, limit int) ([]domain.Testimonial, error) {
			if limit != 6 {
				t.Errorf("limit = %d, want 6", limit)
			}
			return []domain.Testimonial{
				{ID: "t1", Name: "Amy", Rating: 5},
				{ID: "t2", Name: "Ben", Rating: 4},
			}, nil
		},
	}
	c := testCache(source)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	items := c.Latest()
	if len(items) != 2 || items[0].ID != "t1" {
		t.Errorf("items = %+v", items)
	}
	if c.FetchedAt().IsZero() {
		t.Error("FetchedAt should be set after a successful refresh")
	}
}

func TestCache_FailedRefreshKeepsPreviousSet(t *testing.T) {
	fail := false
	source := &stubSource{
		LatestTestimonialsFunc: func(ctx context.Context, limit int) ([]domain.Testimonial, error) {
			if fail {
				return nil, errors.New("backend unavailable")
			}
			return []domain.Testimonial{{ID: "t1", Name: "Amy"}}, nil
		},
	}
	c := testCache(source)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	fetched := c.FetchedAt()

	fail = true
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected the fetch error to surface")
	}

	if items := c.Latest(); len(items) != 1 || items[0].ID != "t1" {
		t.Errorf("failed refresh must keep the previous set, got %+v", items)
	}
	if !c.FetchedAt().Equal(fetched) {
		t.Error("FetchedAt must not advance on a failed refresh")
	}
}

func TestCache_StartAndStop(t *testing.T) {
	source := &stubSource{
		LatestTestimonialsFunc: func(ctx context.Context, limit int) ([]domain.Testimonial, error) {
			return []domain.Testimonial{{ID: "t1"}}, nil
		},
	}
	c := testCache(source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Start(ctx)
	defer c.Stop()

	// Start performs an immediate refresh
	if items := c.Latest(); len(items) != 1 {
		t.Errorf("expected the initial refresh to populate the cache, got %d items", len(items))
	}
}
