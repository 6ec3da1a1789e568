package cache

import (
	"context"
	"testing"
	"time"

	"tiketbus/internal/domain/models"
	"tiketbus/internal/repositories"
)

func testCache(ttl time.Duration) (*AuthCache, *time.Time, *int) {
	c := NewAuthCache(repositories.OperatorRepository{}, repositories.CompanyRepository{}, ttl)
	now := time.Now()
	c.Now = func() time.Time { return now }
	fetches := 0
	c.Fetch = func(ctx context.Context, operatorID int64) (models.OperatorAuthorization, error) {
		fetches++
		return models.OperatorAuthorization{
			OperatorID:     operatorID,
			CompanyID:      7,
			OperatorStatus: models.StatusActive,
			CompanyStatus:  models.StatusActive,
		}, nil
	}
	return c, &now, &fetches
}

func TestAuthCacheReadThrough(t *testing.T) {
	c, _, fetches := testCache(5 * time.Minute)
	ctx := context.Background()

	first, err := c.Get(ctx, 42)
	if err != nil {
		t.Fatalf("first get error: %v", err)
	}
	if first.CompanyID != 7 {
		t.Fatalf("unexpected entry: %+v", first)
	}

	if _, err := c.Get(ctx, 42); err != nil {
		t.Fatalf("second get error: %v", err)
	}
	if *fetches != 1 {
		t.Fatalf("expected one upstream fetch, got %d", *fetches)
	}
}

func TestAuthCacheTTLExpiry(t *testing.T) {
	c, now, fetches := testCache(5 * time.Minute)
	ctx := context.Background()

	if _, err := c.Get(ctx, 42); err != nil {
		t.Fatalf("get error: %v", err)
	}

	// entries older than TTL are never trusted
	*now = now.Add(5*time.Minute + time.Second)
	if _, err := c.Get(ctx, 42); err != nil {
		t.Fatalf("get after expiry error: %v", err)
	}
	if *fetches != 2 {
		t.Fatalf("expected refetch after TTL, got %d fetches", *fetches)
	}
}

func TestAuthCacheInvalidateAndClear(t *testing.T) {
	c, _, fetches := testCache(5 * time.Minute)
	ctx := context.Background()

	_, _ = c.Get(ctx, 1)
	_, _ = c.Get(ctx, 2)
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}

	c.Invalidate(1)
	_, _ = c.Get(ctx, 1)
	if *fetches != 3 {
		t.Fatalf("invalidate should force a refetch, got %d fetches", *fetches)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("clear should drop all entries, got %d", c.Len())
	}
}
