package cache

import (
	"context"
	"sync"
	"time"

	"tiketbus/internal/domain/models"
	"tiketbus/internal/metrics"
	"tiketbus/internal/repositories"
)

// AuthCache is a read-through cache of operator/company authorization state.
// Entries older than TTL are never trusted and get re-fetched. The cache is
// a load shedder, not a source of truth: suspension takes effect within TTL,
// exact once-validation is enforced by the ticket conditional update.
type AuthCache struct {
	OperatorRepo repositories.OperatorRepository
	CompanyRepo  repositories.CompanyRepository
	TTL          time.Duration

	// Now and Fetch are replaced in tests.
	Now   func() time.Time
	Fetch func(ctx context.Context, operatorID int64) (models.OperatorAuthorization, error)

	mu      sync.RWMutex
	entries map[int64]models.OperatorAuthorization
}

func NewAuthCache(operatorRepo repositories.OperatorRepository, companyRepo repositories.CompanyRepository, ttl time.Duration) *AuthCache {
	return &AuthCache{
		OperatorRepo: operatorRepo,
		CompanyRepo:  companyRepo,
		TTL:          ttl,
		Now:          time.Now,
		entries:      map[int64]models.OperatorAuthorization{},
	}
}

// Get returns the cached entry for an operator, fetching on miss or expiry.
func (c *AuthCache) Get(ctx context.Context, operatorID int64) (models.OperatorAuthorization, error) {
	now := c.Now()

	c.mu.RLock()
	entry, ok := c.entries[operatorID]
	c.mu.RUnlock()

	if ok && now.Sub(entry.FetchedAt) < c.TTL {
		metrics.AuthCacheHitsTotal.Inc()
		return entry, nil
	}
	metrics.AuthCacheMissesTotal.Inc()

	entry, err := c.fetch(ctx, operatorID)
	if err != nil {
		return models.OperatorAuthorization{}, err
	}
	entry.FetchedAt = now

	c.mu.Lock()
	c.entries[operatorID] = entry
	c.mu.Unlock()

	return entry, nil
}

func (c *AuthCache) fetch(ctx context.Context, operatorID int64) (models.OperatorAuthorization, error) {
	if c.Fetch != nil {
		return c.Fetch(ctx, operatorID)
	}

	op, err := c.OperatorRepo.GetByID(ctx, operatorID)
	if err != nil {
		return models.OperatorAuthorization{}, err
	}
	company, err := c.CompanyRepo.GetByID(ctx, op.CompanyID)
	if err != nil {
		return models.OperatorAuthorization{}, err
	}

	return models.OperatorAuthorization{
		OperatorID:     op.ID,
		CompanyID:      op.CompanyID,
		RouteIDs:       op.RouteIDs,
		OperatorStatus: op.Status,
		CompanyStatus:  company.Status,
	}, nil
}

// Invalidate drops one operator's entry, used when the underlying record is
// known to have changed.
func (c *AuthCache) Invalidate(operatorID int64) {
	c.mu.Lock()
	delete(c.entries, operatorID)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *AuthCache) Clear() {
	c.mu.Lock()
	c.entries = map[int64]models.OperatorAuthorization{}
	c.mu.Unlock()
}

// Len reports the current entry count.
func (c *AuthCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
