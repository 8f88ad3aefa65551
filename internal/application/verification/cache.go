package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-signup-gate/internal/domain"
)

// Store is the persistence the cache sits on.
type Store interface {
	Get(ctx context.Context, email string) (*domain.VerificationRecord, error)
	Save(ctx context.Context, email string, res domain.DeliverabilityResult, at time.Time) error
	Touch(ctx context.Context, email string, at time.Time) error
}

// Cache remembers deliverability results per email. Every storage error is
// logged and absorbed: a broken cache only costs an extra checker call.
type Cache struct {
	store Store
}

func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// Lookup returns the stored record for email, or nil on a miss. A store
// failure is logged and returned for counting; callers treat it as a miss.
// Freshness is left to the caller.
func (c *Cache) Lookup(ctx context.Context, email string) (*domain.VerificationRecord, error) {
	rec, err := c.store.Get(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("verification cache lookup failed", "email", email, "err", err)
			return nil, err
		}
		return nil, nil
	}
	return rec, nil
}

// Upsert stores a fresh checker result. Concurrent writers for one email
// race and the last one wins.
func (c *Cache) Upsert(ctx context.Context, email string, res domain.DeliverabilityResult, at time.Time) {
	if err := c.store.Save(ctx, email, res, at); err != nil {
		slog.Warn("verification cache upsert failed", "email", email, "err", err)
	}
}

// Touch counts a fresh hit.
func (c *Cache) Touch(ctx context.Context, email string, at time.Time) {
	if err := c.store.Touch(ctx, email, at); err != nil {
		slog.Warn("verification cache touch failed", "email", email, "err", err)
	}
}
