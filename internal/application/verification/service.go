package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-signup-gate/internal/domain"
	"github.com/go-signup-gate/internal/observability"
)

// Checker asks the external deliverability service about one address.
type Checker interface {
	Verify(ctx context.Context, email string) (domain.DeliverabilityResult, error)
}

// Service decides whether an email may be used to sign up.
type Service interface {
	// Check consults the cache first and the checker on a miss or stale
	// record. The only error it returns wraps domain.ErrVerificationUnavailable.
	Check(ctx context.Context, email string) (domain.Decision, error)
}

type ServiceDeps struct {
	Store   Store
	Checker Checker
	// Now defaults to time.Now.
	Now func() time.Time
}

type service struct {
	cache   *Cache
	checker Checker
	now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{cache: NewCache(deps.Store), checker: deps.Checker, now: now}
}

func (s *service) Check(ctx context.Context, email string) (domain.Decision, error) {
	now := s.now()

	rec, err := s.cache.Lookup(ctx, email)
	switch {
	case err != nil:
		observability.RecordCacheLookup(observability.CacheError)
	case rec == nil:
		observability.RecordCacheLookup(observability.CacheMiss)
	case rec.IsFresh(now):
		observability.RecordCacheLookup(observability.CacheHit)
		s.cache.Touch(ctx, email, now)
		return s.decide(rec.Result()), nil
	default:
		observability.RecordCacheLookup(observability.CacheStale)
	}

	res, err := s.checker.Verify(ctx, email)
	if err != nil {
		observability.RecordDeliverabilityCheck("error")
		if errors.Is(err, domain.ErrVerificationUnavailable) {
			return domain.Decision{}, err
		}
		return domain.Decision{}, fmt.Errorf("%v: %w", err, domain.ErrVerificationUnavailable)
	}
	observability.RecordDeliverabilityCheck("ok")

	s.cache.Upsert(ctx, email, res, now)
	return s.decide(res), nil
}

func (s *service) decide(res domain.DeliverabilityResult) domain.Decision {
	d := domain.Decide(res)
	observability.RecordDecision(d.Accepted, d.Reason)
	return d
}
