// Package newsletter implements idempotent subscription of email
// addresses into the newsletter store.
package newsletter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dexabrain/event-backend/internal/models"
	"github.com/dexabrain/event-backend/internal/store"
)

// membersKey is the redis set caching known-subscribed addresses. The
// cache is advisory: the store scan remains the source of truth, and a
// cache miss or redis error always falls through to the scan.
const membersKey = "newsletter:members"

// Service subscribes emails with skip-if-exists semantics. Matching is a
// case-sensitive exact comparison against existing rows; an existing row
// is never updated, so the first-written source wins.
type Service struct {
	store       store.NewsletterStore
	cache       *redis.Client // optional
	callTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates the newsletter service. cache may be nil.
func NewService(st store.NewsletterStore, cache *redis.Client, callTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Service{store: st, cache: cache, callTimeout: callTimeout, logger: logger, now: time.Now}
}

// Subscribe adds email to the subscription store unless a row with the
// exact same address already exists. Duplicate subscriptions are a no-op,
// never an error.
func (s *Service) Subscribe(ctx context.Context, email, source string) error {
	if s.cache != nil {
		if member, err := s.cache.SIsMember(ctx, membersKey, email).Result(); err == nil && member {
			return nil
		}
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	subs, err := s.store.ScanSubscriptions(scanCtx)
	cancel()
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if sub.Email == email {
			s.cacheAdd(ctx, email)
			return nil
		}
	}

	appendCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	err = s.store.AppendSubscription(appendCtx, models.NewsletterSubscription{
		Timestamp: s.now(),
		Email:     email,
		Source:    source,
		Status:    models.SubscriptionActive,
	})
	if err != nil {
		return err
	}
	s.cacheAdd(ctx, email)
	return nil
}

func (s *Service) cacheAdd(ctx context.Context, email string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SAdd(ctx, membersKey, email).Err(); err != nil {
		s.logger.Debug("newsletter cache add failed", zap.String("email", email), zap.Error(err))
	}
}
