package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/repository"
	"meeting-portal-backend/pkg/graph"
	"meeting-portal-backend/pkg/ratelimit"
	"meeting-portal-backend/pkg/retry"
)

const (
	refreshMaxAttempts = 3
	refreshBackoffStep = time.Second
)

// DefaultRefreshPolicy retries up to 3 times, waiting attempt*1s, and never retries invalid_grant
func DefaultRefreshPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: refreshMaxAttempts,
		Backoff:     retry.Linear(refreshBackoffStep),
		Retryable: func(err error) bool {
			return !graph.IsInvalidGrant(err)
		},
	}
}

// RefresherOption customises a TokenRefresher
type RefresherOption func(*tokenRefresher)

// WithRetryPolicy replaces DefaultRefreshPolicy
func WithRetryPolicy(p retry.Policy) RefresherOption {
	return func(r *tokenRefresher) { r.policy = p }
}

// WithRefresherClock replaces time.Now
func WithRefresherClock(now func() time.Time) RefresherOption {
	return func(r *tokenRefresher) { r.now = now }
}

// tokenRefresher implements TokenRefresher interface
type tokenRefresher struct {
	store     repository.TokenStore
	exchanger TokenExchanger
	limiter   *ratelimit.SlidingWindow
	policy    retry.Policy
	now       func() time.Time
}

// NewTokenRefresher creates a refresher. A nil limiter disables rate limiting.
func NewTokenRefresher(store repository.TokenStore, exchanger TokenExchanger, limiter *ratelimit.SlidingWindow, opts ...RefresherOption) TokenRefresher {
	r := &tokenRefresher{
		store:     store,
		exchanger: exchanger,
		limiter:   limiter,
		policy:    DefaultRefreshPolicy(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *tokenRefresher) Refresh(ctx context.Context, userID string) (string, error) {
	record, err := r.store.Get(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load outlook tokens: %w", err)
	}
	if record == nil || record.RefreshToken == "" {
		return "", calendardomain.ErrNotConnected
	}

	if r.limiter != nil && !r.limiter.Allow(userID) {
		log.Printf("[TokenRefresher] Rate limit reached for user %s", userID)
		return "", calendardomain.ErrRateLimited
	}

	var token *graph.Token
	attempts := 0
	err = retry.Do(ctx, r.policy, func(ctx context.Context, attempt int) error {
		attempts = attempt
		t, err := r.exchanger.RefreshToken(ctx, record.RefreshToken)
		if err != nil {
			log.Printf("[TokenRefresher] Attempt %d/%d for user %s failed: %v", attempt, r.policy.MaxAttempts, userID, err)
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		if graph.IsInvalidGrant(err) {
			log.Printf("[TokenRefresher] Refresh token rejected for user %s, reconnection required", userID)
			return "", calendardomain.ErrRefreshTokenExpired
		}
		return "", &calendardomain.RefreshFailedError{Attempts: attempts, Err: err}
	}

	record.AccessToken = token.AccessToken
	// provider may omit a rotated refresh token
	if token.RefreshToken != "" {
		record.RefreshToken = token.RefreshToken
	}
	record.ExpiresAt = r.now().Add(time.Duration(token.ExpiresIn)*time.Second - calendardomain.RefreshBuffer)

	if err := r.store.Save(record); err != nil {
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	log.Printf("[TokenRefresher] Refreshed outlook token for user %s (expires %s)", userID, record.ExpiresAt.Format(time.RFC3339))
	return token.AccessToken, nil
}
