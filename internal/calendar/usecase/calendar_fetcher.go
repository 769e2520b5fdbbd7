package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/repository"
	"meeting-portal-backend/pkg/graph"
)

// DefaultPageSize caps the number of events read per sync
const DefaultPageSize = 50

// calendarFetcher implements CalendarFetcher interface
type calendarFetcher struct {
	store     repository.TokenStore
	api       CalendarAPI
	refresher TokenRefresher
	pageSize  int
	now       func() time.Time
}

// NewCalendarFetcher creates a fetcher. pageSize <= 0 uses DefaultPageSize; nil now uses time.Now.
func NewCalendarFetcher(store repository.TokenStore, api CalendarAPI, refresher TokenRefresher, pageSize int, now func() time.Time) CalendarFetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if now == nil {
		now = time.Now
	}
	return &calendarFetcher{
		store:     store,
		api:       api,
		refresher: refresher,
		pageSize:  pageSize,
		now:       now,
	}
}

// Fetch refreshes the access token at most once per call: proactively when the
// stored expiry has passed, or after a 401. A 401 with a fresh token is terminal.
func (f *calendarFetcher) Fetch(ctx context.Context, userID string) (*calendardomain.FetchResult, error) {
	record, err := f.store.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outlook tokens: %w", err)
	}
	if record == nil || (record.AccessToken == "" && record.RefreshToken == "") {
		return nil, calendardomain.ErrNotConnected
	}

	accessToken := record.AccessToken
	refreshed := false
	if record.AccessToken == "" || record.Expired(f.now()) {
		accessToken, err = f.refresher.Refresh(ctx, userID)
		if err != nil {
			return nil, err
		}
		refreshed = true
	}

	from := f.now()
	result, err := f.api.ListUpcomingEvents(ctx, accessToken, from, f.pageSize)
	if err == nil {
		return result, nil
	}
	if !graph.IsUnauthorized(err) {
		return nil, fetchFailed(err)
	}
	if refreshed {
		return nil, calendardomain.ErrAuthenticationExpired
	}

	log.Printf("[CalendarFetcher] Access token rejected for user %s, refreshing", userID)
	accessToken, err = f.refresher.Refresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err = f.api.ListUpcomingEvents(ctx, accessToken, from, f.pageSize)
	if err == nil {
		return result, nil
	}
	if graph.IsUnauthorized(err) {
		return nil, calendardomain.ErrAuthenticationExpired
	}
	return nil, fetchFailed(err)
}

func fetchFailed(err error) error {
	var se *graph.StatusError
	if errors.As(err, &se) {
		return &calendardomain.FetchFailedError{StatusCode: se.StatusCode, Body: se.Body, Err: err}
	}
	return &calendardomain.FetchFailedError{Err: err}
}
