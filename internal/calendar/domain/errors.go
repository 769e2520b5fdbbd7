package domain

import (
	"errors"
	"fmt"
)

// Errors returned by the calendar sync workflow. Check with errors.Is / errors.As.
var (
	// ErrNotConnected is returned when the user has no stored Outlook credentials.
	ErrNotConnected = errors.New("outlook calendar is not connected")

	// ErrRefreshTokenExpired is returned when the identity provider rejects the
	// refresh token (invalid_grant). The user must reconnect interactively.
	ErrRefreshTokenExpired = errors.New("outlook refresh token expired, reconnection required")

	// ErrRateLimited is returned when too many token refreshes were attempted
	// for one user inside the rate window. The provider is not contacted.
	ErrRateLimited = errors.New("too many token refresh attempts, try again later")

	// ErrAuthenticationExpired is returned when the calendar API still answers
	// 401 after a token refresh. The user must reconnect interactively.
	ErrAuthenticationExpired = errors.New("outlook authentication expired, reconnection required")

	// ErrSyncThrottled is returned when an automatic sync is requested before
	// the minimum interval since the previous automatic sync has passed.
	ErrSyncThrottled = errors.New("automatic sync ran too recently")

	// ErrMeetingNotFound is returned when a meeting does not exist.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrForbidden is returned when a meeting belongs to another user.
	ErrForbidden = errors.New("meeting belongs to another user")

	// ErrInvalidMeeting is returned when meeting input fails validation.
	ErrInvalidMeeting = errors.New("invalid meeting")

	// ErrInvalidState is returned when an OAuth callback state cannot be verified.
	ErrInvalidState = errors.New("invalid oauth state")
)

// RefreshFailedError is returned when the token exchange keeps failing after all attempts.
type RefreshFailedError struct {
	Attempts int
	Err      error
}

func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("token refresh failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RefreshFailedError) Unwrap() error { return e.Err }

// FetchFailedError is returned for non-auth, non-2xx calendar API responses.
// StatusCode is 0 when the request never got a response; Err then holds the cause.
type FetchFailedError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchFailedError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("calendar fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("calendar fetch failed: status %d: %s", e.StatusCode, e.Body)
}

func (e *FetchFailedError) Unwrap() error { return e.Err }

// RequiresReconnect reports whether err means the user must authorise Outlook again
func RequiresReconnect(err error) bool {
	return errors.Is(err, ErrNotConnected) ||
		errors.Is(err, ErrRefreshTokenExpired) ||
		errors.Is(err, ErrAuthenticationExpired)
}
