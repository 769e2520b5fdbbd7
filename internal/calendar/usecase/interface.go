package usecase

import (
	"context"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/dto"
	"meeting-portal-backend/pkg/graph"
)

// TokenExchanger performs one refresh_token grant against the identity provider
type TokenExchanger interface {
	RefreshToken(ctx context.Context, refreshToken string) (*graph.Token, error)
}

// CalendarAPI reads upcoming events from the remote calendar
type CalendarAPI interface {
	ListUpcomingEvents(ctx context.Context, accessToken string, from time.Time, top int) (*calendardomain.FetchResult, error)
}

// TokenRefresher exchanges a user's stored refresh token for a new access token
type TokenRefresher interface {
	// Refresh persists the new token pair and returns the new access token
	Refresh(ctx context.Context, userID string) (string, error)
}

// CalendarFetcher loads upcoming remote events for a user
type CalendarFetcher interface {
	Fetch(ctx context.Context, userID string) (*calendardomain.FetchResult, error)
}

// EventReconciler imports remote events that have no local meeting yet
type EventReconciler interface {
	Reconcile(userID string, result *calendardomain.FetchResult) (*calendardomain.SyncSummary, error)
}

// SyncUsecase is the entry point for calendar synchronisation
type SyncUsecase interface {
	// Sync fetches and reconciles. Automatic triggers are throttled per user.
	Sync(ctx context.Context, userID string, trigger calendardomain.Trigger) (*calendardomain.SyncSummary, error)

	// History lists the user's most recent sync runs
	History(userID string, limit int) ([]*calendardomain.SyncRun, error)
}

// ConnectionUsecase manages the user's Outlook OAuth connection
type ConnectionUsecase interface {
	// AuthURL returns the consent URL; its state parameter is bound to userID
	AuthURL(userID string) (string, error)

	// HandleCallback exchanges the authorization code and stores the tokens. Returns the user id from state.
	HandleCallback(ctx context.Context, code, state string) (string, error)

	Status(userID string) (*dto.ConnectionStatus, error)

	Disconnect(userID string) error
}

// MeetingUsecase defines the interface for meeting business logic
type MeetingUsecase interface {
	CreateMeeting(userID string, req *dto.CreateMeetingRequest) (*calendardomain.Meeting, error)

	// GetMeeting retrieves a meeting by ID (with ownership check)
	GetMeeting(userID, meetingID string) (*calendardomain.Meeting, error)

	// ListMeetings lists meetings with an optional status filter; upcoming limits to meetings starting from now
	ListMeetings(userID string, status *string, upcoming bool, limit, offset int) ([]*calendardomain.Meeting, int64, error)

	UpdateMeeting(userID, meetingID string, req *dto.UpdateMeetingRequest) (*calendardomain.Meeting, error)

	// DeleteMeeting removes a meeting; a synced meeting may be imported again by a later sync
	DeleteMeeting(userID, meetingID string) error
}
