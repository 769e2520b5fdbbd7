package repository

import (
	"errors"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
)

// TokenStore persists Outlook OAuth tokens, one record per user.
// Writes are last-write-wins.
type TokenStore interface {
	// Get returns nil, nil when the user has no stored tokens
	Get(userID string) (*calendardomain.TokenRecord, error)
	// Save inserts or replaces the user's record
	Save(record *calendardomain.TokenRecord) error
	Delete(userID string) error
	// ListConnected returns every stored record, used by the background scheduler
	ListConnected() ([]*calendardomain.TokenRecord, error)
}

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	Create(meeting *calendardomain.Meeting) error
	FindByID(id string) (*calendardomain.Meeting, error)
	// FindByUserID lists meetings ordered by start time, optionally filtered by status and a lower start bound
	FindByUserID(userID string, status *calendardomain.MeetingStatus, from *time.Time, limit, offset int) ([]*calendardomain.Meeting, int64, error)
	Update(meeting *calendardomain.Meeting) error
	Delete(id string) error
	// ExistingRemoteIDs returns the set of remote event ids already imported for the user, in one query
	ExistingRemoteIDs(userID string) (map[string]struct{}, error)
}

// SyncRunRepository records sync invocations
type SyncRunRepository interface {
	Create(run *calendardomain.SyncRun) error
	Finish(run *calendardomain.SyncRun) error
	// LastRun returns the latest run of the given trigger, or nil
	LastRun(userID string, trigger calendardomain.Trigger) (*calendardomain.SyncRun, error)
	ListByUserID(userID string, limit int) ([]*calendardomain.SyncRun, error)
}

// ErrDuplicateRemoteEvent is returned by MeetingRepository.Create when the
// user already has a meeting for the same remote event id.
var ErrDuplicateRemoteEvent = errors.New("remote event already imported")
