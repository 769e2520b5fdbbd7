package dto

import "time"

// SyncRequest is the body of POST /api/calendar/sync
type SyncRequest struct {
	UserID    string `json:"userId" binding:"required"`
	Automatic bool   `json:"automatic"`
}

// SyncResponse is returned after a successful sync
type SyncResponse struct {
	Success      bool `json:"success"`
	SyncedCount  int  `json:"syncedCount"`
	SkippedCount int  `json:"skippedCount"`
	TotalFound   int  `json:"totalFound"`
}

// ConnectionStatus describes the user's Outlook connection
type ConnectionStatus struct {
	Connected     bool       `json:"connected"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	LastSyncError string     `json:"last_sync_error,omitempty"`
}

// CreateMeetingRequest is the body of POST /api/meetings. Times are RFC3339.
type CreateMeetingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	MeetingType string `json:"meeting_type"`
	JoinURL     string `json:"join_url"`
	Location    string `json:"location"`
}

// UpdateMeetingRequest holds optional meeting fields; nil leaves a field unchanged
type UpdateMeetingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	MeetingType *string `json:"meeting_type"`
	JoinURL     *string `json:"join_url"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
}
