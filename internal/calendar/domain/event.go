package domain

import "time"

// RemoteEvent is a calendar entry as returned by the Outlook calendar API.
// It is never persisted.
type RemoteEvent struct {
	RemoteID         string     `json:"remote_id"`
	Subject          string     `json:"subject"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	IsAllDay         bool       `json:"is_all_day"`
	OnlineMeetingURL string     `json:"online_meeting_url,omitempty"`
}

// HasTimes reports whether both start and end instants are present
func (e *RemoteEvent) HasTimes() bool {
	return e.StartTime != nil && e.EndTime != nil && !e.StartTime.IsZero() && !e.EndTime.IsZero()
}

// FetchResult is one page of upcoming remote events
type FetchResult struct {
	Events     []*RemoteEvent
	TotalFound int
}
