package domain

import "time"

// MeetingType is derived from whether an online join URL exists
type MeetingType string

const (
	MeetingTypeOnline   MeetingType = "online"
	MeetingTypePhysical MeetingType = "physical"
)

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Meeting is a locally owned meeting, imported from Outlook or created by hand.
// At most one meeting per (UserID, RemoteEventID) exists; manual meetings have a nil RemoteEventID.
type Meeting struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	UserID        string        `json:"user_id" gorm:"not null;index;uniqueIndex:idx_meeting_user_remote"`
	Title         string        `json:"title" gorm:"not null"`
	Description   string        `json:"description,omitempty"`
	StartTime     time.Time     `json:"start_time" gorm:"not null;index"`
	EndTime       time.Time     `json:"end_time" gorm:"not null"`
	RemoteEventID *string       `json:"remote_event_id,omitempty" gorm:"uniqueIndex:idx_meeting_user_remote"`
	MeetingType   MeetingType   `json:"meeting_type" gorm:"not null;default:physical"`
	JoinURL       string        `json:"join_url,omitempty"`
	Location      string        `json:"location,omitempty"`
	Status        MeetingStatus `json:"status" gorm:"not null;default:scheduled"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsValidStatus reports whether s is a known meeting status
func IsValidStatus(s MeetingStatus) bool {
	switch s {
	case MeetingStatusScheduled, MeetingStatusCompleted, MeetingStatusCancelled:
		return true
	}
	return false
}

// IsValidMeetingType reports whether t is a known meeting type
func IsValidMeetingType(t MeetingType) bool {
	return t == MeetingTypeOnline || t == MeetingTypePhysical
}
