package usecase

import (
	"errors"
	"fmt"
	"log"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/repository"

	"github.com/google/uuid"
)

// eventReconciler implements EventReconciler interface
type eventReconciler struct {
	meetingRepo repository.MeetingRepository
	now         func() time.Time
}

// NewEventReconciler creates a reconciler. nil now uses time.Now.
func NewEventReconciler(meetingRepo repository.MeetingRepository, now func() time.Time) EventReconciler {
	if now == nil {
		now = time.Now
	}
	return &eventReconciler{
		meetingRepo: meetingRepo,
		now:         now,
	}
}

// Reconcile inserts a meeting for each new, timed, future event. It never updates existing meetings.
func (r *eventReconciler) Reconcile(userID string, result *calendardomain.FetchResult) (*calendardomain.SyncSummary, error) {
	summary := &calendardomain.SyncSummary{}
	if result == nil {
		return summary, nil
	}
	summary.TotalFound = result.TotalFound

	existing, err := r.meetingRepo.ExistingRemoteIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load imported events: %w", err)
	}

	// evaluated once, after the fetch, so events that started meanwhile are dropped
	now := r.now()

	for _, event := range result.Events {
		if _, ok := existing[event.RemoteID]; ok {
			summary.SkippedCount++
			continue
		}
		// zero-length events are kept; reversed ranges are malformed
		if event.RemoteID == "" || event.IsAllDay || !event.HasTimes() || event.EndTime.Before(*event.StartTime) {
			summary.SkippedCount++
			continue
		}
		if event.StartTime.Before(now) {
			summary.SkippedCount++
			continue
		}

		meeting := meetingFromEvent(userID, event)
		if err := r.meetingRepo.Create(meeting); err != nil {
			if errors.Is(err, repository.ErrDuplicateRemoteEvent) {
				log.Printf("[Reconciler] Event %s for user %s was imported concurrently, skipping", event.RemoteID, userID)
			} else {
				log.Printf("[Reconciler] Failed to import event %s for user %s: %v", event.RemoteID, userID, err)
			}
			summary.SkippedCount++
			continue
		}

		existing[event.RemoteID] = struct{}{}
		summary.SyncedCount++
	}

	return summary, nil
}

func meetingFromEvent(userID string, event *calendardomain.RemoteEvent) *calendardomain.Meeting {
	remoteID := event.RemoteID
	meetingType := calendardomain.MeetingTypePhysical
	if event.OnlineMeetingURL != "" {
		meetingType = calendardomain.MeetingTypeOnline
	}

	title := event.Subject
	if title == "" {
		title = "(no subject)"
	}

	return &calendardomain.Meeting{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         title,
		StartTime:     event.StartTime.UTC(),
		EndTime:       event.EndTime.UTC(),
		RemoteEventID: &remoteID,
		MeetingType:   meetingType,
		JoinURL:       event.OnlineMeetingURL,
		Status:        calendardomain.MeetingStatusScheduled,
	}
}
