package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/repository"
	"meeting-portal-backend/internal/notification"

	"github.com/google/uuid"
)

// DefaultMinSyncInterval is the shortest gap allowed between two automatic syncs of one user
const DefaultMinSyncInterval = 5 * time.Minute

// syncUsecase implements SyncUsecase interface
type syncUsecase struct {
	fetcher     CalendarFetcher
	reconciler  EventReconciler
	runRepo     repository.SyncRunRepository
	publisher   notification.Publisher
	minInterval time.Duration
	now         func() time.Time

	// lastAutomatic backs the throttle when a run could not be recorded
	mu            sync.Mutex
	lastAutomatic map[string]time.Time
}

// NewSyncUsecase creates a new instance of syncUsecase. publisher may be nil.
func NewSyncUsecase(fetcher CalendarFetcher, reconciler EventReconciler, runRepo repository.SyncRunRepository, publisher notification.Publisher, minInterval time.Duration) SyncUsecase {
	if minInterval < 0 {
		minInterval = DefaultMinSyncInterval
	}
	return &syncUsecase{
		fetcher:       fetcher,
		reconciler:    reconciler,
		runRepo:       runRepo,
		publisher:     publisher,
		minInterval:   minInterval,
		now:           time.Now,
		lastAutomatic: make(map[string]time.Time),
	}
}

func (u *syncUsecase) Sync(ctx context.Context, userID string, trigger calendardomain.Trigger) (*calendardomain.SyncSummary, error) {
	if trigger != calendardomain.TriggerAutomatic {
		trigger = calendardomain.TriggerManual
	}

	if trigger == calendardomain.TriggerAutomatic && u.minInterval > 0 {
		last, err := u.runRepo.LastRun(userID, calendardomain.TriggerAutomatic)
		if err != nil {
			return nil, fmt.Errorf("failed to load last sync run: %w", err)
		}
		lastStart, seen := u.lastAutomaticStart(userID)
		if last != nil && (!seen || last.StartedAt.After(lastStart)) {
			lastStart, seen = last.StartedAt, true
		}
		if seen && u.now().Sub(lastStart) < u.minInterval {
			return nil, calendardomain.ErrSyncThrottled
		}
	}

	run := &calendardomain.SyncRun{
		ID:        uuid.New().String(),
		UserID:    userID,
		Trigger:   trigger,
		StartedAt: u.now(),
	}
	if trigger == calendardomain.TriggerAutomatic {
		u.mu.Lock()
		u.lastAutomatic[userID] = run.StartedAt
		u.mu.Unlock()
	}
	recorded := true
	if err := u.runRepo.Create(run); err != nil {
		log.Printf("[SyncUsecase] Failed to record sync run for user %s: %v", userID, err)
		recorded = false
	}

	summary, err := u.run(ctx, userID)

	finished := u.now()
	run.FinishedAt = &finished
	if summary != nil {
		run.SyncedCount = summary.SyncedCount
		run.SkippedCount = summary.SkippedCount
		run.TotalFound = summary.TotalFound
	}
	if err != nil {
		run.Error = err.Error()
	}
	if recorded {
		if ferr := u.runRepo.Finish(run); ferr != nil {
			log.Printf("[SyncUsecase] Failed to finish sync run %s: %v", run.ID, ferr)
		}
	}

	if err != nil {
		log.Printf("[SyncUsecase] %s sync failed for user %s: %v", trigger, userID, err)
		u.publishFailure(userID, trigger, err)
		return nil, err
	}

	log.Printf("[SyncUsecase] %s sync for user %s: synced=%d skipped=%d found=%d",
		trigger, userID, summary.SyncedCount, summary.SkippedCount, summary.TotalFound)
	u.publish(notification.Event{
		Type:   notification.EventSyncCompleted,
		UserID: userID,
		Data: map[string]interface{}{
			"trigger":      string(trigger),
			"syncedCount":  summary.SyncedCount,
			"skippedCount": summary.SkippedCount,
			"totalFound":   summary.TotalFound,
		},
	})
	return summary, nil
}

func (u *syncUsecase) lastAutomaticStart(userID string) (time.Time, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	t, ok := u.lastAutomatic[userID]
	return t, ok
}

func (u *syncUsecase) run(ctx context.Context, userID string) (*calendardomain.SyncSummary, error) {
	result, err := u.fetcher.Fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.reconciler.Reconcile(userID, result)
}

func (u *syncUsecase) History(userID string, limit int) ([]*calendardomain.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.runRepo.ListByUserID(userID, limit)
}

func (u *syncUsecase) publishFailure(userID string, trigger calendardomain.Trigger, err error) {
	u.publish(notification.Event{
		Type:   notification.EventSyncFailed,
		UserID: userID,
		Data: map[string]interface{}{
			"trigger": string(trigger),
			"error":   err.Error(),
		},
	})

	if errors.Is(err, calendardomain.ErrRefreshTokenExpired) || errors.Is(err, calendardomain.ErrAuthenticationExpired) {
		u.publish(notification.Event{
			Type:   notification.EventReconnectRequired,
			UserID: userID,
			Data: map[string]interface{}{
				"reason": err.Error(),
			},
		})
	}
}

func (u *syncUsecase) publish(evt notification.Event) {
	if u.publisher == nil {
		return
	}
	u.publisher.Publish(evt)
}
