package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/repository"
	"meeting-portal-backend/internal/calendar/usecase"

	"golang.org/x/sync/errgroup"
)

// Stats summarises one pass over all connected users
type Stats struct {
	Users     int
	Succeeded int
	Throttled int
	Failed    int
	Synced    int
}

// SyncScheduler runs automatic calendar syncs for every connected user
type SyncScheduler struct {
	store       repository.TokenStore
	syncUsecase usecase.SyncUsecase
	interval    time.Duration
	workers     int
	enabled     func() bool

	started  atomic.Bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewSyncScheduler creates a new scheduler. enabled is checked before every pass; nil means always on.
func NewSyncScheduler(store repository.TokenStore, syncUsecase usecase.SyncUsecase, interval time.Duration, workers int, enabled func() bool) *SyncScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if workers <= 0 {
		workers = 1
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &SyncScheduler{
		store:       store,
		syncUsecase: syncUsecase,
		interval:    interval,
		workers:     workers,
		enabled:     enabled,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start begins the scheduler loop. It returns immediately.
func (s *SyncScheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	log.Printf("[SyncScheduler] Starting calendar sync scheduler (interval: %s, workers: %d)", s.interval, s.workers)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(s.done)
		defer cancel()

		// Run immediately on start
		s.tick(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick(ctx)
			case <-s.stopChan:
				log.Println("[SyncScheduler] Scheduler stopped")
				return
			case <-ctx.Done():
				log.Println("[SyncScheduler] Context cancelled, scheduler stopped")
				return
			}
		}
	}()
}

// Stop ends the loop and waits for the running pass to finish
func (s *SyncScheduler) Stop() {
	if !s.started.Load() {
		return
	}
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

func (s *SyncScheduler) tick(ctx context.Context) {
	if !s.enabled() {
		return
	}
	stats, err := s.RunOnce(ctx)
	if err != nil {
		log.Printf("[SyncScheduler] Pass failed: %v", err)
		return
	}
	if stats.Users > 0 {
		log.Printf("[SyncScheduler] Pass done: users=%d ok=%d throttled=%d failed=%d imported=%d",
			stats.Users, stats.Succeeded, stats.Throttled, stats.Failed, stats.Synced)
	}
}

// RunOnce syncs every connected user once, at most workers at a time
func (s *SyncScheduler) RunOnce(ctx context.Context) (*Stats, error) {
	records, err := s.store.ListConnected()
	if err != nil {
		return nil, err
	}

	var succeeded, throttled, failed, synced atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, record := range records {
		userID := record.UserID
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			summary, err := s.syncUsecase.Sync(gctx, userID, calendardomain.TriggerAutomatic)
			switch {
			case err == nil:
				succeeded.Add(1)
				synced.Add(int64(summary.SyncedCount))
			case errors.Is(err, calendardomain.ErrSyncThrottled):
				throttled.Add(1)
			case errors.Is(err, calendardomain.ErrNotConnected):
				// disconnected between listing and syncing
				failed.Add(1)
			default:
				log.Printf("[SyncScheduler] Sync failed for user %s: %v", userID, err)
				failed.Add(1)
			}
			// one user's failure never cancels the others
			return nil
		})
	}
	_ = g.Wait()

	return &Stats{
		Users:     len(records),
		Succeeded: int(succeeded.Load()),
		Throttled: int(throttled.Load()),
		Failed:    int(failed.Load()),
		Synced:    int(synced.Load()),
	}, nil
}
