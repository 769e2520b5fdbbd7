package repository

import (
	"errors"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncRunRepository implements SyncRunRepository interface
type syncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository creates a new instance of syncRunRepository
func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{
		db: db,
	}
}

func (r *syncRunRepository) Create(run *calendardomain.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = time.Now()
	return r.db.Create(run).Error
}

// Finish stores the outcome columns of a run created earlier
func (r *syncRunRepository) Finish(run *calendardomain.SyncRun) error {
	return r.db.Model(&calendardomain.SyncRun{}).Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"finished_at":   run.FinishedAt,
			"synced_count":  run.SyncedCount,
			"skipped_count": run.SkippedCount,
			"total_found":   run.TotalFound,
			"error":         run.Error,
		}).Error
}

func (r *syncRunRepository) LastRun(userID string, trigger calendardomain.Trigger) (*calendardomain.SyncRun, error) {
	var run calendardomain.SyncRun
	err := r.db.Where("user_id = ? AND sync_trigger = ?", userID, trigger).
		Order("started_at DESC").First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *syncRunRepository) ListByUserID(userID string, limit int) ([]*calendardomain.SyncRun, error) {
	var runs []*calendardomain.SyncRun
	err := r.db.Where("user_id = ?", userID).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
