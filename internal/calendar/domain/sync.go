package domain

import "time"

// Trigger identifies who started a sync
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerAutomatic Trigger = "automatic"
)

// SyncSummary is the result returned to callers of a sync
type SyncSummary struct {
	SyncedCount  int `json:"syncedCount"`
	SkippedCount int `json:"skippedCount"`
	TotalFound   int `json:"totalFound"`
}

// SyncRun records one sync invocation. The automatic-sync throttle reads the latest automatic run.
type SyncRun struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"index:idx_sync_run_user_trigger;not null"`
	Trigger      Trigger    `json:"trigger" gorm:"column:sync_trigger;index:idx_sync_run_user_trigger;not null"`
	StartedAt    time.Time  `json:"started_at" gorm:"index"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	SyncedCount  int        `json:"synced_count"`
	SkippedCount int        `json:"skipped_count"`
	TotalFound   int        `json:"total_found"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Succeeded reports whether the run finished without error
func (r *SyncRun) Succeeded() bool {
	return r.FinishedAt != nil && r.Error == ""
}
