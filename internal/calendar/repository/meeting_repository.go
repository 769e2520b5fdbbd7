package repository

import (
	"errors"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormMeetingRepository implements MeetingRepository using GORM
type gormMeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new GORM-based MeetingRepository
func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &gormMeetingRepository{db: db}
}

// Create inserts a meeting. A second import of the same remote event fails with ErrDuplicateRemoteEvent.
func (r *gormMeetingRepository) Create(meeting *calendardomain.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = uuid.New().String()
	}
	now := time.Now()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	if err := r.db.Create(meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRemoteEvent
		}
		return err
	}
	return nil
}

func (r *gormMeetingRepository) FindByID(id string) (*calendardomain.Meeting, error) {
	var meeting calendardomain.Meeting
	err := r.db.Where("id = ?", id).First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

func (r *gormMeetingRepository) FindByUserID(userID string, status *calendardomain.MeetingStatus, from *time.Time, limit, offset int) ([]*calendardomain.Meeting, int64, error) {
	var meetings []*calendardomain.Meeting
	var total int64

	query := r.db.Model(&calendardomain.Meeting{}).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if from != nil {
		query = query.Where("start_time >= ?", *from)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("start_time ASC, created_at ASC").Limit(limit).Offset(offset).Find(&meetings).Error
	return meetings, total, err
}

func (r *gormMeetingRepository) Update(meeting *calendardomain.Meeting) error {
	meeting.UpdatedAt = time.Now()
	return r.db.Save(meeting).Error
}

func (r *gormMeetingRepository) Delete(id string) error {
	return r.db.Delete(&calendardomain.Meeting{}, "id = ?", id).Error
}

func (r *gormMeetingRepository) ExistingRemoteIDs(userID string) (map[string]struct{}, error) {
	var ids []string
	err := r.db.Model(&calendardomain.Meeting{}).
		Where("user_id = ? AND remote_event_id IS NOT NULL", userID).
		Pluck("remote_event_id", &ids).Error
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return existing, nil
}
