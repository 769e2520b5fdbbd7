package usecase

import (
	"fmt"
	"strings"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/dto"
	"meeting-portal-backend/internal/calendar/repository"

	"github.com/google/uuid"
)

// meetingUsecase implements MeetingUsecase interface
type meetingUsecase struct {
	meetingRepo repository.MeetingRepository
	now         func() time.Time
}

// NewMeetingUsecase creates a new instance of meetingUsecase
func NewMeetingUsecase(meetingRepo repository.MeetingRepository) MeetingUsecase {
	return &meetingUsecase{
		meetingRepo: meetingRepo,
		now:         time.Now,
	}
}

func (u *meetingUsecase) CreateMeeting(userID string, req *dto.CreateMeetingRequest) (*calendardomain.Meeting, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", calendardomain.ErrInvalidMeeting)
	}
	start, err := parseTime("start_time", req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTime("end_time", req.EndTime)
	if err != nil {
		return nil, err
	}

	meetingType := calendardomain.MeetingType(req.MeetingType)
	if req.MeetingType == "" {
		meetingType = calendardomain.MeetingTypePhysical
		if req.JoinURL != "" {
			meetingType = calendardomain.MeetingTypeOnline
		}
	}

	now := u.now()
	meeting := &calendardomain.Meeting{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		MeetingType: meetingType,
		JoinURL:     req.JoinURL,
		Location:    req.Location,
		Status:      calendardomain.MeetingStatusScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateMeeting(meeting, true); err != nil {
		return nil, err
	}

	if err := u.meetingRepo.Create(meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (u *meetingUsecase) GetMeeting(userID, meetingID string) (*calendardomain.Meeting, error) {
	meeting, err := u.meetingRepo.FindByID(meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, calendardomain.ErrMeetingNotFound
	}
	if meeting.UserID != userID {
		return nil, calendardomain.ErrForbidden
	}
	return meeting, nil
}

func (u *meetingUsecase) ListMeetings(userID string, status *string, upcoming bool, limit, offset int) ([]*calendardomain.Meeting, int64, error) {
	var statusFilter *calendardomain.MeetingStatus
	if status != nil && *status != "" {
		s := calendardomain.MeetingStatus(*status)
		if !calendardomain.IsValidStatus(s) {
			return nil, 0, fmt.Errorf("%w: unknown status %q", calendardomain.ErrInvalidMeeting, *status)
		}
		statusFilter = &s
	}

	var from *time.Time
	if upcoming {
		now := u.now()
		from = &now
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.meetingRepo.FindByUserID(userID, statusFilter, from, limit, offset)
}

func (u *meetingUsecase) UpdateMeeting(userID, meetingID string, req *dto.UpdateMeetingRequest) (*calendardomain.Meeting, error) {
	meeting, err := u.GetMeeting(userID, meetingID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		meeting.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		meeting.Description = *req.Description
	}
	if req.StartTime != nil {
		t, err := parseTime("start_time", *req.StartTime)
		if err != nil {
			return nil, err
		}
		meeting.StartTime = t
	}
	if req.EndTime != nil {
		t, err := parseTime("end_time", *req.EndTime)
		if err != nil {
			return nil, err
		}
		meeting.EndTime = t
	}
	if req.JoinURL != nil {
		meeting.JoinURL = *req.JoinURL
	}
	if req.MeetingType != nil {
		meeting.MeetingType = calendardomain.MeetingType(*req.MeetingType)
	}
	if req.Location != nil {
		meeting.Location = *req.Location
	}
	if req.Status != nil {
		meeting.Status = calendardomain.MeetingStatus(*req.Status)
	}

	// imported meetings may be zero-length; the range is only rechecked when it changes
	if err := validateMeeting(meeting, req.StartTime != nil || req.EndTime != nil); err != nil {
		return nil, err
	}

	meeting.UpdatedAt = u.now()
	if err := u.meetingRepo.Update(meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (u *meetingUsecase) DeleteMeeting(userID, meetingID string) error {
	meeting, err := u.GetMeeting(userID, meetingID)
	if err != nil {
		return err
	}
	return u.meetingRepo.Delete(meeting.ID)
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC3339", calendardomain.ErrInvalidMeeting, field)
	}
	return t.UTC(), nil
}

func validateMeeting(m *calendardomain.Meeting, checkTimes bool) error {
	if m.Title == "" {
		return fmt.Errorf("%w: title is required", calendardomain.ErrInvalidMeeting)
	}
	if checkTimes && !m.EndTime.After(m.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", calendardomain.ErrInvalidMeeting)
	}
	if !calendardomain.IsValidMeetingType(m.MeetingType) {
		return fmt.Errorf("%w: unknown meeting_type %q", calendardomain.ErrInvalidMeeting, m.MeetingType)
	}
	if !calendardomain.IsValidStatus(m.Status) {
		return fmt.Errorf("%w: unknown status %q", calendardomain.ErrInvalidMeeting, m.Status)
	}
	return nil
}
