package delivery

import (
	"errors"
	"net/http"
	"strconv"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/dto"
	"meeting-portal-backend/internal/calendar/usecase"

	"github.com/gin-gonic/gin"
)

// MeetingHandler handles meeting-related HTTP requests
type MeetingHandler struct {
	meetingUsecase usecase.MeetingUsecase
}

// NewMeetingHandler creates a new MeetingHandler
func NewMeetingHandler(meetingUsecase usecase.MeetingUsecase) *MeetingHandler {
	return &MeetingHandler{
		meetingUsecase: meetingUsecase,
	}
}

// GetMeetings returns meetings for the authenticated user
// GET /api/meetings?status=scheduled&upcoming=true&limit=50&offset=0
func (h *MeetingHandler) GetMeetings(c *gin.Context) {
	userID := c.GetString("userID")

	status := c.Query("status")
	upcoming, _ := strconv.ParseBool(c.DefaultQuery("upcoming", "false"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var statusPtr *string
	if status != "" {
		statusPtr = &status
	}

	meetings, total, err := h.meetingUsecase.ListMeetings(userID, statusPtr, upcoming, limit, offset)
	if err != nil {
		respondMeetingError(c, err)
		return
	}
	if meetings == nil {
		meetings = []*calendardomain.Meeting{}
	}

	c.JSON(http.StatusOK, gin.H{
		"meetings": meetings,
		"total":    total,
	})
}

// GetMeetingByID returns a specific meeting
// GET /api/meetings/:id
func (h *MeetingHandler) GetMeetingByID(c *gin.Context) {
	userID := c.GetString("userID")

	meeting, err := h.meetingUsecase.GetMeeting(userID, c.Param("id"))
	if err != nil {
		respondMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, meeting)
}

// CreateMeeting creates a meeting by hand
// POST /api/meetings
func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.meetingUsecase.CreateMeeting(userID, &req)
	if err != nil {
		respondMeetingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, meeting)
}

// UpdateMeeting updates an existing meeting
// PUT /api/meetings/:id
func (h *MeetingHandler) UpdateMeeting(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.meetingUsecase.UpdateMeeting(userID, c.Param("id"), &req)
	if err != nil {
		respondMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, meeting)
}

// UpdateMeetingStatus only changes the status
// PATCH /api/meetings/:id/status
func (h *MeetingHandler) UpdateMeetingStatus(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.meetingUsecase.UpdateMeeting(userID, c.Param("id"), &dto.UpdateMeetingRequest{Status: &req.Status})
	if err != nil {
		respondMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, meeting)
}

// DeleteMeeting deletes a meeting
// DELETE /api/meetings/:id
func (h *MeetingHandler) DeleteMeeting(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.meetingUsecase.DeleteMeeting(userID, c.Param("id")); err != nil {
		respondMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted successfully"})
}

func respondMeetingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calendardomain.ErrMeetingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
	case errors.Is(err, calendardomain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, calendardomain.ErrInvalidMeeting):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
