package delivery

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/dto"
	"meeting-portal-backend/internal/calendar/usecase"

	"github.com/gin-gonic/gin"
)

// CalendarHandler handles Outlook connection and sync requests
type CalendarHandler struct {
	syncUsecase       usecase.SyncUsecase
	connectionUsecase usecase.ConnectionUsecase
	frontendURL       string
}

// NewCalendarHandler creates a new CalendarHandler
func NewCalendarHandler(syncUsecase usecase.SyncUsecase, connectionUsecase usecase.ConnectionUsecase, frontendURL string) *CalendarHandler {
	return &CalendarHandler{
		syncUsecase:       syncUsecase,
		connectionUsecase: connectionUsecase,
		frontendURL:       frontendURL,
	}
}

// Sync imports upcoming Outlook events for the authenticated user
// POST /api/calendar/sync
func (h *CalendarHandler) Sync(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	if req.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot sync another user's calendar"})
		return
	}

	trigger := calendardomain.TriggerManual
	if req.Automatic {
		trigger = calendardomain.TriggerAutomatic
	}

	summary, err := h.syncUsecase.Sync(c.Request.Context(), userID, trigger)
	if err != nil {
		status, body := syncErrorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, dto.SyncResponse{
		Success:      true,
		SyncedCount:  summary.SyncedCount,
		SkippedCount: summary.SkippedCount,
		TotalFound:   summary.TotalFound,
	})
}

func syncErrorResponse(err error) (int, gin.H) {
	var refreshFailed *calendardomain.RefreshFailedError
	var fetchFailed *calendardomain.FetchFailedError

	switch {
	case calendardomain.RequiresReconnect(err):
		return http.StatusUnauthorized, gin.H{"success": false, "error": err.Error() + ": reconnect your Outlook calendar", "reconnect_required": true}
	case errors.Is(err, calendardomain.ErrRateLimited), errors.Is(err, calendardomain.ErrSyncThrottled):
		return http.StatusTooManyRequests, gin.H{"success": false, "error": err.Error()}
	case errors.As(err, &refreshFailed):
		return http.StatusBadGateway, gin.H{"success": false, "error": "token refresh failed, try again later"}
	case errors.As(err, &fetchFailed):
		body := gin.H{"success": false, "error": "failed to fetch outlook calendar"}
		if fetchFailed.StatusCode != 0 {
			body["upstream_status"] = fetchFailed.StatusCode
		}
		return http.StatusBadGateway, body
	default:
		log.Printf("[CalendarHandler] Sync error: %v", err)
		return http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"}
	}
}

// GetSyncHistory lists recent sync runs
// GET /api/calendar/sync/history?limit=20
func (h *CalendarHandler) GetSyncHistory(c *gin.Context) {
	userID := c.GetString("userID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.syncUsecase.History(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*calendardomain.SyncRun{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Connect returns the Microsoft consent URL
// GET /api/calendar/connect
func (h *CalendarHandler) Connect(c *gin.Context) {
	userID := c.GetString("userID")

	authURL, err := h.connectionUsecase.AuthURL(userID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": authURL})
}

// Callback completes the OAuth flow and redirects back to the frontend
// GET /api/calendar/callback?code=...&state=...
func (h *CalendarHandler) Callback(c *gin.Context) {
	if errCode := c.Query("error"); errCode != "" {
		log.Printf("[CalendarHandler] Consent denied: %s %s", errCode, c.Query("error_description"))
		c.Redirect(http.StatusFound, h.redirectURL("error", errCode))
		return
	}

	userID, err := h.connectionUsecase.HandleCallback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		if errors.Is(err, calendardomain.ErrInvalidState) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired state"})
			return
		}
		log.Printf("[CalendarHandler] Callback failed: %v", err)
		c.Redirect(http.StatusFound, h.redirectURL("error", "exchange_failed"))
		return
	}

	log.Printf("[CalendarHandler] Outlook connected for user %s", userID)
	c.Redirect(http.StatusFound, h.redirectURL("connected", ""))
}

func (h *CalendarHandler) redirectURL(outcome, reason string) string {
	q := url.Values{}
	q.Set("outlook", outcome)
	if reason != "" {
		q.Set("reason", reason)
	}
	return h.frontendURL + "/settings/calendar?" + q.Encode()
}

// GetStatus reports whether Outlook is connected
// GET /api/calendar/status
func (h *CalendarHandler) GetStatus(c *gin.Context) {
	userID := c.GetString("userID")

	status, err := h.connectionUsecase.Status(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Disconnect removes the stored Outlook tokens. Imported meetings are kept.
// DELETE /api/calendar/connection
func (h *CalendarHandler) Disconnect(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.connectionUsecase.Disconnect(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Outlook disconnected"})
}
