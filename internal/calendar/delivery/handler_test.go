package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/dto"

	"github.com/gin-gonic/gin"
)

type stubSync struct {
	summary *calendardomain.SyncSummary
	err     error
	trigger calendardomain.Trigger
	calls   int
}

func (s *stubSync) Sync(_ context.Context, _ string, trigger calendardomain.Trigger) (*calendardomain.SyncSummary, error) {
	s.calls++
	s.trigger = trigger
	return s.summary, s.err
}

func (s *stubSync) History(string, int) ([]*calendardomain.SyncRun, error) {
	return nil, nil
}

type stubMeetings struct {
	err error
}

func (s *stubMeetings) CreateMeeting(userID string, req *dto.CreateMeetingRequest) (*calendardomain.Meeting, error) {
	return &calendardomain.Meeting{ID: "m1", UserID: userID, Title: req.Title}, s.err
}

func (s *stubMeetings) GetMeeting(userID, id string) (*calendardomain.Meeting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &calendardomain.Meeting{ID: id, UserID: userID}, nil
}

func (s *stubMeetings) ListMeetings(string, *string, bool, int, int) ([]*calendardomain.Meeting, int64, error) {
	return nil, 0, s.err
}

func (s *stubMeetings) UpdateMeeting(userID, id string, _ *dto.UpdateMeetingRequest) (*calendardomain.Meeting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &calendardomain.Meeting{ID: id, UserID: userID}, nil
}

func (s *stubMeetings) DeleteMeeting(string, string) error { return s.err }

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func newSyncRouter(sync *stubSync) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCalendarHandler(sync, nil, "http://frontend")
	r.POST("/api/calendar/sync", withUser("u1"), h.Sync)
	r.GET("/api/calendar/sync/history", withUser("u1"), h.GetSyncHistory)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSyncHandler_Success(t *testing.T) {
	sync := &stubSync{summary: &calendardomain.SyncSummary{SyncedCount: 1, SkippedCount: 2, TotalFound: 3}}
	w := doJSON(newSyncRouter(sync), http.MethodPost, "/api/calendar/sync", `{"userId":"u1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var resp dto.SyncResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp != (dto.SyncResponse{Success: true, SyncedCount: 1, SkippedCount: 2, TotalFound: 3}) {
		t.Errorf("resp = %+v", resp)
	}
	if sync.trigger != calendardomain.TriggerManual {
		t.Errorf("trigger = %s", sync.trigger)
	}
}

func TestSyncHandler_RequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing userId", `{}`, http.StatusBadRequest},
		{"malformed json", `{"userId":`, http.StatusBadRequest},
		{"other user", `{"userId":"u2"}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sync := &stubSync{summary: &calendardomain.SyncSummary{}}
			w := doJSON(newSyncRouter(sync), http.MethodPost, "/api/calendar/sync", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if sync.calls != 0 {
				t.Error("sync ran for invalid request")
			}
		})
	}
}

func TestSyncHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not connected", calendardomain.ErrNotConnected, http.StatusUnauthorized},
		{"refresh token expired", calendardomain.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{"authentication expired", calendardomain.ErrAuthenticationExpired, http.StatusUnauthorized},
		{"rate limited", calendardomain.ErrRateLimited, http.StatusTooManyRequests},
		{"throttled", calendardomain.ErrSyncThrottled, http.StatusTooManyRequests},
		{"refresh failed", &calendardomain.RefreshFailedError{Attempts: 3, Err: errors.New("503")}, http.StatusBadGateway},
		{"fetch failed", &calendardomain.FetchFailedError{StatusCode: 503}, http.StatusBadGateway},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(newSyncRouter(&stubSync{err: tt.err}), http.MethodPost, "/api/calendar/sync", `{"userId":"u1","automatic":true}`)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			var body map[string]interface{}
			json.Unmarshal(w.Body.Bytes(), &body)
			msg, _ := body["error"].(string)
			if msg == "" {
				t.Error("error body missing")
			}
			if tt.want == http.StatusUnauthorized && !strings.Contains(msg, "reconnect") {
				t.Errorf("401 body does not ask to reconnect: %q", msg)
			}
		})
	}
}

func TestSyncHandler_History(t *testing.T) {
	w := doJSON(newSyncRouter(&stubSync{}), http.MethodGet, "/api/calendar/sync/history", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"runs":[]`) {
		t.Errorf("status=%d body=%s", w.Code, w.Body)
	}
}

func TestMeetingHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{calendardomain.ErrMeetingNotFound, http.StatusNotFound},
		{calendardomain.ErrForbidden, http.StatusForbidden},
		{calendardomain.ErrInvalidMeeting, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		h := NewMeetingHandler(&stubMeetings{err: tt.err})
		r.GET("/api/meetings/:id", withUser("u1"), h.GetMeetingByID)

		w := doJSON(r, http.MethodGet, "/api/meetings/m1", "")
		if w.Code != tt.want {
			t.Errorf("err %v: status = %d, want %d", tt.err, w.Code, tt.want)
		}
	}
}

func TestMeetingHandler_CreateRequiresFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMeetingHandler(&stubMeetings{})
	r.POST("/api/meetings", withUser("u1"), h.CreateMeeting)

	if w := doJSON(r, http.MethodPost, "/api/meetings", `{"title":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	w := doJSON(r, http.MethodPost, "/api/meetings", `{"title":"x","start_time":"2030-01-01T10:00:00Z","end_time":"2030-01-01T11:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
}
