package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authdomain "meeting-portal-backend/internal/auth/domain"
	authdto "meeting-portal-backend/internal/auth/dto"
	calendarDelivery "meeting-portal-backend/internal/calendar/delivery"
)

type tokenAuth struct{}

func (tokenAuth) Login(*authdto.LoginRequest) (*authdto.TokenResponse, error) { return nil, nil }
func (tokenAuth) Register(*authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	return nil, nil
}
func (tokenAuth) RefreshToken(string) (*authdto.TokenResponse, error) { return nil, nil }
func (tokenAuth) Logout(string) error { return nil }
func (tokenAuth) RegisterFCMToken(string, *authdto.RegisterFCMTokenRequest) error {
	return nil
}
func (tokenAuth) UnregisterFCMToken(string, string) error { return nil }

func (tokenAuth) ValidateToken(token string) (*authdomain.User, error) {
	switch token {
	case "admin":
		return &authdomain.User{ID: "a1", Role: authdomain.RoleAdmin}, nil
	case "member":
		return &authdomain.User{ID: "m1", Role: authdomain.RoleMember}, nil
	}
	return nil, authdomain.ErrInvalidToken
}

func newTestHandler() *Handler {
	return NewHandler(tokenAuth{},
		calendarDelivery.NewCalendarHandler(nil, nil, "http://frontend"),
		calendarDelivery.NewMeetingHandler(nil))
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes_Protection(t *testing.T) {
	r := newTestHandler().Router()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"sync requires auth", http.MethodPost, "/api/calendar/sync", "", http.StatusUnauthorized},
		{"meetings require auth", http.MethodGet, "/api/meetings", "", http.StatusUnauthorized},
		{"settings require admin", http.MethodGet, "/api/settings/sync", "member", http.StatusForbidden},
		{"settings for admin", http.MethodGet, "/api/settings/sync", "admin", http.StatusOK},
		{"preflight", http.MethodOptions, "/api/meetings", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, tt.method, tt.path, tt.token, ""); w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestSyncSettingsToggle(t *testing.T) {
	InitRuntimeConfig(true)
	r := newTestHandler().Router()

	if w := do(r, http.MethodPut, "/api/settings/sync", "admin", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing field status = %d", w.Code)
	}

	w := do(r, http.MethodPut, "/api/settings/sync", "admin", `{"auto_sync_enabled":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if GetRuntimeAutoSyncEnabled() {
		t.Error("auto sync still enabled")
	}

	w = do(r, http.MethodGet, "/api/settings/sync", "admin", "")
	if !strings.Contains(w.Body.String(), `"auto_sync_enabled":false`) {
		t.Errorf("body = %s", w.Body.String())
	}
}
