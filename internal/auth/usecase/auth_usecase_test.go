package usecase

import (
	"errors"
	"testing"
	"time"

	authdomain "meeting-portal-backend/internal/auth/domain"
	authdto "meeting-portal-backend/internal/auth/dto"
	"meeting-portal-backend/internal/auth/repository"
	"meeting-portal-backend/pkg/config"

	"github.com/google/uuid"
)

type fakeUserRepo struct {
	users  map[string]*authdomain.User
	tokens map[string]*authdomain.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*authdomain.User),
		tokens: make(map[string]*authdomain.RefreshToken),
	}
}

func (r *fakeUserRepo) Create(user *authdomain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return authdomain.ErrEmailTaken
		}
	}
	user.ID = uuid.New().String()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) Update(user *authdomain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(token *authdomain.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return r.tokens[token], nil
}

func (r *fakeUserRepo) DeleteRefreshToken(token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) DeleteRefreshTokensByUser(userID string) error {
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

type fakeFCMRepo struct {
	saved   map[string]string
	deleted []string
}

func (r *fakeFCMRepo) SaveToken(userID, token, deviceInfo string) error {
	r.saved[token] = userID
	return nil
}

func (r *fakeFCMRepo) GetTokensByUserID(userID string) ([]authdomain.FCMToken, error) {
	return nil, nil
}

func (r *fakeFCMRepo) DeleteToken(token string) error {
	r.deleted = append(r.deleted, token)
	return nil
}

func (r *fakeFCMRepo) DeleteUserToken(userID, token string) error {
	if r.saved[token] == userID {
		delete(r.saved, token)
	}
	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.FCMTokenRepository = (*fakeFCMRepo)(nil)

func newTestAuth(t *testing.T) (*authUsecase, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
	uc := NewAuthUsecase(repo, &fakeFCMRepo{saved: map[string]string{}}, cfg).(*authUsecase)
	return uc, repo
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _ := newTestAuth(t)

	resp, err := uc.Register(&authdto.RegisterRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User.Role != authdomain.RoleMember {
		t.Errorf("role = %q", resp.User.Role)
	}

	if _, err := uc.Register(&authdto.RegisterRequest{Email: "ana@example.com", Password: "other12", Name: "Ana"}); !errors.Is(err, authdomain.ErrEmailTaken) {
		t.Errorf("duplicate register err = %v", err)
	}

	if _, err := uc.Login(&authdto.LoginRequest{Email: "ana@example.com", Password: "wrong99"}); !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := uc.Login(&authdto.LoginRequest{Email: "nobody@example.com", Password: "secret1"}); !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}

	login, err := uc.Login(&authdto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	user, err := uc.ValidateToken(login.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestValidateToken_RejectsRefreshAndExpired(t *testing.T) {
	uc, _ := newTestAuth(t)
	resp, err := uc.Register(&authdto.RegisterRequest{Email: "b@example.com", Password: "secret1", Name: "B"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uc.ValidateToken(resp.RefreshToken); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
	if _, err := uc.ValidateToken("not-a-jwt"); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Errorf("garbage err = %v", err)
	}

	base := time.Now()
	uc.now = func() time.Time { return base.Add(time.Hour) }
	if _, err := uc.ValidateToken(resp.AccessToken); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Errorf("expired token err = %v", err)
	}
}

func TestRefreshToken_Rotates(t *testing.T) {
	uc, repo := newTestAuth(t)
	resp, err := uc.Register(&authdto.RegisterRequest{Email: "c@example.com", Password: "secret1", Name: "C"})
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := uc.RefreshToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if rotated.RefreshToken == resp.RefreshToken {
		t.Error("refresh token not rotated")
	}
	if _, ok := repo.tokens[resp.RefreshToken]; ok {
		t.Error("old refresh token still stored")
	}

	if _, err := uc.RefreshToken(resp.RefreshToken); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Errorf("reused refresh token err = %v", err)
	}

	if err := uc.Logout(rotated.RefreshToken); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.RefreshToken(rotated.RefreshToken); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Errorf("logged out refresh token err = %v", err)
	}
}

func TestFCMTokenRegistration(t *testing.T) {
	uc, _ := newTestAuth(t)
	fcmRepo := uc.fcmRepo.(*fakeFCMRepo)

	if err := uc.RegisterFCMToken("u1", &authdto.RegisterFCMTokenRequest{Token: "device-1"}); err != nil {
		t.Fatal(err)
	}
	if fcmRepo.saved["device-1"] != "u1" {
		t.Fatalf("saved = %v", fcmRepo.saved)
	}

	// another user cannot remove it
	_ = uc.UnregisterFCMToken("u2", "device-1")
	if _, ok := fcmRepo.saved["device-1"]; !ok {
		t.Error("token removed by another user")
	}

	_ = uc.UnregisterFCMToken("u1", "device-1")
	if _, ok := fcmRepo.saved["device-1"]; ok {
		t.Error("token not removed")
	}
}
