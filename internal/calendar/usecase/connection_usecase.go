package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/dto"
	"meeting-portal-backend/internal/calendar/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const stateExpiry = 10 * time.Minute

// connectionUsecase implements ConnectionUsecase interface
type connectionUsecase struct {
	oauthConfig *oauth2.Config
	store       repository.TokenStore
	runRepo     repository.SyncRunRepository
	stateSecret []byte
	now         func() time.Time
}

// NewConnectionUsecase creates a new instance of connectionUsecase. OAuth state is signed with stateSecret.
func NewConnectionUsecase(oauthConfig *oauth2.Config, store repository.TokenStore, runRepo repository.SyncRunRepository, stateSecret string) ConnectionUsecase {
	return &connectionUsecase{
		oauthConfig: oauthConfig,
		store:       store,
		runRepo:     runRepo,
		stateSecret: []byte(stateSecret),
		now:         time.Now,
	}
}

func (u *connectionUsecase) AuthURL(userID string) (string, error) {
	if u.oauthConfig.ClientID == "" {
		return "", errors.New("outlook integration is not configured")
	}

	now := u.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"purpose": "outlook_connect",
		"exp":     now.Add(stateExpiry).Unix(),
		"iat":     now.Unix(),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.stateSecret)
	if err != nil {
		return "", err
	}

	return u.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

func (u *connectionUsecase) HandleCallback(ctx context.Context, code, state string) (string, error) {
	userID, err := u.parseState(state)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", fmt.Errorf("%w: missing authorization code", calendardomain.ErrInvalidState)
	}

	token, err := u.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	record := &calendardomain.TokenRecord{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    u.expiry(token),
	}
	if err := u.store.Save(record); err != nil {
		return "", fmt.Errorf("failed to store outlook tokens: %w", err)
	}

	log.Printf("[Connection] Outlook connected for user %s", userID)
	return userID, nil
}

func (u *connectionUsecase) expiry(token *oauth2.Token) time.Time {
	if token.Expiry.IsZero() {
		// unknown lifetime, refresh on first use
		return u.now()
	}
	return token.Expiry.Add(-calendardomain.RefreshBuffer)
}

func (u *connectionUsecase) parseState(state string) (string, error) {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return u.stateSecret, nil
	}, jwt.WithTimeFunc(u.now))
	if err != nil || !token.Valid {
		return "", calendardomain.ErrInvalidState
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "outlook_connect" {
		return "", calendardomain.ErrInvalidState
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", calendardomain.ErrInvalidState
	}
	return userID, nil
}

func (u *connectionUsecase) Status(userID string) (*dto.ConnectionStatus, error) {
	record, err := u.store.Get(userID)
	if err != nil {
		return nil, err
	}

	status := &dto.ConnectionStatus{}
	if record == nil {
		return status, nil
	}
	status.Connected = record.RefreshToken != "" || record.AccessToken != ""
	expiresAt := record.ExpiresAt
	status.ExpiresAt = &expiresAt

	runs, err := u.runRepo.ListByUserID(userID, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) > 0 {
		status.LastSyncAt = &runs[0].StartedAt
		status.LastSyncError = runs[0].Error
	}
	return status, nil
}

func (u *connectionUsecase) Disconnect(userID string) error {
	if err := u.store.Delete(userID); err != nil {
		return err
	}
	log.Printf("[Connection] Outlook disconnected for user %s", userID)
	return nil
}
