package usecase

import (
	authdomain "meeting-portal-backend/internal/auth/domain"
	authdto "meeting-portal-backend/internal/auth/dto"
)

// AuthUsecase defines portal authentication and device registration
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	// RefreshToken rotates a portal refresh token: the presented token is revoked
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)

	RegisterFCMToken(userID string, req *authdto.RegisterFCMTokenRequest) error
	UnregisterFCMToken(userID, token string) error
}
