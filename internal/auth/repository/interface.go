package repository

import authdomain "meeting-portal-backend/internal/auth/domain"

// UserRepository defines the interface for user and portal session data access
type UserRepository interface {
	Create(user *authdomain.User) error
	// FindByEmail returns nil, nil when no user has the email
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	Update(user *authdomain.User) error

	SaveRefreshToken(token *authdomain.RefreshToken) error
	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
	DeleteRefreshTokensByUser(userID string) error
}

// FCMTokenRepository defines the interface for FCM token operations
type FCMTokenRepository interface {
	SaveToken(userID, token, deviceInfo string) error
	GetTokensByUserID(userID string) ([]authdomain.FCMToken, error)
	DeleteToken(token string) error
	// DeleteUserToken removes token only if it belongs to userID
	DeleteUserToken(userID, token string) error
}
