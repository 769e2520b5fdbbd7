package domain

import "time"

// TokenRecord holds a user's Outlook OAuth tokens. One row per user.
// ExpiresAt already has the refresh safety buffer subtracted.
type TokenRecord struct {
	UserID       string    `json:"user_id" gorm:"primaryKey"`
	AccessToken  string    `json:"-" gorm:"not null"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (TokenRecord) TableName() string { return "outlook_tokens" }

// Expired reports whether the access token should be refreshed before use
func (t *TokenRecord) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// RefreshBuffer is subtracted from the provider's stated token lifetime
const RefreshBuffer = 10 * time.Minute
