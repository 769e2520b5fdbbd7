package repository

import (
	"errors"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenStore implements TokenStore on the outlook_tokens table
type tokenStore struct {
	db *gorm.DB
}

// NewTokenStore creates a new instance of tokenStore
func NewTokenStore(db *gorm.DB) TokenStore {
	return &tokenStore{
		db: db,
	}
}

func (s *tokenStore) Get(userID string) (*calendardomain.TokenRecord, error) {
	var record calendardomain.TokenRecord
	err := s.db.Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Save upserts on user_id so concurrent refreshes overwrite each other
func (s *tokenStore) Save(record *calendardomain.TokenRecord) error {
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
	}).Create(record).Error
}

func (s *tokenStore) Delete(userID string) error {
	return s.db.Where("user_id = ?", userID).Delete(&calendardomain.TokenRecord{}).Error
}

func (s *tokenStore) ListConnected() ([]*calendardomain.TokenRecord, error) {
	var records []*calendardomain.TokenRecord
	err := s.db.Where("refresh_token <> '' OR access_token <> ''").Order("user_id").Find(&records).Error
	return records, err
}
