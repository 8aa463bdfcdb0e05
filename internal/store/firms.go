package store

import (
	"context"

	"chatbridge/internal/models"

	"gorm.io/gorm"
)

type FirmStore struct {
	db *gorm.DB
}

func NewFirmStore(db *gorm.DB) *FirmStore {
	return &FirmStore{db: db}
}

// ByPhone returns the active firm owning the given sending number.
// Returns gorm.ErrRecordNotFound when no active firm matches.
func (s *FirmStore) ByPhone(ctx context.Context, phoneNumber string) (*models.Firm, error) {
	var firm models.Firm
	err := s.db.WithContext(ctx).
		Where("phone_number = ? AND active = ?", phoneNumber, true).
		First(&firm).Error
	if err != nil {
		return nil, err
	}
	return &firm, nil
}
