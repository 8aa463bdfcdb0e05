package store

import (
	"context"

	"chatbridge/internal/models"

	"gorm.io/gorm"
)

type MessageLogStore struct {
	db *gorm.DB
}

func NewMessageLogStore(db *gorm.DB) *MessageLogStore {
	return &MessageLogStore{db: db}
}

// Append writes one audit record. The log is append-only; nothing updates
// or deletes entries.
func (s *MessageLogStore) Append(ctx context.Context, entry *models.MessageLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// List returns log entries newest first, optionally filtered by counterpart
// phone number and direction.
func (s *MessageLogStore) List(ctx context.Context, phoneNumber, direction string, limit int) ([]models.MessageLog, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if phoneNumber != "" {
		q = q.Where("phone_number = ?", phoneNumber)
	}
	if direction != "" {
		q = q.Where("direction = ?", direction)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []models.MessageLog
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
