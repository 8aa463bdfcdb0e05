package store

import (
	"context"
	"errors"

	"chatbridge/internal/models"

	"gorm.io/gorm"
)

// DefaultFirstStep is where a new conversation starts when the firm does
// not designate an entry step.
const DefaultFirstStep = "start"

type ChatUserStore struct {
	db *gorm.DB
}

func NewChatUserStore(db *gorm.DB) *ChatUserStore {
	return &ChatUserStore{db: db}
}

// GetOrCreate returns the conversation state for (firm, phone), creating it
// at the firm's entry step on first contact. The (firm_id, phone_number)
// unique index arbitrates concurrent calls: a losing insert sees
// gorm.ErrDuplicatedKey and refetches the winner's row.
func (s *ChatUserStore) GetOrCreate(ctx context.Context, firm *models.Firm, phoneNumber, profileName string) (*models.ChatUser, error) {
	var user models.ChatUser
	err := s.db.WithContext(ctx).
		Where("firm_id = ? AND phone_number = ?", firm.ID, phoneNumber).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	firstStep := firm.FirstStep
	if firstStep == "" {
		firstStep = DefaultFirstStep
	}
	user = models.ChatUser{
		FirmID:      firm.ID,
		PhoneNumber: phoneNumber,
		ProfileName: profileName,
		CurrentStep: firstStep,
	}
	err = s.db.WithContext(ctx).Create(&user).Error
	if err == nil {
		return &user, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing models.ChatUser
		if err := s.db.WithContext(ctx).
			Where("firm_id = ? AND phone_number = ?", firm.ID, phoneNumber).
			First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return nil, err
}

// Update persists the step transition and the input that triggered it.
func (s *ChatUserStore) Update(ctx context.Context, user *models.ChatUser, nextStep, lastInput string) error {
	user.CurrentStep = nextStep
	user.LastMessage = lastInput
	return s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"current_step": nextStep,
		"last_message": lastInput,
	}).Error
}
