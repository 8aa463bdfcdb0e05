package models

import (
	"time"
)

// Firm represents an organization owning one WhatsApp sending number
type Firm struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	PhoneNumber string    `gorm:"type:varchar(20);uniqueIndex" json:"phone_number"`
	Active      bool      `gorm:"default:true" json:"active"`
	Flow        string    `gorm:"type:text" json:"flow"` // JSON flow document
	FirstStep   string    `gorm:"type:varchar(255)" json:"first_step"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Firm) TableName() string {
	return "firms"
}

// ChatUser tracks one user's position within one firm's flow
type ChatUser struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FirmID      uint      `gorm:"not null;uniqueIndex:idx_firm_phone" json:"firm_id"`
	PhoneNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_firm_phone" json:"phone_number"`
	ProfileName string    `gorm:"type:varchar(255)" json:"profile_name"`
	CurrentStep string    `gorm:"type:varchar(255)" json:"current_step"`
	LastMessage string    `gorm:"type:text" json:"last_message"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ChatUser) TableName() string {
	return "chat_users"
}

// Message log directions
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// MessageLog is an append-only audit record of one sent or received message
type MessageLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Direction       string    `gorm:"type:varchar(3);not null;index" json:"direction"`
	PhoneNumber     string    `gorm:"type:varchar(20);index" json:"phone_number"`
	Message         string    `gorm:"type:text" json:"message"`
	Status          string    `gorm:"type:varchar(50)" json:"status"`
	WabaID          string    `gorm:"type:varchar(64)" json:"waba_id"`
	FirmPhoneNumber string    `gorm:"type:varchar(20)" json:"firm_phone_number"`
	UserName        string    `gorm:"type:varchar(255)" json:"user_name"`
	MessageID       string    `gorm:"type:varchar(128)" json:"message_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MessageLog) TableName() string {
	return "message_logs"
}
