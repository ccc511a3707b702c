package models

import "time"

// Message is a persisted private chat message.
type Message struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	SenderID    string    `json:"senderId" gorm:"column:sender_id;index;not null"`
	RecipientID string    `json:"recipientId" gorm:"column:recipient_id;index;not null"`
	Content     string    `json:"content" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

// TableName specifies the table name for Message Model
func (Message) TableName() string {
	return "messages"
}
