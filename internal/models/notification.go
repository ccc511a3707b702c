package models

import "time"

// Notification is a persisted per-user notification. The realtime event is only
// a hint; this row is the source of truth.
type Notification struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"userId" gorm:"column:user_id;index;not null"`
	Kind      string     `json:"kind" gorm:"not null;default:'generic'"`
	Title     string     `json:"title" gorm:"not null"`
	Body      string     `json:"body"`
	Read      bool       `json:"read" gorm:"not null;default:false"`
	ReadAt    *time.Time `json:"readAt,omitempty" gorm:"column:read_at"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
}

func (Notification) TableName() string {
	return "notifications"
}
