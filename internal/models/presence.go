package models

import "time"

// UserStatus is the last status string a user published ("online", "away", ...).
type UserStatus struct {
	UserID    string    `json:"userId" gorm:"column:user_id;primaryKey"`
	Status    string    `json:"status" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (UserStatus) TableName() string {
	return "user_statuses"
}

// RoomGrant restricts a room to a set of identities. A room without grants is open.
type RoomGrant struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	Room      string    `json:"room" gorm:"uniqueIndex:idx_room_user;not null"`
	UserID    string    `json:"userId" gorm:"column:user_id;uniqueIndex:idx_room_user;not null"`
	GrantedBy string    `json:"grantedBy" gorm:"column:granted_by"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RoomGrant) TableName() string {
	return "room_grants"
}
