package models

import (
	"time"
)

// Notification types.
const (
	NotificationMessage = "message"
	NotificationPayment = "payment"
)

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Type      string    `json:"type" gorm:"size:32"`
	Title     string    `json:"title"`
	Body      string    `json:"body" gorm:"type:text"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
