package models

import (
	"time"
)

// Message statuses mirror conversation statuses and are set per message
// by the recipient's accept/ignore actions.
const (
	MessagePending  = "pending"
	MessageAccepted = "accepted"
	MessageIgnored  = "ignored"
)

// DeletedMessageContent replaces a deleted message's content. The row is
// kept so thread ordering and counts stay intact.
const DeletedMessageContent = "This message has been deleted"

type Message struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	ConversationID uint `json:"conversation_id" gorm:"index"`

	SenderID      uint   `json:"sender_id" gorm:"index"`
	RecipientID   uint   `json:"recipient_id" gorm:"index"`
	SenderName    string `json:"sender_name"`
	RecipientName string `json:"recipient_name"`

	// Snapshot of the property this message is about, taken at send time so
	// later listing edits do not rewrite message history.
	PropertyID    *uint  `json:"property_id" gorm:"index"`
	PropertyTitle string `json:"property_title,omitempty"`

	Content string     `json:"content" gorm:"type:text"`
	IsRead  bool       `json:"is_read"`
	ReadAt  *time.Time `json:"read_at,omitempty"`
	Status  string     `json:"status" gorm:"size:16;default:pending"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
