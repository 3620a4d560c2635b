package models

import (
	"time"
)

// Conversation statuses. A conversation starts pending; accepting or
// ignoring any of its messages writes the same status onto the conversation.
const (
	ConversationPending  = "pending"
	ConversationAccepted = "accepted"
	ConversationIgnored  = "ignored"
)

type Conversation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	PropertyID  *uint     `json:"property_id" gorm:"index"`
	Property    *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Status      string    `json:"status" gorm:"size:16;default:pending"`
	LastMessage string    `json:"last_message"`

	Participants []ConversationParticipant `json:"participants,omitempty" gorm:"foreignKey:ConversationID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationParticipant links a user into a conversation and carries
// that user's unread counter for it.
type ConversationParticipant struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	ConversationID uint `json:"conversation_id" gorm:"index"`
	UserID         uint `json:"user_id" gorm:"index"`
	User           User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	UnreadCount    int  `json:"unread_count"`

	CreatedAt time.Time `json:"created_at"`
}

// HasParticipant reports whether userID is in the loaded participant list.
func (c *Conversation) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
