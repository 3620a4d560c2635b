package services

import (
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/estatelink/estatelink/models"
)

// MessagingService owns conversations and messages between two users,
// optionally scoped to a property listing.
type MessagingService struct {
	db *gorm.DB
}

func NewMessagingService(db *gorm.DB) *MessagingService {
	return &MessagingService{db: db}
}

// findConversation looks up the one conversation keyed by the unordered
// user pair and the property scope (nil property is its own key).
func (s *MessagingService) findConversation(userA, userB uint, propertyID *uint) (*models.Conversation, error) {
	q := s.db.Model(&models.Conversation{}).
		Joins("JOIN conversation_participants p1 ON p1.conversation_id = conversations.id AND p1.user_id = ?", userA).
		Joins("JOIN conversation_participants p2 ON p2.conversation_id = conversations.id AND p2.user_id = ?", userB)
	if propertyID != nil {
		q = q.Where("conversations.property_id = ?", *propertyID)
	} else {
		q = q.Where("conversations.property_id IS NULL")
	}

	var conv models.Conversation
	if err := q.First(&conv).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Participants").First(&conv, conv.ID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateOrGetConversation returns the existing conversation for the
// pair/property key, or creates a pending one. Calling it twice with the
// same arguments yields the same conversation.
func (s *MessagingService) CreateOrGetConversation(callerID, otherID uint, propertyID *uint) (*models.Conversation, error) {
	var caller, other models.User
	if err := s.db.First(&caller, callerID).Error; err != nil {
		return nil, ErrNotFound
	}
	if err := s.db.First(&other, otherID).Error; err != nil {
		return nil, ErrNotFound
	}

	var property models.Property
	if propertyID != nil {
		if err := s.db.First(&property, *propertyID).Error; err != nil {
			return nil, ErrNotFound
		}
	}

	if conv, err := s.findConversation(callerID, otherID, propertyID); err == nil {
		return conv, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	title := other.FullName()
	if propertyID != nil {
		title = property.Title
	}

	conv := models.Conversation{
		Title:      title,
		PropertyID: propertyID,
		Status:     models.ConversationPending,
		Participants: []models.ConversationParticipant{
			{UserID: callerID},
			{UserID: otherID},
		},
	}
	if err := s.db.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// SendMessageInput carries everything a send needs beyond the caller.
type SendMessageInput struct {
	RecipientID    uint
	Content        string
	ConversationID *uint
	PropertyID     *uint
}

// SendMessage appends a message to its conversation, resolving the
// conversation from the explicit id when given, otherwise by the
// pair/property key (creating one if needed). Sender and recipient names
// and the property title are snapshotted onto the message.
func (s *MessagingService) SendMessage(senderID uint, in SendMessageInput) (*models.Message, error) {
	if in.RecipientID == 0 || strings.TrimSpace(in.Content) == "" {
		return nil, ErrValidation
	}

	var conv *models.Conversation
	if in.ConversationID != nil {
		var found models.Conversation
		if err := s.db.Preload("Participants").First(&found, *in.ConversationID).Error; err != nil {
			return nil, ErrNotFound
		}
		if !found.HasParticipant(senderID) {
			return nil, ErrForbidden
		}
		if !found.HasParticipant(in.RecipientID) {
			return nil, ErrValidation
		}
		conv = &found
	} else {
		created, err := s.CreateOrGetConversation(senderID, in.RecipientID, in.PropertyID)
		if err != nil {
			return nil, err
		}
		conv = created
	}

	var sender, recipient models.User
	if err := s.db.First(&sender, senderID).Error; err != nil {
		return nil, ErrNotFound
	}
	if err := s.db.First(&recipient, in.RecipientID).Error; err != nil {
		return nil, ErrNotFound
	}

	propertyID := in.PropertyID
	if propertyID == nil {
		propertyID = conv.PropertyID
	}
	propertyTitle := ""
	if propertyID != nil {
		var property models.Property
		if err := s.db.First(&property, *propertyID).Error; err == nil {
			propertyTitle = property.Title
		}
	}

	message := models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		RecipientID:    in.RecipientID,
		SenderName:     sender.FullName(),
		RecipientName:  recipient.FullName(),
		PropertyID:     propertyID,
		PropertyTitle:  propertyTitle,
		Content:        in.Content,
		Status:         models.MessagePending,
	}

	// Message insert and the recipient's unread bump commit together.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ?", conv.ID, in.RecipientID).
			UpdateColumn("unread_count", gorm.Expr("unread_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	// Preview update after the primary write; a failure here is logged, not
	// retried.
	preview := truncatePreview(in.Content, 120)
	if err := s.db.Model(&models.Conversation{}).Where("id = ?", conv.ID).
		Updates(map[string]interface{}{"last_message": preview, "updated_at": time.Now()}).Error; err != nil {
		log.Printf("Failed to update conversation %d preview: %v", conv.ID, err)
	}

	return &message, nil
}

// truncatePreview cuts s to at most max bytes without splitting a
// multi-byte character.
func truncatePreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// GetMessagesByConversation returns the conversation's messages oldest
// first. Reading marks every unread message addressed to the caller as
// read and zeroes the caller's unread counter.
func (s *MessagingService) GetMessagesByConversation(callerID, conversationID uint) ([]models.Message, error) {
	conv, err := s.participantConversation(callerID, conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.markRead(callerID, conv.ID); err != nil {
		return nil, err
	}

	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conv.ID).
		Order("created_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// GetConversation returns the conversation with its participants and the
// most recent `limit` messages in oldest-first order.
func (s *MessagingService) GetConversation(callerID, conversationID uint, limit int) (*models.Conversation, []models.Message, error) {
	conv, err := s.participantConversation(callerID, conversationID)
	if err != nil {
		return nil, nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conv.ID).
		Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return conv, messages, nil
}

// ListConversations returns every conversation the caller participates in,
// most recently active first.
func (s *MessagingService) ListConversations(callerID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.db.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id AND cp.user_id = ?", callerID).
		Preload("Participants.User").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// MarkConversationAsRead acknowledges every unread message addressed to
// the caller in this conversation.
func (s *MessagingService) MarkConversationAsRead(callerID, conversationID uint) error {
	conv, err := s.participantConversation(callerID, conversationID)
	if err != nil {
		return err
	}
	return s.markRead(callerID, conv.ID)
}

func (s *MessagingService) markRead(callerID, conversationID uint) error {
	now := time.Now()
	err := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND is_read = ?", conversationID, callerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return err
	}
	return s.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, callerID).
		UpdateColumn("unread_count", 0).Error
}

// MarkMessageAsRead marks a single message read. Recipient only.
func (s *MessagingService) MarkMessageAsRead(callerID, messageID uint) (*models.Message, error) {
	var message models.Message
	if err := s.db.First(&message, messageID).Error; err != nil {
		return nil, ErrNotFound
	}
	if message.RecipientID != callerID {
		return nil, ErrForbidden
	}
	now := time.Now()
	message.IsRead = true
	message.ReadAt = &now
	if err := s.db.Save(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// AcceptMessage marks the message accepted and writes the same status onto
// its conversation. Recipient only.
func (s *MessagingService) AcceptMessage(callerID, messageID uint) (*models.Message, error) {
	return s.setMessageStatus(callerID, messageID, models.MessageAccepted)
}

// IgnoreMessage marks the message ignored and writes the same status onto
// its conversation. Recipient only.
func (s *MessagingService) IgnoreMessage(callerID, messageID uint) (*models.Message, error) {
	return s.setMessageStatus(callerID, messageID, models.MessageIgnored)
}

// setMessageStatus applies status to one message and, last-writer-wins,
// to the owning conversation.
func (s *MessagingService) setMessageStatus(callerID, messageID uint, status string) (*models.Message, error) {
	var message models.Message
	if err := s.db.First(&message, messageID).Error; err != nil {
		return nil, ErrNotFound
	}
	if message.RecipientID != callerID {
		return nil, ErrForbidden
	}

	message.Status = status
	if err := s.db.Save(&message).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Conversation{}).
		Where("id = ?", message.ConversationID).
		UpdateColumn("status", status).Error; err != nil {
		log.Printf("Failed to update conversation %d status: %v", message.ConversationID, err)
	}
	return &message, nil
}

// ListMessages returns messages addressed to the caller, newest first,
// optionally filtered by status.
func (s *MessagingService) ListMessages(callerID uint, status string) ([]models.Message, error) {
	q := s.db.Where("recipient_id = ?", callerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var messages []models.Message
	err := q.Order("created_at DESC").Find(&messages).Error
	return messages, err
}

// UnreadCount counts unread messages addressed to the caller across all
// conversations.
func (s *MessagingService) UnreadCount(callerID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", callerID, false).
		Count(&count).Error
	return count, err
}

// DeleteMessage soft-deletes: the content is replaced with a tombstone and
// the row stays so thread counts are preserved. Sender or recipient only.
func (s *MessagingService) DeleteMessage(callerID, messageID uint) error {
	var message models.Message
	if err := s.db.First(&message, messageID).Error; err != nil {
		return ErrNotFound
	}
	if message.SenderID != callerID && message.RecipientID != callerID {
		return ErrForbidden
	}
	return s.db.Model(&message).UpdateColumn("content", models.DeletedMessageContent).Error
}

// DeleteConversation removes the caller from the participant list. Only
// when the list empties is the conversation, with all its messages,
// physically deleted.
func (s *MessagingService) DeleteConversation(callerID, conversationID uint) error {
	conv, err := s.participantConversation(callerID, conversationID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ? AND user_id = ?", conv.ID, callerID).
			Delete(&models.ConversationParticipant{}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ?", conv.ID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, conv.ID).Error
	})
}

// participantConversation loads the conversation and verifies the caller
// belongs to it.
func (s *MessagingService) participantConversation(callerID, conversationID uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.Preload("Participants.User").First(&conv, conversationID).Error; err != nil {
		return nil, ErrNotFound
	}
	if !conv.HasParticipant(callerID) {
		return nil, ErrForbidden
	}
	return &conv, nil
}
