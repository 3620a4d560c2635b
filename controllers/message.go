package controllers

import (
	"fmt"

	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/db"
	"github.com/estatelink/estatelink/models"
	"github.com/estatelink/estatelink/services"
)

// SendMessage creates a message, resolving or creating its conversation
func SendMessage(c *fiber.Ctx) error {
	type SendMessageInput struct {
		ConversationID *uint  `json:"conversation_id"`
		RecipientID    uint   `json:"recipient_id"`
		Content        string `json:"content"`
		PropertyID     *uint  `json:"property_id"`
	}

	userID := c.Locals("userID").(uint)

	input := new(SendMessageInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	message, err := Messaging.SendMessage(userID, services.SendMessageInput{
		RecipientID:    input.RecipientID,
		Content:        input.Content,
		ConversationID: input.ConversationID,
		PropertyID:     input.PropertyID,
	})
	if err != nil {
		return serviceError(c, err)
	}

	// Notify the recipient. Best effort, the message is already stored.
	notification := models.Notification{
		UserID: message.RecipientID,
		Type:   models.NotificationMessage,
		Title:  "New message from " + message.SenderName,
		Body:   message.Content,
	}
	if message.PropertyTitle != "" {
		notification.Title = fmt.Sprintf("New message from %s about %s", message.SenderName, message.PropertyTitle)
	}
	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to create message notification: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetMessages lists messages addressed to the caller, filtered by status
// when ?status= is given
func GetMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	status := c.Query("status")

	messages, err := Messaging.ListMessages(userID, status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// GetConversationMessages returns a conversation's messages oldest first.
// Reading marks everything addressed to the caller as read.
func GetConversationMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	conversationID, err := paramID(c, "conversationId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	messages, err := Messaging.GetMessagesByConversation(userID, conversationID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// MarkMessageRead marks one message as read
func MarkMessageRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	messageID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message ID",
		})
	}

	message, err := Messaging.MarkMessageAsRead(userID, messageID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(message)
}

// AcceptMessage marks a message accepted; the conversation takes the same
// status
func AcceptMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	messageID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message ID",
		})
	}

	message, err := Messaging.AcceptMessage(userID, messageID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(message)
}

// IgnoreMessage marks a message ignored; the conversation takes the same
// status
func IgnoreMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	messageID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message ID",
		})
	}

	message, err := Messaging.IgnoreMessage(userID, messageID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(message)
}

// GetUnreadCount counts unread messages addressed to the caller
func GetUnreadCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := Messaging.UnreadCount(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// DeleteMessage soft-deletes a message, leaving a tombstone in place
func DeleteMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	messageID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message ID",
		})
	}

	if err := Messaging.DeleteMessage(userID, messageID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{})
}
