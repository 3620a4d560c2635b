package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/services"
)

// serviceError translates messaging/OTP service sentinels into an HTTP
// response.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You are not a participant of this conversation",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// CreateConversation starts (or returns the existing) conversation with
// another user, optionally scoped to a property
func CreateConversation(c *fiber.Ctx) error {
	type CreateConversationInput struct {
		ParticipantID uint  `json:"participant_id"`
		PropertyID    *uint `json:"property_id"`
	}

	userID := c.Locals("userID").(uint)

	input := new(CreateConversationInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.ParticipantID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	conversation, err := Messaging.CreateOrGetConversation(userID, input.ParticipantID, input.PropertyID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(conversation)
}

// GetConversations lists the caller's conversations, most recent first
func GetConversations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	conversations, err := Messaging.ListConversations(userID)
	if err != nil {
		return serviceError(c, err)
	}

	// Surface the caller's unread count per conversation.
	out := make([]fiber.Map, 0, len(conversations))
	for _, conv := range conversations {
		unread := 0
		for i, p := range conv.Participants {
			conv.Participants[i].User.Password = ""
			if p.UserID == userID {
				unread = p.UnreadCount
			}
		}
		out = append(out, fiber.Map{
			"conversation": conv,
			"unread_count": unread,
		})
	}
	return c.JSON(fiber.Map{"conversations": out})
}

// GetConversation returns one conversation with its last 20 messages,
// oldest first
func GetConversation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	conversationID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	conversation, messages, err := Messaging.GetConversation(userID, conversationID, 20)
	if err != nil {
		return serviceError(c, err)
	}

	unread := 0
	for i, p := range conversation.Participants {
		conversation.Participants[i].User.Password = ""
		if p.UserID == userID {
			unread = p.UnreadCount
		}
	}

	return c.JSON(fiber.Map{
		"conversation": conversation,
		"messages":     messages,
		"unread_count": unread,
	})
}

// MarkConversationRead acknowledges all unread messages addressed to the
// caller in this conversation
func MarkConversationRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	conversationID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	if err := Messaging.MarkConversationAsRead(userID, conversationID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{})
}

// DeleteConversation removes the caller from the conversation; the thread
// is only physically deleted once no participants remain
func DeleteConversation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	conversationID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	if err := Messaging.DeleteConversation(userID, conversationID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{})
}
