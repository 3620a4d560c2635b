package controllers

import (
	"fmt"
	"time"

	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/db"
	"github.com/estatelink/estatelink/models"
	"github.com/estatelink/estatelink/utils"
)

// promotionDuration is how long a completed promotion payment keeps a
// listing promoted.
const promotionDuration = 30 * 24 * time.Hour

// CreatePayment records a pending payment attempt for a listing promotion
func CreatePayment(c *fiber.Ctx) error {
	type CreatePaymentInput struct {
		PropertyID uint    `json:"property_id"`
		Amount     float64 `json:"amount"`
		Currency   string  `json:"currency"`
	}

	userID := c.Locals("userID").(uint)

	input := new(CreatePaymentInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.PropertyID == 0 || input.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	var property models.Property
	if err := db.DB.First(&property, input.PropertyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Property not found",
		})
	}
	if property.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't own this property",
		})
	}

	payment := models.Payment{
		UserID:     userID,
		PropertyID: input.PropertyID,
		Amount:     input.Amount,
		Currency:   input.Currency,
		Purpose:    "listing_promotion",
		Status:     models.PaymentPending,
		Reference:  utils.GenerateUUID(),
	}
	if payment.Currency == "" {
		payment.Currency = "USD"
	}

	if err := db.DB.Create(&payment).Error; err != nil {
		log.Printf("Error creating payment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create payment",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// GetPayments lists the caller's payments, newest first
func GetPayments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var payments []models.Payment
	if err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}
	return c.JSON(fiber.Map{"payments": payments})
}

// UpdatePaymentStatus applies a status transition to the caller's payment.
// Completing a promotion payment promotes the listing and notifies the
// payer; illegal transitions are rejected.
func UpdatePaymentStatus(c *fiber.Ctx) error {
	type StatusInput struct {
		Status string `json:"status"`
	}

	userID := c.Locals("userID").(uint)

	var payment models.Payment
	if err := db.DB.First(&payment, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	}
	if payment.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not your payment",
		})
	}

	input := new(StatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if !payment.CanTransitionTo(input.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Cannot move payment from %s to %s", payment.Status, input.Status),
		})
	}

	payment.Status = input.Status
	if err := db.DB.Save(&payment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update payment",
		})
	}

	switch payment.Status {
	case models.PaymentCompleted:
		until := time.Now().Add(promotionDuration)
		if err := db.DB.Model(&models.Property{}).Where("id = ?", payment.PropertyID).
			Updates(map[string]interface{}{"is_promoted": true, "promoted_until": until}).Error; err != nil {
			log.Printf("Failed to promote property %d: %v", payment.PropertyID, err)
		}
		notifyPayment(payment, "Payment received", "Your listing promotion is now active.")
	case models.PaymentFailed:
		notifyPayment(payment, "Payment failed", "Your listing promotion payment did not go through.")
	case models.PaymentRefunded:
		if err := db.DB.Model(&models.Property{}).Where("id = ?", payment.PropertyID).
			Updates(map[string]interface{}{"is_promoted": false, "promoted_until": nil}).Error; err != nil {
			log.Printf("Failed to demote property %d: %v", payment.PropertyID, err)
		}
		notifyPayment(payment, "Payment refunded", "Your listing promotion payment was refunded.")
	}

	return c.JSON(payment)
}

func notifyPayment(payment models.Payment, title, body string) {
	notification := models.Notification{
		UserID: payment.UserID,
		Type:   models.NotificationPayment,
		Title:  title,
		Body:   body,
	}
	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to create payment notification: %v", err)
	}
}
