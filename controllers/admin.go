package controllers

import (
	"strconv"

	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/db"
	"github.com/estatelink/estatelink/models"
)

// AdminListUsers returns all users with pagination
func AdminListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	q := db.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", models.ParseRole(role))
	}

	var count int64
	q.Count(&count)

	var users []models.User
	if err := q.Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}
	for i := range users {
		users[i].Password = ""
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": count,
		"page":  page,
		"limit": limit,
		"pages": (int(count) + limit - 1) / limit,
	})
}

// AdminDeleteUser removes a user account
func AdminDeleteUser(c *fiber.Ctx) error {
	var user models.User
	if err := db.DB.First(&user, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if err := db.DB.Delete(&user).Error; err != nil {
		log.Printf("Error deleting user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete user",
		})
	}
	return c.JSON(fiber.Map{})
}

// AdminStats returns headline counts for the back-office dashboard
func AdminStats(c *fiber.Ctx) error {
	var users, agents, properties, conversations, messages, payments int64
	db.DB.Model(&models.User{}).Count(&users)
	db.DB.Model(&models.User{}).Where("role = ?", models.RoleAgent).Count(&agents)
	db.DB.Model(&models.Property{}).Count(&properties)
	db.DB.Model(&models.Conversation{}).Count(&conversations)
	db.DB.Model(&models.Message{}).Count(&messages)
	db.DB.Model(&models.Payment{}).Where("status = ?", models.PaymentCompleted).Count(&payments)

	return c.JSON(fiber.Map{
		"users":              users,
		"agents":             agents,
		"properties":         properties,
		"conversations":      conversations,
		"messages":           messages,
		"completed_payments": payments,
	})
}
