package controllers

import (
	"fmt"
	"strconv"

	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/estatelink/estatelink/db"
	"github.com/estatelink/estatelink/models"
	"github.com/estatelink/estatelink/utils"
)

// CreateProperty creates a listing owned by the caller
func CreateProperty(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	property := new(models.Property)
	if err := c.BodyParser(property); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if property.Title == "" || property.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	property.ID = 0
	property.OwnerID = userID
	property.IsPromoted = false
	property.PromotedUntil = nil
	if property.Status == "" {
		property.Status = models.PropertyActive
	}

	if err := db.DB.Create(property).Error; err != nil {
		log.Printf("Error creating property: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create property",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(property)
}

// SearchProperties lists properties with filters and pagination. Promoted
// listings sort first.
func SearchProperties(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	q := db.DB.Model(&models.Property{})
	if city := c.Query("city"); city != "" {
		q = q.Where("city = ?", city)
	}
	if region := c.Query("region"); region != "" {
		q = q.Where("region = ?", region)
	}
	if propertyType := c.Query("type"); propertyType != "" {
		q = q.Where("type = ?", propertyType)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	} else {
		q = q.Where("status = ?", models.PropertyActive)
	}
	if minPrice, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		q = q.Where("price >= ?", minPrice)
	}
	if maxPrice, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		q = q.Where("price <= ?", maxPrice)
	}
	if bedrooms, err := strconv.Atoi(c.Query("bedrooms")); err == nil {
		q = q.Where("bedrooms >= ?", bedrooms)
	}

	var count int64
	q.Count(&count)

	var properties []models.Property
	if err := q.Order("is_promoted DESC, created_at DESC").
		Limit(limit).Offset(offset).Find(&properties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch properties",
		})
	}

	return c.JSON(fiber.Map{
		"properties": properties,
		"total":      count,
		"page":       page,
		"limit":      limit,
		"pages":      (int(count) + limit - 1) / limit,
	})
}

// GetProperty returns a single listing with its owner
func GetProperty(c *fiber.Ctx) error {
	id := c.Params("id")

	var property models.Property
	if err := db.DB.Preload("Owner").First(&property, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Property not found",
		})
	}

	property.Owner.Password = ""
	return c.JSON(property)
}

// GetMyProperties lists the caller's own listings
func GetMyProperties(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var properties []models.Property
	if err := db.DB.Where("owner_id = ?", userID).
		Order("created_at DESC").Find(&properties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch properties",
		})
	}
	return c.JSON(fiber.Map{"properties": properties})
}

// UpdateProperty updates a listing. Owner only.
func UpdateProperty(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var property models.Property
	if err := db.DB.First(&property, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Property not found",
		})
	}
	if property.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't own this property",
		})
	}

	updates := new(models.Property)
	if err := c.BodyParser(updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	// Ownership and promotion state are not client-writable; promotion is
	// owned by the payment ledger. Zeroed fields are skipped by Updates.
	updates.ID = 0
	updates.OwnerID = 0
	updates.IsPromoted = false
	updates.PromotedUntil = nil

	if err := db.DB.Model(&property).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update property",
		})
	}
	return c.JSON(property)
}

// DeleteProperty removes a listing. Owner only.
func DeleteProperty(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var property models.Property
	if err := db.DB.First(&property, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Property not found",
		})
	}
	if property.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't own this property",
		})
	}

	if err := db.DB.Delete(&property).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete property",
		})
	}
	return c.JSON(fiber.Map{})
}

// UploadPropertyImage uploads a listing photo to Cloudinary and appends
// its URL to the property. Owner only.
func UploadPropertyImage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var property models.Property
	if err := db.DB.First(&property, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Property not found",
		})
	}
	if property.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't own this property",
		})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing image file",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot read image file",
		})
	}
	defer file.Close()

	publicID := fmt.Sprintf("property_%d_%d", property.ID, len(property.Images)+1)
	url, err := utils.UploadPropertyImage(file, publicID)
	if err != nil {
		log.Printf("Error uploading property image: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload image",
		})
	}

	property.Images = append(property.Images, url)
	if err := db.DB.Model(&property).Update("images", property.Images).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save image",
		})
	}
	return c.JSON(fiber.Map{"url": url, "images": property.Images})
}
