package models

import (
	"time"
)

// Property listing statuses.
const (
	PropertyActive  = "active"
	PropertyPending = "pending"
	PropertySold    = "sold"
	PropertyRented  = "rented"
)

type Property struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	OwnerID uint `json:"owner_id" gorm:"index"`
	Owner   User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`

	Title       string  `json:"title"`
	Description string  `json:"description" gorm:"type:text"`
	Type        string  `json:"type" gorm:"size:32"` // house, apartment, land, commercial
	Price       float64 `json:"price"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Area        float64 `json:"area"`
	City        string  `json:"city" gorm:"index"`
	Region      string  `json:"region"`
	Address     string  `json:"address"`

	Images []string `json:"images,omitempty" gorm:"serializer:json"`
	Status string   `json:"status" gorm:"size:16;default:active"`

	// Promotion state driven by the payment ledger.
	IsPromoted    bool       `json:"is_promoted"`
	PromotedUntil *time.Time `json:"promoted_until,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
