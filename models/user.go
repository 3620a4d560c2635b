package models

import (
	"time"
)

type User struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" gorm:"unique"`
	Password   string `json:"password,omitempty"`
	Role       string `json:"role" gorm:"size:16;default:customer"`
	IsVerified bool   `json:"is_verified"`

	// Agent-only profile fields, left zero for customers and admins.
	LicenseNumber string   `json:"license_number,omitempty"`
	Agency        string   `json:"agency,omitempty"`
	Experience    uint     `json:"experience,omitempty"`
	Specialties   []string `json:"specialties,omitempty" gorm:"serializer:json"`
	Region        string   `json:"region,omitempty"`

	Properties []Property `json:"properties,omitempty" gorm:"foreignKey:OwnerID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName is the display name denormalized onto messages.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
