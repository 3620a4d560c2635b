package models

import (
	"time"
)

// Payment statuses and the transitions allowed between them:
// pending -> completed | failed, completed -> refunded.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

type Payment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index"`
	User       User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	PropertyID uint      `json:"property_id" gorm:"index"`
	Property   Property  `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency" gorm:"size:8;default:USD"`
	Purpose    string    `json:"purpose" gorm:"size:32"` // listing_promotion
	Status     string    `json:"status" gorm:"size:16;default:pending"`
	Reference  string    `json:"reference" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CanTransitionTo reports whether moving this payment to next is a legal
// status transition.
func (p *Payment) CanTransitionTo(next string) bool {
	switch p.Status {
	case PaymentPending:
		return next == PaymentCompleted || next == PaymentFailed
	case PaymentCompleted:
		return next == PaymentRefunded
	default:
		return false
	}
}
