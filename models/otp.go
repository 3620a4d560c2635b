package models

import (
	"time"
)

// OTPRecord holds a pending one-time passcode for an email address.
// At most one live record exists per email: requesting a new code deletes
// prior records before inserting. Rows past ExpiresAt are purged by the
// cron reaper, but the expiry check in the OTP service is authoritative.
type OTPRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index"`
	Code      string    `json:"code" gorm:"size:6"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
