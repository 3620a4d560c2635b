package services

import "errors"

// Sentinel errors returned by the service layer. Controllers map these to
// HTTP statuses; everything else is a 500.
var (
	ErrValidation = errors.New("missing required fields")
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("not authorized for this resource")

	// OTP verification failures. A wrong or consumed code is reported
	// differently from a stale one so clients know whether to retype or
	// request a new code.
	ErrInvalidCode = errors.New("incorrect verification code")
	ErrExpiredCode = errors.New("verification code has expired, please request a new one")

	// Email delivery failures.
	ErrDeliveryTimeout = errors.New("email delivery timed out")
	ErrDeliveryFailed  = errors.New("email delivery failed")
)
