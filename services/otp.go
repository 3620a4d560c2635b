package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/estatelink/estatelink/models"
	"github.com/estatelink/estatelink/utils"
)

const (
	// OTPTTL is how long a code stays valid. The cron reaper purges rows
	// past this as a backstop; VerifyOTP's timestamp check is authoritative.
	OTPTTL = 5 * time.Minute

	// sendTimeout bounds the email provider call. The send itself is not
	// cancelled; a late result is discarded.
	sendTimeout = 10 * time.Second
)

// OTPService generates, delivers and verifies one-time passcodes.
type OTPService struct {
	db     *gorm.DB
	mailer utils.Mailer

	// exposeCode returns the generated code to the caller instead of
	// failing on delivery errors. Development-only behavior.
	exposeCode bool

	now func() time.Time
}

func NewOTPService(db *gorm.DB, mailer utils.Mailer, exposeCode bool) *OTPService {
	return &OTPService{
		db:         db,
		mailer:     mailer,
		exposeCode: exposeCode,
		now:        time.Now,
	}
}

// OTPResult reports the outcome of an OTP request. Code is empty unless
// the service is configured to expose it.
type OTPResult struct {
	Code      string
	Delivered bool
}

// RequestOTP issues a fresh code for email, replacing any outstanding one.
// Delivery is raced against a 10 second timer; on timeout or failure the
// record still exists and is valid, and the configured exposure mode
// decides whether the caller sees the code or an error.
func (s *OTPService) RequestOTP(email string) (*OTPResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrValidation
	}

	code := utils.GenerateOTP()
	record := models.OTPRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(OTPTTL),
	}

	// At most one live code per email: replace, don't accumulate.
	if err := s.db.Where("email = ?", email).Delete(&models.OTPRecord{}).Error; err != nil {
		return nil, err
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	deliveryErr := s.deliver(email, code)
	if deliveryErr != nil {
		log.Printf("OTP delivery to %s failed: %v", email, deliveryErr)
		if !s.exposeCode {
			return nil, deliveryErr
		}
		return &OTPResult{Code: code, Delivered: false}, nil
	}

	result := &OTPResult{Delivered: true}
	if s.exposeCode {
		result.Code = code
	}
	return result, nil
}

func (s *OTPService) deliver(email, code string) error {
	body := fmt.Sprintf(`
		<h2>Your verification code</h2>
		<p>Use this code to verify your email address:</p>
		<h1>%s</h1>
		<p>The code expires in 5 minutes.</p>
	`, code)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.mailer.Send(email, "Your EstateLink verification code", body)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
		return nil
	case <-time.After(sendTimeout):
		return ErrDeliveryTimeout
	}
}

// VerifyOTP consumes the code for email. Existence is checked before
// expiry so a matching-but-stale code reports ErrExpiredCode rather than
// ErrInvalidCode. A consumed code cannot be verified twice.
func (s *OTPService) VerifyOTP(email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return ErrValidation
	}

	var record models.OTPRecord
	err := s.db.Where("email = ? AND code = ?", email, code).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrInvalidCode
		}
		return err
	}

	if s.now().After(record.ExpiresAt) {
		// Leave the row for the reaper; it must not be redeemable either way.
		return ErrExpiredCode
	}

	return s.db.Delete(&record).Error
}

// PurgeExpired removes OTP rows past their expiry. Called from cron; the
// equivalent of a document-store TTL index.
func (s *OTPService) PurgeExpired() (int64, error) {
	res := s.db.Where("expires_at < ?", s.now()).Delete(&models.OTPRecord{})
	return res.RowsAffected, res.Error
}
