package verification

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/logging"
	"github.com/sevenx/marketplace/internal/models"
)

const (
	MethodSMS   = "sms"
	MethodEmail = "email"

	PurposeVerification  = "verification"
	PurposePasswordReset = "password_reset"

	codeTTL    = 10 * time.Minute
	codeLength = 6
)

// SMSSender delivers a short text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// EmailSender delivers an HTML mail to an address.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Result is the outcome of a send or check operation. DevCode is populated
// only when dev echo is enabled; it must never be exposed in production.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DevCode string `json:"dev_code,omitempty"`
}

// Service manages the verification-code lifecycle: issue, store hashed,
// expire, consume once. Delivery channels are optional; without them the
// service only works with dev echo enabled.
type Service struct {
	DB      *gorm.DB
	SMS     SMSSender
	Email   EmailSender
	DevEcho bool
	Now     func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

// GenerateCode draws a 6-digit numeric code uniformly at random.
func (s *Service) GenerateCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code)
}

// StoreCode persists a new code for (identifier, purpose), superseding any
// prior one. Only a one-way hash of the code is stored.
func (s *Service) StoreCode(ctx context.Context, identifier, code, method, purpose string) bool {
	now := s.Now().UTC()

	if err := s.DB.WithContext(ctx).
		Where("identifier = ? AND purpose = ?", identifier, purpose).
		Delete(&models.VerificationCode{}).Error; err != nil {
		logging.FromContext(ctx).Error("failed to delete prior verification codes", "error", err)
		return false
	}

	record := models.VerificationCode{
		Identifier: identifier,
		Purpose:    purpose,
		HashedCode: hashCode(code),
		Method:     method,
		CreatedAt:  now,
		ExpiresAt:  now.Add(codeTTL),
	}
	if err := s.DB.WithContext(ctx).Create(&record).Error; err != nil {
		logging.FromContext(ctx).Error("failed to store verification code", "error", err)
		return false
	}
	return true
}

// VerifyCode consumes a code: it succeeds at most once per stored record
// and never after expiry. A mismatch bumps the attempts counter on the
// live record as an audit signal.
func (s *Service) VerifyCode(ctx context.Context, identifier, code, purpose string) bool {
	now := s.Now().UTC()

	var record models.VerificationCode
	err := s.DB.WithContext(ctx).
		Where("identifier = ? AND hashed_code = ? AND purpose = ? AND verified = ? AND expires_at > ?",
			identifier, hashCode(code), purpose, false, now).
		First(&record).Error
	if err != nil {
		s.DB.WithContext(ctx).Model(&models.VerificationCode{}).
			Where("identifier = ? AND purpose = ?", identifier, purpose).
			UpdateColumn("attempts", gorm.Expr("attempts + 1"))
		return false
	}

	if err := s.DB.WithContext(ctx).Model(&record).Updates(map[string]interface{}{
		"verified":    true,
		"verified_at": now,
	}).Error; err != nil {
		logging.FromContext(ctx).Error("failed to mark code verified", "error", err)
		return false
	}
	return true
}

// SendSMS issues a code for the phone number and attempts SMS delivery.
// When no gateway is configured or delivery fails, the code is echoed back
// only if dev echo is on.
func (s *Service) SendSMS(ctx context.Context, phone, purpose string) Result {
	code := s.GenerateCode()
	if !s.StoreCode(ctx, phone, code, MethodSMS, purpose) {
		return Result{Success: false, Message: "Failed to generate verification code"}
	}

	if s.SMS == nil {
		return s.devFallback(ctx, fmt.Sprintf("SMS sent to %s", phone), code, "SMS delivery is not configured")
	}

	text := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	if err := s.SMS.Send(ctx, phone, text); err != nil {
		logging.FromContext(ctx).Error("sms delivery failed", "error", err)
		return s.devFallback(ctx, fmt.Sprintf("SMS sent to %s (fallback)", phone), code, "Failed to send verification code")
	}

	res := Result{Success: true, Message: fmt.Sprintf("SMS sent to %s", phone)}
	if s.DevEcho {
		res.DevCode = code
	}
	return res
}

// SendEmail issues a code for the address and attempts mail delivery, with
// the same dev-echo fallback policy as SendSMS.
func (s *Service) SendEmail(ctx context.Context, email, purpose string) Result {
	code := s.GenerateCode()
	if !s.StoreCode(ctx, email, code, MethodEmail, purpose) {
		return Result{Success: false, Message: "Failed to generate verification code"}
	}

	subject := "Email Verification Code"
	intro := "Please verify your email address using the code below:"
	if purpose == PurposePasswordReset {
		subject = "Password Reset Code"
		intro = "You requested to reset your password. Use the verification code below:"
	}
	body := fmt.Sprintf(
		"<html><body><p>Hello,</p><p>%s</p><h2>%s</h2><p>This code will expire in 10 minutes.</p><p>If you didn't request this, please ignore this email.</p></body></html>",
		intro, code,
	)

	if s.Email == nil {
		return s.devFallback(ctx, fmt.Sprintf("Email sent to %s (development mode)", email), code, "Email delivery is not configured")
	}

	if err := s.Email.Send(ctx, email, subject, body); err != nil {
		logging.FromContext(ctx).Error("email delivery failed", "error", err)
		return s.devFallback(ctx, fmt.Sprintf("Email sent to %s (fallback)", email), code, "Failed to send verification email")
	}

	res := Result{Success: true, Message: fmt.Sprintf("Verification email sent to %s", email)}
	if s.DevEcho {
		res.DevCode = code
	}
	return res
}

func (s *Service) devFallback(ctx context.Context, okMessage, code, failMessage string) Result {
	if s.DevEcho {
		logging.FromContext(ctx).Info("verification code issued in dev mode")
		return Result{Success: true, Message: okMessage, DevCode: code}
	}
	return Result{Success: false, Message: failMessage}
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
