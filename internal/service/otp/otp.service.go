package otp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"twiller-backend/internal/domain"
	"twiller-backend/internal/rate"
	"twiller-backend/pkg/xerrors"
)

// KV is the slice of the cache this service needs. *cache.Cache satisfies it.
type KV interface {
	Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, namespace, key string) (string, error)
	Delete(ctx context.Context, namespace, key string) error
	GetTTL(ctx context.Context, namespace, key string) (time.Duration, error)
}

type CodeSender interface {
	SendUploadOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

type IssuanceLogger interface {
	LogIssued(ctx context.Context, userID, purpose, channel string, issuedAt, validUntil time.Time)
}

const uploadNamespace = "upload_otp"

// Service issues and verifies the single-use passcodes gating audio
// uploads. Codes live in the store with a TTL; a new request replaces any
// pending code for the same email.
type Service struct {
	kv      KV
	limiter *rate.Limiter
	sender  CodeSender
	audit   IssuanceLogger
	ttl     time.Duration
}

func NewService(kv KV, limiter *rate.Limiter, sender CodeSender, audit IssuanceLogger, ttl time.Duration) *Service {
	return &Service{kv: kv, limiter: limiter, sender: sender, audit: audit, ttl: ttl}
}

// Request generates a fresh code for the email and dispatches it. Delivery
// failure is not fatal here: the code is already stored, so the flow can
// continue once the user obtains it.
func (s *Service) Request(ctx context.Context, email string) (string, error) {
	email = cleanEmail(email)
	if email == "" {
		return "", xerrors.ErrEmailRequired
	}

	if err := s.limiter.CanRequest(ctx, email, "audio_upload"); err != nil {
		return "", err
	}

	code := RandomCode(6)
	entry := domain.OneTimePasscode{
		Email:     email,
		Code:      code,
		Verified:  false,
		CreatedAt: time.Now(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, uploadNamespace, email, payload, s.ttl); err != nil {
		return "", err
	}

	if s.audit != nil {
		s.audit.LogIssued(ctx, email, "audio_upload", "email", entry.CreatedAt, entry.CreatedAt.Add(s.ttl))
	}

	if err := s.sender.SendUploadOTP(ctx, email, code, s.ttl); err != nil {
		log.Printf("upload OTP delivery failed for %s: %v", email, err)
		return "OTP generated. Please check server logs if email is not received.", nil
	}
	return "OTP sent successfully", nil
}

// Verify marks the pending code as verified, preserving its remaining TTL.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	email = cleanEmail(email)

	val, err := s.kv.Get(ctx, uploadNamespace, email)
	if errors.Is(err, redis.Nil) {
		return xerrors.ErrExpiredOTP
	}
	if err != nil {
		return err
	}

	var entry domain.OneTimePasscode
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return err
	}
	if entry.Code != strings.TrimSpace(code) {
		return xerrors.ErrExpiredOTP
	}

	entry.Verified = true
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	ttl, err := s.kv.GetTTL(ctx, uploadNamespace, email)
	if err != nil || ttl <= 0 {
		ttl = s.ttl
	}
	return s.kv.Set(ctx, uploadNamespace, email, payload, ttl)
}

// IsVerified reports whether a verified code is pending for the email
// without consuming it.
func (s *Service) IsVerified(ctx context.Context, email string) error {
	email = cleanEmail(email)

	val, err := s.kv.Get(ctx, uploadNamespace, email)
	if errors.Is(err, redis.Nil) {
		return xerrors.ErrOTPNotVerified
	}
	if err != nil {
		return err
	}

	var entry domain.OneTimePasscode
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return err
	}
	if !entry.Verified {
		return xerrors.ErrOTPNotVerified
	}
	return nil
}

// ConsumeVerified enforces single use: the upload succeeds only against a
// verified code, which is deleted in the process.
func (s *Service) ConsumeVerified(ctx context.Context, email string) error {
	email = cleanEmail(email)

	val, err := s.kv.Get(ctx, uploadNamespace, email)
	if errors.Is(err, redis.Nil) {
		return xerrors.ErrOTPNotVerified
	}
	if err != nil {
		return err
	}

	var entry domain.OneTimePasscode
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return err
	}
	if !entry.Verified {
		return xerrors.ErrOTPNotVerified
	}

	return s.kv.Delete(ctx, uploadNamespace, email)
}

func cleanEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
