package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"twiller-backend/pkg/xerrors"
)

// Language change is verified out-of-band: French by email, everything
// else by SMS to the registered mobile.

var supportedLanguages = map[string]bool{
	"en": true, "es": true, "hi": true, "pt": true, "ta": true, "fr": true,
}

type LanguageChallenge struct {
	Message  string `json:"message"`
	Delivery string `json:"delivery"`
}

func (uc *AuthUsecase) RequestLanguageChange(ctx context.Context, email, lang string) (*LanguageChallenge, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	lang = strings.ToLower(strings.TrimSpace(lang))
	if email == "" || !supportedLanguages[lang] {
		return nil, xerrors.ErrInvalidRequest
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if lang != "fr" && user.Mobile == "" {
		return nil, xerrors.ErrMobileRequired
	}

	now := uc.clock.Now()
	// A pending code issued less than a minute ago still stands.
	if user.LanguageOTPExpiry != nil && user.LanguageOTPExpiry.Sub(now) > uc.languageTTL-time.Minute {
		return nil, xerrors.ErrTooManyOTPRequests
	}

	code := uc.codegen(6)
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := uc.users.SetLanguageOTP(ctx, user.ID, lang, string(hash), now.Add(uc.languageTTL)); err != nil {
		return nil, err
	}

	if lang == "fr" {
		if err := uc.mailer.SendLanguageOTP(ctx, user.Email, code, uc.languageTTL); err != nil {
			log.Printf("language OTP email failed for %s: %v", user.Email, err)
			return nil, fmt.Errorf("%w: %v", xerrors.ErrDeliveryFailure, err)
		}
		return &LanguageChallenge{
			Message:  "OTP sent to your registered email.",
			Delivery: "email",
		}, nil
	}

	if err := uc.mailer.SendLanguageSMS(ctx, user.Mobile, code, uc.languageTTL); err != nil {
		log.Printf("language OTP SMS failed for %s: %v", user.Mobile, err)
		return nil, fmt.Errorf("%w: %v", xerrors.ErrDeliveryFailure, err)
	}
	return &LanguageChallenge{
		Message:  "OTP sent to your registered mobile number.",
		Delivery: "sms",
	}, nil
}

// VerifyLanguageChange applies the pending language on a code match and
// returns the newly active language.
func (uc *AuthUsecase) VerifyLanguageChange(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return "", xerrors.ErrInvalidRequest
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.PendingLanguage == nil || user.LanguageOTPHash == nil || user.LanguageOTPExpiry == nil {
		return "", xerrors.ErrNoPendingLanguage
	}
	if uc.clock.Now().After(*user.LanguageOTPExpiry) {
		return "", xerrors.ErrExpiredOTP
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.LanguageOTPHash), []byte(strings.TrimSpace(code))) != nil {
		return "", xerrors.ErrInvalidOTP
	}

	lang := *user.PendingLanguage
	if err := uc.users.CompleteLanguageChange(ctx, user.ID, lang); err != nil {
		return "", err
	}
	return lang, nil
}
