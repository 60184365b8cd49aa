package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"twiller-backend/internal/domain"
	"twiller-backend/internal/service/logingate"
	"twiller-backend/internal/service/timewindow"
	"twiller-backend/pkg/id"
	"twiller-backend/pkg/xerrors"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// AuthUsecase covers registration, the gated login flows, password reset
// and profile maintenance.
type AuthUsecase struct {
	users   UserRepo
	history HistoryRepo
	gate    *logingate.Gate
	mailer  Mailer
	clock   timewindow.Clock
	idgen   func() string

	languageTTL time.Duration
	codegen     func(digits int) string
}

func NewAuthUsecase(
	users UserRepo,
	history HistoryRepo,
	gate *logingate.Gate,
	mailer Mailer,
	clock timewindow.Clock,
	idgen func() string,
	languageTTL time.Duration,
	codegen func(digits int) string,
) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		history:     history,
		gate:        gate,
		mailer:      mailer,
		clock:       clock,
		idgen:       idgen,
		languageTTL: languageTTL,
		codegen:     codegen,
	}
}

type RegisterInput struct {
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Password    string `json:"password"`
	IsLogin     bool   `json:"isLogin"`
}

type RegisterResult struct {
	User     *domain.User
	Created  bool
	Decision *logingate.Decision
}

// Register creates the user if the email is new; an existing email is not
// an error because the frontend calls this after Google sign-in too. When
// the request marks a login attempt the gate runs against the account.
func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput, rawUA, ip string) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, xerrors.ErrEmailRequired
	}
	if in.Mobile != "" && !mobilePattern.MatchString(in.Mobile) {
		return nil, xerrors.ErrInvalidMobile
	}

	user, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account, fall through to the gate below.
	case errors.Is(err, xerrors.ErrUserNotFound):
		var hash string
		if in.Password != "" {
			h, herr := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
			if herr != nil {
				return nil, herr
			}
			hash = string(h)
		}
		user = &domain.User{
			ID:                uc.idgen(),
			Username:          in.Username,
			DisplayName:       in.DisplayName,
			Avatar:            in.Avatar,
			Email:             email,
			Mobile:            in.Mobile,
			PasswordHash:      hash,
			JoinedDate:        uc.clock.Now(),
			SubscriptionPlan:  "Free",
			PreferredLanguage: "en",
		}
		if err := uc.users.Create(ctx, user); err != nil {
			return nil, err
		}
		res := &RegisterResult{User: user, Created: true}
		if in.IsLogin {
			d, derr := uc.gate.Check(ctx, user, rawUA, ip)
			if derr != nil {
				return nil, derr
			}
			res.Decision = d
		}
		return res, nil
	default:
		return nil, err
	}

	res := &RegisterResult{User: user}
	if in.IsLogin {
		d, derr := uc.gate.Check(ctx, user, rawUA, ip)
		if derr != nil {
			return nil, derr
		}
		res.Decision = d
	}
	return res, nil
}

// Login verifies credentials and hands the request to the gate.
func (uc *AuthUsecase) Login(ctx context.Context, email, password, rawUA, ip string) (*domain.User, *logingate.Decision, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, xerrors.ErrPasswordRequired
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user.PasswordHash == "" {
		return nil, nil, xerrors.ErrNoPasswordSet
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, xerrors.ErrInvalidCredentials
	}

	decision, err := uc.gate.Check(ctx, user, rawUA, ip)
	if err != nil {
		return nil, nil, err
	}
	return user, decision, nil
}

// VerifyLoginOTP completes a pending challenge and returns the account.
func (uc *AuthUsecase) VerifyLoginOTP(ctx context.Context, email, code, rawUA, ip string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return nil, xerrors.ErrInvalidRequest
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := uc.gate.VerifyChallenge(ctx, user, code, rawUA, ip); err != nil {
		return nil, err
	}
	return user, nil
}

// LoggedInUser resolves the session user and lazily downgrades an expired
// paid subscription back to Free. When the lookup marks a login attempt the
// gate runs as well, so Google sign-ins get the same disposition as
// password logins.
func (uc *AuthUsecase) LoggedInUser(ctx context.Context, email string, isLogin bool, rawUA, ip string) (*domain.User, *logingate.Decision, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil, xerrors.ErrEmailRequired
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if user.SubscriptionPlan != "Free" && user.SubscriptionExpiryDate != nil &&
		uc.clock.Now().After(*user.SubscriptionExpiryDate) {
		if err := uc.users.SetSubscription(ctx, user.ID, "Free", nil, nil, false); err != nil {
			return nil, nil, err
		}
		user.SubscriptionPlan = "Free"
		user.SubscriptionStartDate = nil
		user.SubscriptionExpiryDate = nil
	}

	var decision *logingate.Decision
	if isLogin {
		decision, err = uc.gate.Check(ctx, user, rawUA, ip)
		if err != nil {
			return nil, nil, err
		}
	}
	return user, decision, nil
}

func (uc *AuthUsecase) LoginHistory(ctx context.Context, userID string) ([]*domain.LoginHistoryRecord, error) {
	if userID == "" {
		return nil, xerrors.ErrInvalidRequest
	}
	return uc.history.ListByUser(ctx, userID)
}

func (uc *AuthUsecase) UpdateProfile(ctx context.Context, email string, fields map[string]interface{}) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, xerrors.ErrEmailRequired
	}
	if mobile, ok := fields["mobile"].(string); ok && mobile != "" && !mobilePattern.MatchString(mobile) {
		return nil, xerrors.ErrInvalidMobile
	}
	return uc.users.UpdateProfile(ctx, email, fields)
}

// ForgotPassword resets the account to a generated letters-only password
// and mails it. Allowed once per calendar day; an unknown identity still
// returns the generic message so addresses cannot be probed.
func (uc *AuthUsecase) ForgotPassword(ctx context.Context, identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", xerrors.ErrIdentityRequired
	}

	const sent = "If an account exists, a new password has been sent to the registered email."

	user, err := uc.users.GetByIdentity(ctx, identity)
	if errors.Is(err, xerrors.ErrUserNotFound) {
		return sent, nil
	}
	if err != nil {
		return "", err
	}

	now := uc.clock.Now()
	if user.LastResetDate != nil && sameDay(*user.LastResetDate, now) {
		return "", xerrors.ErrResetLimitReached
	}

	password, err := uc.idgenPassword()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	// Mail before persisting so a delivery failure never locks the user out
	// of a password nobody saw.
	if err := uc.mailer.SendPasswordReset(ctx, user.Email, password); err != nil {
		log.Printf("password reset delivery failed for %s: %v", user.Email, err)
		return "", fmt.Errorf("%w: %v", xerrors.ErrDeliveryFailure, err)
	}
	if err := uc.users.SetPassword(ctx, user.ID, string(hash), now); err != nil {
		return "", err
	}
	return sent, nil
}

func (uc *AuthUsecase) idgenPassword() (string, error) {
	return id.GenerateAlphabetPassword(12)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
