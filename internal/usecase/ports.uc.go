package usecase

import (
	"context"
	"time"

	"twiller-backend/internal/domain"
	"twiller-backend/internal/service/brevo"
)

// Consumer-side views of the repositories, kept narrow so flows can be
// tested against fakes.

type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIdentity(ctx context.Context, identity string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdateProfile(ctx context.Context, email string, fields map[string]interface{}) (*domain.User, error)
	SetPassword(ctx context.Context, userID, passwordHash string, resetAt time.Time) error
	SetLanguageOTP(ctx context.Context, userID, pendingLanguage, codeHash string, expiry time.Time) error
	CompleteLanguageChange(ctx context.Context, userID, language string) error
	SetSubscription(ctx context.Context, userID, plan string, start, expiry *time.Time, resetTweetCount bool) error
	IncrementTweetCount(ctx context.Context, userID string) error
}

type TweetRepo interface {
	Create(ctx context.Context, t *domain.Tweet) error
	GetByID(ctx context.Context, id string) (*domain.Tweet, error)
	ListAll(ctx context.Context) ([]*domain.Tweet, error)
	Like(ctx context.Context, tweetID, userID string) error
	Retweet(ctx context.Context, tweetID, userID string) error
}

type HistoryRepo interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.LoginHistoryRecord, error)
}

type PushRepo interface {
	Add(ctx context.Context, sub *domain.PushSubscription) error
	Remove(ctx context.Context, userID, endpoint string) error
	RemoveEndpoint(ctx context.Context, endpoint string) error
	ListNotifiable(ctx context.Context, excludeUserID string) ([]*domain.PushSubscription, error)
}

// Mailer is the slice of brevo.Mailer the usecases call directly; the gate
// and OTP service hold their own sender views.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, newPassword string) error
	SendInvoice(ctx context.Context, email string, inv brevo.InvoiceData) error
	SendLanguageOTP(ctx context.Context, email, code string, ttl time.Duration) error
	SendLanguageSMS(ctx context.Context, mobile, code string, ttl time.Duration) error
}
