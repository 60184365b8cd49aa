package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twiller-backend/internal/domain"
	"twiller-backend/pkg/xerrors"
)

func TestRequestLanguageChange(t *testing.T) {
	t.Run("rejects unsupported language", func(t *testing.T) {
		user := &domain.User{ID: "u1", Email: "alice@example.com", Mobile: "9876543210"}
		f := newAuthFixture(t, insideWindow(), fakeParser{browser: "Chrome", device: domain.DeviceDesktop}, user)

		_, err := f.uc.RequestLanguageChange(context.Background(), "alice@example.com", "klingon")
		assert.ErrorIs(t, err, xerrors.ErrInvalidRequest)
	})

	t.Run("requires mobile for sms languages", func(t *testing.T) {
		user := &domain.User{ID: "u1", Email: "alice@example.com"}
		f := newAuthFixture(t, insideWindow(), fakeParser{browser: "Chrome", device: domain.DeviceDesktop}, user)

		_, err := f.uc.RequestLanguageChange(context.Background(), "alice@example.com", "hi")
		assert.ErrorIs(t, err, xerrors.ErrMobileRequired)
	})

	t.Run("french goes by email even without mobile", func(t *testing.T) {
		user := &domain.User{ID: "u1", Email: "alice@example.com"}
		f := newAuthFixture(t, insideWindow(), fakeParser{browser: "Chrome", device: domain.DeviceDesktop}, user)

		ch, err := f.uc.RequestLanguageChange(context.Background(), "alice@example.com", "fr")
		require.NoError(t, err)
		assert.Equal(t, "email", ch.Delivery)
		assert.Equal(t, "language_email", f.mailer.last().kind)
		assert.Equal(t, "424242", f.mailer.last().code)
		require.NotNil(t, user.PendingLanguage)
		assert.Equal(t, "fr", *user.PendingLanguage)
	})

	t.Run("other languages go by sms", func(t *testing.T) {
		user := &domain.User{ID: "u1", Email: "alice@example.com", Mobile: "9876543210"}
		f := newAuthFixture(t, insideWindow(), fakeParser{browser: "Chrome", device: domain.DeviceDesktop}, user)

		ch, err := f.uc.RequestLanguageChange(context.Background(), "alice@example.com", "ta")
		require.NoError(t, err)
		assert.Equal(t, "sms", ch.Delivery)
		assert.Equal(t, "language_sms", f.mailer.last().kind)
		assert.Equal(t, "9876543210", f.mailer.last().to)
	})

	t.Run("back-to-back requests are throttled", func(t *testing.T) {
		user := &domain.User{ID: "u1", Email: "alice@example.com", Mobile: "9876543210"}
		f := newAuthFixture(t, insideWindow(), fakeParser{browser: "Chrome", device: domain.DeviceDesktop}, user)

		_, err := f.uc.RequestLanguageChange(context.Background(), "alice@example.com", "hi")
		require.NoError(t, err)

		_, err = f.uc.RequestLanguageChange(context.Background(), "alice@example.com", "hi")
		assert.ErrorIs(t, err, xerrors.ErrTooManyOTPRequests)
	})
}

func TestVerifyLanguageChange(t *testing.T) {
	setup := func(t *testing.T) (*authFixture, *domain.User) {
		user := &domain.User{ID: "u1", Email: "alice@example.com", Mobile: "9876543210", PreferredLanguage: "en"}
		f := newAuthFixture(t, insideWindow(), fakeParser{browser: "Chrome", device: domain.DeviceDesktop}, user)
		_, err := f.uc.RequestLanguageChange(context.Background(), "alice@example.com", "hi")
		require.NoError(t, err)
		return f, user
	}

	t.Run("no pending change", func(t *testing.T) {
		user := &domain.User{ID: "u1", Email: "alice@example.com"}
		f := newAuthFixture(t, insideWindow(), fakeParser{browser: "Chrome", device: domain.DeviceDesktop}, user)

		_, err := f.uc.VerifyLanguageChange(context.Background(), "alice@example.com", "424242")
		assert.ErrorIs(t, err, xerrors.ErrNoPendingLanguage)
	})

	t.Run("wrong code", func(t *testing.T) {
		f, _ := setup(t)
		_, err := f.uc.VerifyLanguageChange(context.Background(), "alice@example.com", "000000")
		assert.ErrorIs(t, err, xerrors.ErrInvalidOTP)
	})

	t.Run("expired code", func(t *testing.T) {
		f, user := setup(t)
		past := insideWindow().Add(-time.Minute)
		user.LanguageOTPExpiry = &past

		_, err := f.uc.VerifyLanguageChange(context.Background(), "alice@example.com", "424242")
		assert.ErrorIs(t, err, xerrors.ErrExpiredOTP)
	})

	t.Run("correct code applies the language", func(t *testing.T) {
		f, user := setup(t)

		lang, err := f.uc.VerifyLanguageChange(context.Background(), "alice@example.com", "424242")
		require.NoError(t, err)
		assert.Equal(t, "hi", lang)
		assert.Equal(t, "hi", user.PreferredLanguage)
		assert.Nil(t, user.PendingLanguage)
		assert.Nil(t, user.LanguageOTPHash)
	})
}
