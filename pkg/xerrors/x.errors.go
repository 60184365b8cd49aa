package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrNotFound       = errors.New("not found")
)

// Registration / Login
var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("email and password are required")
	ErrInvalidMobile      = errors.New("a valid mobile number (10-15 digits) is required")
	ErrNoPasswordSet      = errors.New("this account uses Google Login or hasn't set a password yet; please use Google or reset your password")
)

// Login security gate
var (
	ErrLoginTimeRestricted = errors.New("login is restricted on mobile devices at this time")
	ErrNoPendingChallenge  = errors.New("no pending login found, please login again")
	ErrChallengeExpired    = errors.New("OTP has expired, please login again")
	ErrInvalidOTP          = errors.New("invalid OTP")
	ErrDeliveryFailure     = errors.New("failed to send verification code")
)

// Generic OTP flow (audio uploads, language change)
var (
	ErrOTPNotVerified     = errors.New("please verify OTP before uploading")
	ErrExpiredOTP         = errors.New("invalid or expired OTP")
	ErrTooManyOTPRequests = errors.New("please wait a minute before requesting another OTP")
	ErrMobileRequired     = errors.New("mobile number is required, please complete your profile first")
	ErrNoPendingLanguage  = errors.New("no pending language change found")
)

// Password reset
var (
	ErrResetLimitReached = errors.New("you can use this option only one time per day")
	ErrIdentityRequired  = errors.New("email or phone is required")
)

// Subscriptions / payments
var (
	ErrInvalidPlan         = errors.New("invalid plan selected")
	ErrPaymentWindowClosed = errors.New("payments are not allowed at this time")
	ErrPaymentNotComplete  = errors.New("payment not successful")
	ErrSessionIDRequired   = errors.New("session ID is required")
)

// Tweets
var (
	ErrTweetNotFound     = errors.New("tweet not found")
	ErrTweetLimitReached = errors.New("tweet limit reached")
	ErrAudioWindowClosed = errors.New("audio tweets are not allowed at this time")
	ErrAudioTooLong      = errors.New("audio duration exceeds 5 minutes limit")
)
