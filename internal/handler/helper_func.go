package handler

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"twiller-backend/pkg/response"
	"twiller-backend/pkg/xerrors"
)

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrUserNotFound),
		errors.Is(err, xerrors.ErrTweetNotFound),
		errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, xerrors.ErrInvalidCredentials),
		errors.Is(err, xerrors.ErrNoPasswordSet):
		return http.StatusUnauthorized

	case errors.Is(err, xerrors.ErrLoginTimeRestricted),
		errors.Is(err, xerrors.ErrOTPNotVerified),
		errors.Is(err, xerrors.ErrMobileRequired),
		errors.Is(err, xerrors.ErrTweetLimitReached),
		errors.Is(err, xerrors.ErrPaymentWindowClosed),
		errors.Is(err, xerrors.ErrAudioWindowClosed):
		return http.StatusForbidden

	case errors.Is(err, xerrors.ErrTooManyOTPRequests),
		errors.Is(err, xerrors.ErrResetLimitReached):
		return http.StatusTooManyRequests

	case errors.Is(err, xerrors.ErrUserAlreadyExists):
		return http.StatusConflict

	case errors.Is(err, xerrors.ErrEmailRequired),
		errors.Is(err, xerrors.ErrPasswordRequired),
		errors.Is(err, xerrors.ErrInvalidMobile),
		errors.Is(err, xerrors.ErrIdentityRequired),
		errors.Is(err, xerrors.ErrNoPendingChallenge),
		errors.Is(err, xerrors.ErrChallengeExpired),
		errors.Is(err, xerrors.ErrInvalidOTP),
		errors.Is(err, xerrors.ErrExpiredOTP),
		errors.Is(err, xerrors.ErrNoPendingLanguage),
		errors.Is(err, xerrors.ErrInvalidPlan),
		errors.Is(err, xerrors.ErrPaymentNotComplete),
		errors.Is(err, xerrors.ErrSessionIDRequired),
		errors.Is(err, xerrors.ErrAudioTooLong),
		errors.Is(err, xerrors.ErrInvalidRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a flow error onto the API's {"error": ...} shape.
// Internal errors keep their detail in the logs, not the response.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	response.Error(w, status, msg)
}
