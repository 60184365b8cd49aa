package domain

import "time"

// LoginChallenge is the ephemeral login OTP state, keyed by user id in the
// challenge store. The store TTL evicts the key; ExpiresAt is still checked
// at verification.
type LoginChallenge struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OneTimePasscode gates the audio-upload flow: requested by email, marked
// verified on a match, consumed by the upload itself.
type OneTimePasscode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

type PushSubscription struct {
	UserID   string `json:"userId"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}
