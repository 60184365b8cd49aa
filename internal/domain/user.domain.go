package domain

import "time"

// User is the durable identity record. PasswordHash and the pending
// language-change OTP never serialize; handlers can return a *User as-is.
type User struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile,omitempty"`

	PasswordHash string `json:"-"`

	Bio      string `json:"bio"`
	Location string `json:"location"`
	Website  string `json:"website"`

	JoinedDate          time.Time  `json:"joinedDate"`
	NotificationEnabled bool       `json:"notificationEnabled"`
	LastResetDate       *time.Time `json:"lastResetDate,omitempty"`

	SubscriptionPlan       string     `json:"subscriptionPlan"`
	SubscriptionStartDate  *time.Time `json:"subscriptionStartDate,omitempty"`
	SubscriptionExpiryDate *time.Time `json:"subscriptionExpiryDate,omitempty"`
	TweetCount             int        `json:"tweetCount"`

	PreferredLanguage string  `json:"preferredLanguage"`
	PendingLanguage   *string `json:"-"`
	LanguageOTPHash   *string `json:"-"`
	LanguageOTPExpiry *time.Time `json:"-"`
}
