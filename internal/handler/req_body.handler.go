package handler

// Request bodies for the JSON endpoints. Field names follow what the
// frontend sends.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyLoginOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
	OTP   string `json:"otp"`
}

func (r verifyLoginOTPRequest) code() string {
	if r.Code != "" {
		return r.Code
	}
	return r.OTP
}

type forgotPasswordRequest struct {
	Identity string `json:"identity"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type languageChangeRequest struct {
	Email    string `json:"email"`
	Language string `json:"language"`
	Code     string `json:"code"`
	OTP      string `json:"otp"`
}

func (r languageChangeRequest) code() string {
	if r.Code != "" {
		return r.Code
	}
	return r.OTP
}

type requestOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
	OTP   string `json:"otp"`
}

func (r verifyOTPRequest) code() string {
	if r.Code != "" {
		return r.Code
	}
	return r.OTP
}

type postTweetRequest struct {
	UserID   string `json:"userId"`
	Content  string `json:"post"`
	AudioURL string `json:"audio"`
}

type reactionRequest struct {
	UserID string `json:"userId"`
}

type checkoutRequest struct {
	PlanName string `json:"planName"`
	Email    string `json:"email"`
}

type verifyPaymentRequest struct {
	SessionID string `json:"sessionId"`
	PlanName  string `json:"planName"`
	Email     string `json:"email"`
}

type pushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type subscribeRequest struct {
	UserID       string `json:"userId"`
	Subscription struct {
		Endpoint string   `json:"endpoint"`
		Keys     pushKeys `json:"keys"`
	} `json:"subscription"`
}

type unsubscribeRequest struct {
	UserID   string `json:"userId"`
	Endpoint string `json:"endpoint"`
}
