package handler

import (
	"twiller-backend/internal/service/otp"
	"twiller-backend/internal/usecase"
	"twiller-backend/internal/ws"
)

// Handler holds the HTTP surface for the whole backend.
type Handler struct {
	auth          *usecase.AuthUsecase
	tweets        *usecase.TweetUsecase
	subscriptions *usecase.SubscriptionUsecase
	otp           *otp.Service
	hub           *ws.Hub
}

func NewHandler(
	auth *usecase.AuthUsecase,
	tweets *usecase.TweetUsecase,
	subscriptions *usecase.SubscriptionUsecase,
	otpSvc *otp.Service,
	hub *ws.Hub,
) *Handler {
	return &Handler{
		auth:          auth,
		tweets:        tweets,
		subscriptions: subscriptions,
		otp:           otpSvc,
		hub:           hub,
	}
}
