package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"twiller-backend/internal/handler"
	"twiller-backend/pkg/middleware"
	"twiller-backend/pkg/response"
)

func SetupRoutes(r chi.Router, h *handler.Handler, rdb *redis.Client) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(rdb, 300, time.Minute, time.Minute, "global_twiller"))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, http.StatusOK, "ok")
	})

	// ---------------- Accounts ----------------
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/verify-login-otp", h.HandleVerifyLoginOTP)
	r.Get("/loggedinuser", h.HandleLoggedInUser)
	r.Get("/login-history", h.HandleLoginHistory)
	r.Post("/forgot-password", h.HandleForgotPassword)
	r.Patch("/userupdate/{email}", h.HandleUserUpdate)

	// ---------------- Language change ----------------
	r.Post("/request-language-change", h.HandleRequestLanguageChange)
	r.Post("/verify-language-change", h.HandleVerifyLanguageChange)

	// ---------------- Audio upload OTP ----------------
	r.Group(func(g chi.Router) {
		g.Use(middleware.RateLimiter(rdb, 5, 10*time.Minute, time.Minute, "upload_otp_http"))
		g.Post("/request-otp", h.HandleRequestOTP)
		g.Post("/verify-otp", h.HandleVerifyOTP)
	})
	r.Post("/upload-audio", h.HandleUploadAudio)

	// ---------------- Tweets ----------------
	r.Get("/post", h.HandleFeed)
	r.Post("/post", h.HandlePostTweet)
	r.Post("/like/{tweetID}", h.HandleLike)
	r.Post("/retweet/{tweetID}", h.HandleRetweet)

	// ---------------- Subscriptions ----------------
	r.Post("/create-checkout-session", h.HandleCreateCheckout)
	r.Post("/verify-payment", h.HandleVerifyPayment)
	r.Post("/subscribe", h.HandleSubscribe)
	r.Post("/unsubscribe", h.HandleUnsubscribe)

	// ---------------- Live feed ----------------
	r.Get("/ws", h.HandleWS)

	return r
}
