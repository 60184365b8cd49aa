package router

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twiller-backend/internal/handler"
)

// The frontend hardcodes these paths; renaming any of them breaks it.
func TestRoutePaths(t *testing.T) {
	r := chi.NewRouter()
	h := handler.NewHandler(nil, nil, nil, nil, nil)
	SetupRoutes(r, h, redis.NewClient(&redis.Options{}))

	registered := map[string]bool{}
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	want := []string{
		"POST /register",
		"POST /login",
		"POST /verify-login-otp",
		"GET /loggedinuser",
		"GET /login-history",
		"POST /forgot-password",
		"PATCH /userupdate/{email}",
		"POST /request-language-change",
		"POST /verify-language-change",
		"POST /request-otp",
		"POST /verify-otp",
		"POST /upload-audio",
		"GET /post",
		"POST /post",
		"POST /like/{tweetID}",
		"POST /retweet/{tweetID}",
		"POST /create-checkout-session",
		"POST /verify-payment",
		"POST /subscribe",
		"POST /unsubscribe",
		"GET /ws",
		"GET /health",
	}
	for _, route := range want {
		assert.True(t, registered[route], "missing route %s", route)
	}
}
