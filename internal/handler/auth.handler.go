package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"twiller-backend/internal/service/logingate"
	"twiller-backend/internal/usecase"
	"twiller-backend/pkg/response"
)

// writeDecision renders a gate decision. Restricted logins get 403 with the
// window in the message; challenges get 200 with otpRequired so the
// frontend switches to the code prompt.
func writeDecision(w http.ResponseWriter, d *logingate.Decision, admitted interface{}) {
	switch d.Outcome {
	case logingate.OutcomeRestricted:
		response.Error(w, http.StatusForbidden, d.Message)
	case logingate.OutcomeChallengeRequired:
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"otpRequired": true,
			"userId":      d.UserID,
			"email":       d.Email,
			"message":     d.Message,
		})
	default:
		response.JSON(w, http.StatusOK, admitted)
	}
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.auth.Register(r.Context(), req, r.UserAgent(), clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	if res.Decision != nil {
		writeDecision(w, res.Decision, res.User)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	response.JSON(w, status, res.User)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, decision, err := h.auth.Login(r.Context(), req.Email, req.Password, r.UserAgent(), clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeDecision(w, decision, user)
}

func (h *Handler) HandleVerifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyLoginOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.auth.VerifyLoginOTP(r.Context(), req.Email, req.code(), r.UserAgent(), clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *Handler) HandleLoggedInUser(w http.ResponseWriter, r *http.Request) {
	isLogin := r.URL.Query().Get("isLogin") == "true"
	user, decision, err := h.auth.LoggedInUser(r.Context(), r.URL.Query().Get("email"), isLogin, r.UserAgent(), clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if decision != nil {
		writeDecision(w, decision, user)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *Handler) HandleLoginHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.auth.LoginHistory(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, records)
}

func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity := req.Identity
	if identity == "" {
		identity = req.Email
	}
	if identity == "" {
		identity = req.Phone
	}

	msg, err := h.auth.ForgotPassword(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, msg)
}

func (h *Handler) HandleUserUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), chi.URLParam(r, "email"), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *Handler) HandleRequestLanguageChange(w http.ResponseWriter, r *http.Request) {
	var req languageChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ch, err := h.auth.RequestLanguageChange(r.Context(), req.Email, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ch)
}

func (h *Handler) HandleVerifyLanguageChange(w http.ResponseWriter, r *http.Request) {
	var req languageChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lang, err := h.auth.VerifyLanguageChange(r.Context(), req.Email, req.code())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"message":  "Language updated successfully",
		"language": lang,
	})
}
