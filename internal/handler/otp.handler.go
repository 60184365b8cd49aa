package handler

import (
	"encoding/json"
	"net/http"

	"twiller-backend/pkg/response"
)

// Audio-upload OTP endpoints. The upload itself lives on the tweet side.

func (h *Handler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.otp.Request(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, msg)
}

func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.otp.Verify(r.Context(), req.Email, req.code()); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "OTP verified successfully")
}
