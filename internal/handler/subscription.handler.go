package handler

import (
	"encoding/json"
	"net/http"

	"twiller-backend/internal/domain"
	"twiller-backend/pkg/response"
)

func (h *Handler) HandleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.subscriptions.CreateCheckout(r.Context(), req.PlanName, req.Email, r.Header.Get("Origin"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"id":  session.ID,
		"url": session.URL,
	})
}

func (h *Handler) HandleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.subscriptions.VerifyPayment(r.Context(), req.SessionID, req.PlanName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Subscription activated successfully",
		"user":    user,
	})
}

func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub := domain.PushSubscription{
		Endpoint: req.Subscription.Endpoint,
		P256dh:   req.Subscription.Keys.P256dh,
		Auth:     req.Subscription.Keys.Auth,
	}
	if err := h.subscriptions.Subscribe(r.Context(), req.UserID, sub); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusCreated, "Subscribed to notifications")
}

func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.subscriptions.Unsubscribe(r.Context(), req.UserID, req.Endpoint); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Unsubscribed from notifications")
}

func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	h.hub.Serve(w, r)
}
