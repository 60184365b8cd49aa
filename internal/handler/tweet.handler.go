package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"twiller-backend/pkg/response"
)

const maxAudioUploadBytes = 32 << 20 // 32 MiB multipart cap

func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.tweets.Feed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tweets)
}

func (h *Handler) HandlePostTweet(w http.ResponseWriter, r *http.Request) {
	var req postTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tweet, err := h.tweets.Post(r.Context(), req.UserID, req.Content, req.AudioURL)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, tweet)
}

func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tweet, err := h.tweets.Like(r.Context(), chi.URLParam(r, "tweetID"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tweet)
}

func (h *Handler) HandleRetweet(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tweet, err := h.tweets.Retweet(r.Context(), chi.URLParam(r, "tweetID"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tweet)
}

// HandleUploadAudio accepts a multipart form with the audio file, the
// uploader's email, and the client-measured duration in seconds.
func (h *Handler) HandleUploadAudio(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Audio file is required")
		return
	}
	defer file.Close()

	seconds, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || seconds < 0 {
		response.Error(w, http.StatusBadRequest, "A valid duration is required")
		return
	}
	duration := time.Duration(seconds * float64(time.Second))

	url, err := h.tweets.UploadAudio(r.Context(), r.FormValue("email"), duration, file)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"audioUrl": url})
}
