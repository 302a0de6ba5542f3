package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/chatkit/chatauth/internal/repository"
	"github.com/chatkit/chatauth/internal/service"
	"github.com/chatkit/chatauth/internal/validation"
)

const (
	maxBodyBytes  = 1 << 20 // 1MB
	maxImageBytes = 8 << 20 // base64 of a 5MB image plus the JSON envelope
)

var (
	errBadRequestBody = errors.New("invalid request body")
	errBodyTooLarge   = errors.New("request body too large")
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// decodeJSON reads a single JSON object of at most limit bytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return validation.ErrFieldsRequired
		}
		return errBadRequestBody
	}
	return nil
}

// writeError maps service errors to status codes and client-safe messages.
// Anything unrecognized is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validation.Error

	switch {
	case errors.As(err, &vErr):
		writeMessage(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, errBadRequestBody):
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, errBodyTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body is too large")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		writeMessage(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, service.ErrEmailNotVerified):
		writeMessage(w, http.StatusForbidden, "Please verify your email before logging in.")
	case errors.Is(err, service.ErrTokenMissing):
		writeMessage(w, http.StatusBadRequest, "Invalid or missing verification token.")
	case errors.Is(err, service.ErrInvalidVerificationToken):
		writeMessage(w, http.StatusBadRequest, "Invalid or expired verification link. Please sign up again to get a new link.")
	case errors.Is(err, service.ErrEmailDelivery):
		writeMessage(w, http.StatusServiceUnavailable, "Failed to send verification email.")
	case errors.Is(err, service.ErrImageUpload):
		writeMessage(w, http.StatusServiceUnavailable, "Failed to upload profile pic.")
	case errors.Is(err, repository.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
