package handler

import (
	"net/http"

	"github.com/chatkit/chatauth/internal/ctxkeys"
	"github.com/chatkit/chatauth/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

type updateNameRequest struct {
	FullName string `json:"fullname"`
}

func (h *ProfileHandler) UpdateProfilePic(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateProfileRequest
	err := decodeJSON(w, r, maxImageBytes, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.profileService.UpdateProfilePic(r.Context(), user.ID, req.ProfilePic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated.Public())
}

func (h *ProfileHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateNameRequest
	err := decodeJSON(w, r, maxBodyBytes, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.profileService.UpdateFullName(r.Context(), user.ID, req.FullName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated.Public())
}
