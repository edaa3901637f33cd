package handlers

import (
	"net/http"

	"github.com/studybuddy/studybuddy-api/internal/db"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
	"github.com/studybuddy/studybuddy-api/internal/middleware"
	"github.com/studybuddy/studybuddy-api/internal/service/account"
)

// ProfileHandler exposes the authenticated user's study profile.
type ProfileHandler struct {
	accounts *account.Service
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(accounts *account.Service) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

type profileResponse struct {
	User     *db.User `json:"user"`
	Complete bool     `json:"profileComplete"`
}

type profilePayload struct {
	Subjects         []string `json:"subjects" validate:"required,min=1,dive,min=1,max=64"`
	LearningStyle    int      `json:"learningStyle" validate:"required,min=1,max=4"`
	Availability     []string `json:"availability" validate:"required,min=1,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	PerformanceLevel int      `json:"performanceLevel" validate:"required,min=1,max=5"`
}

// Get handles GET /api/v1/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, apperr.ErrUserNotFound)
		return
	}

	user, complete, err := h.accounts.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: user, Complete: complete})
}

// Update handles PUT /api/v1/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, apperr.ErrUserNotFound)
		return
	}

	var payload profilePayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), userID, account.ProfileUpdate{
		Subjects:         payload.Subjects,
		LearningStyle:    payload.LearningStyle,
		Availability:     payload.Availability,
		PerformanceLevel: payload.PerformanceLevel,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: user, Complete: user.Profile().Complete()})
}
