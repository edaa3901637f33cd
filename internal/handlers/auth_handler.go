package handlers

import (
	"net/http"

	"github.com/studybuddy/studybuddy-api/internal/db"
	"github.com/studybuddy/studybuddy-api/internal/service/account"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	accounts *account.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *account.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email,max=128"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  *db.User `json:"user"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.accounts.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.accounts.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
