package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
	"github.com/studybuddy/studybuddy-api/internal/middleware"
	matchsvc "github.com/studybuddy/studybuddy-api/internal/service/match"
	"github.com/studybuddy/studybuddy-api/internal/utils/pagination"
)

// MatchHandler exposes discovery, listing and the match lifecycle
// operations over HTTP.
type MatchHandler struct {
	matches *matchsvc.Service
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matches *matchsvc.Service) *MatchHandler {
	return &MatchHandler{matches: matches}
}

type listResponse struct {
	Matches []matchsvc.View `json:"matches"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

type ratingPayload struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=300"`
}

type declinePayload struct {
	Reason string `json:"reason" validate:"max=300"`
}

type interactionPayload struct {
	Type    string `json:"type" validate:"required,min=1,max=32"`
	Details string `json:"details" validate:"max=1000"`
}

// Discover handles GET /api/v1/matches/discover.
func (h *MatchHandler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, apperr.ErrUserNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	forceRefresh := r.URL.Query().Get("force_refresh") == "true"

	matches, err := h.matches.Discover(r.Context(), userID, limit, forceRefresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// List handles GET /api/v1/matches.
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, apperr.ErrUserNotFound)
		return
	}

	query := r.URL.Query()
	minCompat, _ := strconv.Atoi(query.Get("min_compatibility"))
	filter := matchsvc.Filter{
		Status:           query.Get("status"),
		MinCompatibility: minCompat,
		Subjects:         splitCSV(query.Get("subjects")),
	}
	page := pagination.Parse(query.Get("page"), query.Get("limit"))

	views, total, err := h.matches.List(r.Context(), userID, filter, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Matches: views, Total: total, Page: page.Page, Limit: page.Limit})
}

// Count handles GET /api/v1/matches/count.
func (h *MatchHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, apperr.ErrUserNotFound)
		return
	}

	count, err := h.matches.Count(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// Get handles GET /api/v1/matches/{matchID}.
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.identify(w, r)
	if !ok {
		return
	}

	match, err := h.matches.Get(r.Context(), matchID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// ToggleLike handles POST /api/v1/matches/{matchID}/like.
func (h *MatchHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.identify(w, r)
	if !ok {
		return
	}

	match, err := h.matches.ToggleLike(r.Context(), matchID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// AddRating handles POST /api/v1/matches/{matchID}/rating.
func (h *MatchHandler) AddRating(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var payload ratingPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	rating, err := h.matches.AddRating(r.Context(), matchID, userID, payload.Score, payload.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

// Decline handles POST /api/v1/matches/{matchID}/decline.
func (h *MatchHandler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var payload declinePayload
	if r.ContentLength > 0 {
		if err := decodeAndValidate(r, &payload); err != nil {
			writeError(w, err)
			return
		}
	}

	match, err := h.matches.Decline(r.Context(), matchID, userID, payload.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// Block handles POST /api/v1/matches/{matchID}/block.
func (h *MatchHandler) Block(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.identify(w, r)
	if !ok {
		return
	}

	match, err := h.matches.Block(r.Context(), matchID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// Unblock handles POST /api/v1/matches/{matchID}/unblock.
func (h *MatchHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.identify(w, r)
	if !ok {
		return
	}

	match, err := h.matches.Unblock(r.Context(), matchID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// RecordInteraction handles POST /api/v1/matches/{matchID}/interactions.
func (h *MatchHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var payload interactionPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	match, err := h.matches.RecordInteraction(r.Context(), matchID, userID, payload.Type, payload.Details)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// identify extracts the authenticated user and the matchID path variable.
func (h *MatchHandler) identify(w http.ResponseWriter, r *http.Request) (userID, matchID uint64, ok bool) {
	userID, ok = middleware.UserID(r.Context())
	if !ok {
		writeError(w, apperr.ErrUserNotFound)
		return 0, 0, false
	}

	matchID, err := strconv.ParseUint(mux.Vars(r)["matchID"], 10, 64)
	if err != nil {
		writeError(w, apperr.InvalidArgumentf("matchID must be a valid integer"))
		return 0, 0, false
	}
	return userID, matchID, true
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
