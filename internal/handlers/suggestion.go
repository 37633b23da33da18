package handlers

import (
	"log"
	"net/http"

	"github.com/edusocial/edusocial/internal/models"
	"github.com/edusocial/edusocial/internal/services"
)

type SuggestionHandler struct {
	suggestionService services.SuggestionServiceInterface
}

func NewSuggestionHandler(suggestionService services.SuggestionServiceInterface) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

type SuggestionListResponse struct {
	Suggestions []models.UserSummary `json:"suggestions"`
}

func (h *SuggestionHandler) Friends(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, limit := parsePagination(r)

	suggestions, err := h.suggestionService.FriendSuggestions(r.Context(), user.ID, page, limit)
	if err != nil {
		log.Printf("Error getting suggestions: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if suggestions == nil {
		suggestions = []models.UserSummary{}
	}
	writeJSON(w, http.StatusOK, SuggestionListResponse{Suggestions: suggestions})
}
