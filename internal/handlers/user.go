package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/edusocial/edusocial/internal/models"
	"github.com/edusocial/edusocial/internal/services"
)

type UserHandler struct {
	userService         services.UserServiceInterface
	relationshipService services.RelationshipServiceInterface
}

func NewUserHandler(userService services.UserServiceInterface, relationshipService services.RelationshipServiceInterface) *UserHandler {
	return &UserHandler{
		userService:         userService,
		relationshipService: relationshipService,
	}
}

// ProfileResponse is a public view of a user. Email and other private
// fields are never exposed to other users.
type ProfileResponse struct {
	ID               string                      `json:"id"`
	Username         string                      `json:"username"`
	FullName         string                      `json:"full_name"`
	UserType         models.UserType             `json:"user_type"`
	ConnectionsCount int                         `json:"connections_count"`
	Relationship     *models.ProfileRelationship `json:"relationship"`
}

type UserSearchResponse struct {
	Users []models.UserSummary `json:"users"`
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	viewer := GetUserFromContext(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), username)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("Error getting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	relationship, err := h.relationshipService.LabelFor(r.Context(), viewer.ID, user.ID)
	// A viewer blocked by the profile owner sees the same response as a
	// missing user.
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("Error resolving relationship: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		ID:               user.ID.String(),
		Username:         user.Username,
		FullName:         user.FullName,
		UserType:         user.UserType,
		ConnectionsCount: user.ConnectionsCount,
		Relationship:     relationship,
	})
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	viewer := GetUserFromContext(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		writeJSON(w, http.StatusOK, UserSearchResponse{Users: []models.UserSummary{}})
		return
	}

	_, limit := parsePagination(r)

	users, err := h.userService.Search(r.Context(), query, limit)
	if err != nil {
		log.Printf("Error searching users: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if users == nil {
		users = []models.UserSummary{}
	}
	writeJSON(w, http.StatusOK, UserSearchResponse{Users: users})
}
