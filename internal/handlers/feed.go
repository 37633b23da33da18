package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/edusocial/edusocial/internal/models"
	"github.com/edusocial/edusocial/internal/services"
)

type FeedHandler struct {
	feedService services.FeedServiceInterface
	userService services.UserServiceInterface
}

func NewFeedHandler(feedService services.FeedServiceInterface, userService services.UserServiceInterface) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		userService: userService,
	}
}

type FeedResponse struct {
	Posts []models.FeedPost `json:"posts"`
}

// NewsFeed returns the viewer's composed feed.
func (h *FeedHandler) NewsFeed(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, limit := parsePagination(r)

	posts, err := h.feedService.BuildFeed(r.Context(), user.ID, page, limit)
	if err != nil {
		log.Printf("Error building feed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Posts: emptyIfNil(posts)})
}

// TargetFeed returns the wall of a group, room, institution, or department.
func (h *FeedHandler) TargetFeed(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid target ID")
		return
	}

	kind := models.TargetKind(strings.ToUpper(r.PathValue("kind")))
	switch kind {
	case models.TargetGroup, models.TargetRoom, models.TargetInstitution, models.TargetDepartment:
	default:
		writeError(w, http.StatusBadRequest, "Invalid target kind")
		return
	}

	page, limit := parsePagination(r)

	posts, err := h.feedService.TargetFeed(r.Context(), user.ID, targetID, kind, page, limit)
	if errors.Is(err, services.ErrGroupNotFound) || errors.Is(err, services.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "Target not found")
		return
	}
	if errors.Is(err, services.ErrNotGroupMember) || errors.Is(err, services.ErrNotRoomMember) {
		writeError(w, http.StatusForbidden, "Membership required")
		return
	}
	if err != nil {
		log.Printf("Error building target feed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Posts: emptyIfNil(posts)})
}

// ProfileFeed returns posts on a user's wall, widened by the viewer's
// relationship to the owner.
func (h *FeedHandler) ProfileFeed(w http.ResponseWriter, r *http.Request) {
	viewer := GetUserFromContext(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	username := strings.TrimSpace(r.PathValue("username"))
	owner, err := h.userService.GetByUsername(r.Context(), username)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("Error getting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	page, limit := parsePagination(r)

	posts, err := h.feedService.ProfileFeed(r.Context(), viewer.ID, owner.ID, page, limit)
	if err != nil {
		log.Printf("Error building profile feed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Posts: emptyIfNil(posts)})
}

func emptyIfNil(posts []models.FeedPost) []models.FeedPost {
	if posts == nil {
		return []models.FeedPost{}
	}
	return posts
}
