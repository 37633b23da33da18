package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
	"github.com/edusocial/edusocial/internal/services"
)

type PostHandler struct {
	postService     services.PostServiceInterface
	reactionService services.ReactionServiceInterface
}

func NewPostHandler(postService services.PostServiceInterface, reactionService services.ReactionServiceInterface) *PostHandler {
	return &PostHandler{
		postService:     postService,
		reactionService: reactionService,
	}
}

type CreatePostRequest struct {
	TargetID   string `json:"target_id"`
	TargetKind string `json:"target_kind"`
	Visibility string `json:"visibility"`
	Content    string `json:"content"`
}

type LikeResponse struct {
	Liked bool `json:"liked"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid target ID")
		return
	}

	kind := models.TargetKind(strings.ToUpper(req.TargetKind))
	switch kind {
	case models.TargetUser, models.TargetGroup, models.TargetRoom, models.TargetInstitution, models.TargetDepartment:
	default:
		writeError(w, http.StatusBadRequest, "Invalid target kind")
		return
	}

	visibility := models.PostVisibility(strings.ToUpper(req.Visibility))
	if visibility == "" {
		visibility = models.VisibilityInternal
	}
	switch visibility {
	case models.VisibilityPublic, models.VisibilityInternal, models.VisibilityConnections, models.VisibilityOnlyMe:
	default:
		writeError(w, http.StatusBadRequest, "Invalid visibility")
		return
	}

	post, err := h.postService.Create(r.Context(), user.ID, models.CreatePostParams{
		TargetID:   targetID,
		TargetKind: kind,
		Visibility: visibility,
		Content:    req.Content,
	})
	if errors.Is(err, services.ErrEmptyContent) {
		writeError(w, http.StatusBadRequest, "Content cannot be empty")
		return
	}
	if errors.Is(err, services.ErrContentTooLong) {
		writeError(w, http.StatusBadRequest, "Content is too long")
		return
	}
	if errors.Is(err, services.ErrInvalidVisibility) {
		writeError(w, http.StatusBadRequest, "Visibility not allowed for this target")
		return
	}
	if errors.Is(err, services.ErrCannotPostHere) || errors.Is(err, services.ErrPostingDisabled) {
		writeError(w, http.StatusForbidden, "You cannot post to this target")
		return
	}
	if errors.Is(err, services.ErrGroupNotFound) || errors.Is(err, services.ErrRoomNotFound) ||
		errors.Is(err, services.ErrNotGroupMember) || errors.Is(err, services.ErrNotRoomMember) {
		writeError(w, http.StatusNotFound, "Target not found")
		return
	}
	if err != nil {
		log.Printf("Error creating post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := h.postService.GetPost(r.Context(), user.ID, postID)
	if errors.Is(err, services.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if errors.Is(err, services.ErrPrivatePost) {
		writeError(w, http.StatusForbidden, "This post is private")
		return
	}
	if err != nil {
		log.Printf("Error getting post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.authorAction(w, r, func(callerID, postID uuid.UUID) error {
		return h.postService.Delete(r.Context(), callerID, postID)
	}, "Post deleted")
}

type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

func (h *PostHandler) SetArchived(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.authorAction(w, r, func(callerID, postID uuid.UUID) error {
		return h.postService.SetArchived(r.Context(), callerID, postID, req.Archived)
	}, "Post updated")
}

type PinRequest struct {
	Pinned bool `json:"pinned"`
}

func (h *PostHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	var req PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.authorAction(w, r, func(callerID, postID uuid.UUID) error {
		return h.postService.SetPinned(r.Context(), callerID, postID, req.Pinned)
	}, "Post updated")
}

func (h *PostHandler) authorAction(w http.ResponseWriter, r *http.Request, fn func(callerID, postID uuid.UUID) error, message string) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	err = fn(user.ID, postID)
	if errors.Is(err, services.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if errors.Is(err, services.ErrNotPostAuthor) {
		writeError(w, http.StatusForbidden, "Only the author can do this")
		return
	}
	if err != nil {
		log.Printf("Error updating post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	liked, err := h.reactionService.Toggle(r.Context(), user.ID, postID, models.ReactionTargetPost)
	if errors.Is(err, services.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if errors.Is(err, services.ErrPrivatePost) {
		writeError(w, http.StatusForbidden, "This post is private")
		return
	}
	if err != nil {
		log.Printf("Error toggling like: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, LikeResponse{Liked: liked})
}

func (h *PostHandler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	commentID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	liked, err := h.reactionService.Toggle(r.Context(), user.ID, commentID, models.ReactionTargetComment)
	if errors.Is(err, services.ErrCommentNotFound) || errors.Is(err, services.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "Comment not found")
		return
	}
	if errors.Is(err, services.ErrPrivatePost) {
		writeError(w, http.StatusForbidden, "This post is private")
		return
	}
	if err != nil {
		log.Printf("Error toggling comment like: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, LikeResponse{Liked: liked})
}
