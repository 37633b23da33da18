package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/edusocial/edusocial/internal/models"
	"github.com/edusocial/edusocial/internal/services"
)

type CommentHandler struct {
	commentService services.CommentServiceInterface
}

func NewCommentHandler(commentService services.CommentServiceInterface) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CommentListResponse struct {
	Comments []models.CommentWithUser `json:"comments"`
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), user.ID, postID, req.Content)
	if errors.Is(err, services.ErrEmptyContent) {
		writeError(w, http.StatusBadRequest, "Content cannot be empty")
		return
	}
	if errors.Is(err, services.ErrContentTooLong) {
		writeError(w, http.StatusBadRequest, "Content is too long")
		return
	}
	if errors.Is(err, services.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if errors.Is(err, services.ErrPrivatePost) {
		writeError(w, http.StatusForbidden, "This post is private")
		return
	}
	if err != nil {
		log.Printf("Error creating comment: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
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

	page, limit := parsePagination(r)

	comments, err := h.commentService.List(r.Context(), user.ID, postID, page, limit)
	if errors.Is(err, services.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if errors.Is(err, services.ErrPrivatePost) {
		writeError(w, http.StatusForbidden, "This post is private")
		return
	}
	if err != nil {
		log.Printf("Error listing comments: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if comments == nil {
		comments = []models.CommentWithUser{}
	}
	writeJSON(w, http.StatusOK, CommentListResponse{Comments: comments})
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	err = h.commentService.Delete(r.Context(), user.ID, commentID)
	if errors.Is(err, services.ErrCommentNotFound) {
		writeError(w, http.StatusNotFound, "Comment not found")
		return
	}
	if errors.Is(err, services.ErrNotCommentAuthor) {
		writeError(w, http.StatusForbidden, "You cannot delete this comment")
		return
	}
	if err != nil {
		log.Printf("Error deleting comment: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted"})
}
