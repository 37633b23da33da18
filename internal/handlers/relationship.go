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

type RelationshipHandler struct {
	relationshipService services.RelationshipServiceInterface
}

func NewRelationshipHandler(relationshipService services.RelationshipServiceInterface) *RelationshipHandler {
	return &RelationshipHandler{relationshipService: relationshipService}
}

type SendRequestRequest struct {
	UserID string `json:"user_id"`
}

type RelationshipListResponse struct {
	Relationships []models.RelationshipWithUser `json:"relationships"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *RelationshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.relationshipService.SendRequest(r.Context(), user.ID, targetID)
	if errors.Is(err, services.ErrCannotActOnSelf) {
		writeError(w, http.StatusBadRequest, "Cannot send a request to yourself")
		return
	}
	if errors.Is(err, services.ErrUserBlocked) {
		writeError(w, http.StatusForbidden, "Cannot send request")
		return
	}
	if errors.Is(err, services.ErrAlreadyFriends) {
		writeError(w, http.StatusConflict, "Already connected with this user")
		return
	}
	if errors.Is(err, services.ErrRequestExists) {
		writeError(w, http.StatusConflict, "Request already exists")
		return
	}
	if err != nil {
		log.Printf("Error sending connection request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *RelationshipHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	relationshipID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid relationship ID")
		return
	}

	relationship, err := h.relationshipService.AcceptRequest(r.Context(), user.ID, relationshipID)
	if errors.Is(err, services.ErrRelationshipNotFound) {
		writeError(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		log.Printf("Error accepting connection request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, relationship)
}

func (h *RelationshipHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	relationshipID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid relationship ID")
		return
	}

	err = h.relationshipService.CancelOrReject(r.Context(), user.ID, relationshipID)
	if errors.Is(err, services.ErrRelationshipNotFound) {
		writeError(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		log.Printf("Error canceling connection request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Request removed"})
}

func (h *RelationshipHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	err = h.relationshipService.Unfriend(r.Context(), user.ID, targetID)
	if errors.Is(err, services.ErrRelationshipNotFound) {
		writeError(w, http.StatusNotFound, "Connection not found")
		return
	}
	if err != nil {
		log.Printf("Error removing connection: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Connection removed"})
}

func (h *RelationshipHandler) Block(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	err = h.relationshipService.Block(r.Context(), user.ID, targetID)
	if errors.Is(err, services.ErrCannotActOnSelf) {
		writeError(w, http.StatusBadRequest, "Cannot block yourself")
		return
	}
	if err != nil {
		log.Printf("Error blocking user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "User blocked"})
}

func (h *RelationshipHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	err = h.relationshipService.Unblock(r.Context(), user.ID, targetID)
	if errors.Is(err, services.ErrRelationshipNotFound) {
		writeError(w, http.StatusNotFound, "Block not found")
		return
	}
	if errors.Is(err, services.ErrNotBlocker) {
		writeError(w, http.StatusForbidden, "Only the blocker can unblock")
		return
	}
	if err != nil {
		log.Printf("Error unblocking user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "User unblocked"})
}

func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	kind := models.RelationshipListKind(strings.ToUpper(r.URL.Query().Get("kind")))
	if kind == "" {
		kind = models.ListFriends
	}
	switch kind {
	case models.ListIncoming, models.ListSent, models.ListFriends, models.ListBlocked:
	default:
		writeError(w, http.StatusBadRequest, "Invalid list kind")
		return
	}

	page, limit := parsePagination(r)

	relationships, err := h.relationshipService.List(r.Context(), user.ID, kind, page, limit)
	if err != nil {
		log.Printf("Error listing relationships: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if relationships == nil {
		relationships = []models.RelationshipWithUser{}
	}
	writeJSON(w, http.StatusOK, RelationshipListResponse{Relationships: relationships})
}
