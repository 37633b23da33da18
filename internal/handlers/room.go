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

type RoomHandler struct {
	roomService services.RoomServiceInterface
}

func NewRoomHandler(roomService services.RoomServiceInterface) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type RoomMembersResponse struct {
	Members []models.RoomMemberWithUser `json:"members"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 || len(req.Name) > 200 {
		writeError(w, http.StatusBadRequest, "Room name must be between 2 and 200 characters")
		return
	}

	room, err := h.roomService.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		log.Printf("Error creating room: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	roomID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}

	room, err := h.roomService.GetRoom(r.Context(), roomID)
	if errors.Is(err, services.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		log.Printf("Error getting room: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	roomID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}

	var req MemberActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	membership, err := h.roomService.AddMember(r.Context(), user.ID, roomID, targetID)
	if errors.Is(err, services.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}
	if errors.Is(err, services.ErrRoomArchived) {
		writeError(w, http.StatusConflict, "Room is archived")
		return
	}
	if errors.Is(err, services.ErrNotRoomMember) {
		writeError(w, http.StatusForbidden, "You are not a member of this room")
		return
	}
	if errors.Is(err, services.ErrInsufficientRole) {
		writeError(w, http.StatusForbidden, "Your role does not allow this")
		return
	}
	if errors.Is(err, services.ErrAlreadyInRoom) {
		writeError(w, http.StatusConflict, "User is already in this room")
		return
	}
	if err != nil {
		log.Printf("Error adding room member: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, membership)
}

func (h *RoomHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	roomID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}

	targetID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	err = h.roomService.RemoveMember(r.Context(), user.ID, roomID, targetID)
	if errors.Is(err, services.ErrRoomNotFound) || errors.Is(err, services.ErrNotRoomMember) {
		writeError(w, http.StatusNotFound, "Room or member not found")
		return
	}
	if errors.Is(err, services.ErrOwnerIrremovable) {
		writeError(w, http.StatusBadRequest, "The owner cannot be removed")
		return
	}
	if errors.Is(err, services.ErrInsufficientRole) {
		writeError(w, http.StatusForbidden, "Your role does not allow this")
		return
	}
	if err != nil {
		log.Printf("Error removing room member: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Member removed"})
}

func (h *RoomHandler) Archive(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	roomID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}

	err = h.roomService.Archive(r.Context(), user.ID, roomID)
	if errors.Is(err, services.ErrRoomNotFound) || errors.Is(err, services.ErrNotRoomMember) {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}
	if errors.Is(err, services.ErrInsufficientRole) {
		writeError(w, http.StatusForbidden, "Your role does not allow this")
		return
	}
	if err != nil {
		log.Printf("Error archiving room: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Room archived"})
}

func (h *RoomHandler) Members(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	roomID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}

	page, limit := parsePagination(r)

	members, err := h.roomService.Members(r.Context(), roomID, page, limit)
	if errors.Is(err, services.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		log.Printf("Error listing room members: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if members == nil {
		members = []models.RoomMemberWithUser{}
	}
	writeJSON(w, http.StatusOK, RoomMembersResponse{Members: members})
}
