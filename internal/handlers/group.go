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

type GroupHandler struct {
	groupService services.GroupServiceInterface
}

func NewGroupHandler(groupService services.GroupServiceInterface) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type CreateGroupRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Privacy            string `json:"privacy"`
	AllowMemberPosting *bool  `json:"allow_member_posting"`
}

type GroupResponse struct {
	Group      *models.Group           `json:"group"`
	Membership *models.GroupMembership `json:"membership,omitempty"`
}

type GroupMembersResponse struct {
	Members []models.GroupMemberWithUser `json:"members"`
}

type MemberActionRequest struct {
	UserID string `json:"user_id"`
}

type ChangeRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 || len(req.Name) > 200 {
		writeError(w, http.StatusBadRequest, "Group name must be between 2 and 200 characters")
		return
	}

	privacy := models.GroupPrivacy(strings.ToUpper(req.Privacy))
	if privacy == "" {
		privacy = models.GroupPublic
	}
	switch privacy {
	case models.GroupPublic, models.GroupPrivate, models.GroupClosed:
	default:
		writeError(w, http.StatusBadRequest, "Invalid privacy setting")
		return
	}

	allowMemberPosting := true
	if req.AllowMemberPosting != nil {
		allowMemberPosting = *req.AllowMemberPosting
	}

	group, err := h.groupService.Create(r.Context(), user.ID, req.Name, req.Description, privacy, allowMemberPosting)
	if err != nil {
		log.Printf("Error creating group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, GroupResponse{Group: group})
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	group, err := h.groupService.GetGroup(r.Context(), groupID)
	if errors.Is(err, services.ErrGroupNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		log.Printf("Error getting group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	membership, err := h.groupService.Membership(r.Context(), groupID, user.ID)
	if err != nil && !errors.Is(err, services.ErrNotGroupMember) {
		log.Printf("Error getting membership: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, GroupResponse{Group: group, Membership: membership})
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	membership, err := h.groupService.Join(r.Context(), user.ID, groupID)
	if errors.Is(err, services.ErrGroupNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if errors.Is(err, services.ErrAlreadyMember) {
		writeError(w, http.StatusConflict, "Already a member")
		return
	}
	if errors.Is(err, services.ErrMembershipPending) {
		writeError(w, http.StatusConflict, "Membership request already pending")
		return
	}
	if errors.Is(err, services.ErrBannedFromGroup) {
		writeError(w, http.StatusForbidden, "You are banned from this group")
		return
	}
	if errors.Is(err, services.ErrInviteOnly) {
		writeError(w, http.StatusForbidden, "This group is invite only")
		return
	}
	if err != nil {
		log.Printf("Error joining group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := http.StatusCreated
	if membership.Status == models.MembershipPending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, membership)
}

func (h *GroupHandler) Invite(w http.ResponseWriter, r *http.Request) {
	h.memberAction(w, r, func(callerID, groupID, targetID uuid.UUID) error {
		_, err := h.groupService.Invite(r.Context(), callerID, groupID, targetID)
		return err
	}, "Invitation sent")
}

func (h *GroupHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.memberAction(w, r, func(callerID, groupID, targetID uuid.UUID) error {
		_, err := h.groupService.Approve(r.Context(), callerID, groupID, targetID)
		return err
	}, "Membership approved")
}

func (h *GroupHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.memberAction(w, r, func(callerID, groupID, targetID uuid.UUID) error {
		return h.groupService.Ban(r.Context(), callerID, groupID, targetID)
	}, "Member banned")
}

func (h *GroupHandler) memberAction(w http.ResponseWriter, r *http.Request, fn func(callerID, groupID, targetID uuid.UUID) error, message string) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID")
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

	err = fn(user.ID, groupID, targetID)
	if errors.Is(err, services.ErrGroupNotFound) || errors.Is(err, services.ErrRelationshipNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if errors.Is(err, services.ErrNotGroupMember) {
		writeError(w, http.StatusNotFound, "Member not found")
		return
	}
	if errors.Is(err, services.ErrInsufficientRole) {
		writeError(w, http.StatusForbidden, "Your role does not allow this")
		return
	}
	if errors.Is(err, services.ErrAlreadyMember) {
		writeError(w, http.StatusConflict, "Already a member")
		return
	}
	if errors.Is(err, services.ErrBannedFromGroup) {
		writeError(w, http.StatusForbidden, "User is banned from this group")
		return
	}
	if err != nil {
		log.Printf("Error in group member action: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	err = h.groupService.Leave(r.Context(), user.ID, groupID)
	if errors.Is(err, services.ErrNotGroupMember) {
		writeError(w, http.StatusNotFound, "You are not a member of this group")
		return
	}
	if errors.Is(err, services.ErrOwnerCannotLeave) {
		writeError(w, http.StatusBadRequest, "The owner cannot leave the group")
		return
	}
	if err != nil {
		log.Printf("Error leaving group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Left the group"})
}

func (h *GroupHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	role := models.ResourceRole(strings.ToUpper(req.Role))
	switch role {
	case models.RoleAdmin, models.RoleModerator, models.RoleMember:
	default:
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	err = h.groupService.ChangeRole(r.Context(), user.ID, groupID, targetID, role)
	if errors.Is(err, services.ErrGroupNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if errors.Is(err, services.ErrNotGroupMember) {
		writeError(w, http.StatusNotFound, "Member not found")
		return
	}
	if errors.Is(err, services.ErrInsufficientRole) {
		writeError(w, http.StatusForbidden, "Your role does not allow this")
		return
	}
	if err != nil {
		log.Printf("Error changing role: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Role updated"})
}

func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	page, limit := parsePagination(r)

	members, err := h.groupService.Members(r.Context(), groupID, page, limit)
	if errors.Is(err, services.ErrGroupNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		log.Printf("Error listing group members: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if members == nil {
		members = []models.GroupMemberWithUser{}
	}
	writeJSON(w, http.StatusOK, GroupMembersResponse{Members: members})
}
