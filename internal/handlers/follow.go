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

type FollowHandler struct {
	followService   services.FollowServiceInterface
	academicService services.AcademicServiceInterface
}

func NewFollowHandler(followService services.FollowServiceInterface, academicService services.AcademicServiceInterface) *FollowHandler {
	return &FollowHandler{
		followService:   followService,
		academicService: academicService,
	}
}

type FollowRequest struct {
	TargetID string `json:"target_id"`
	Kind     string `json:"kind"`
}

type FollowListResponse struct {
	Follows []models.Follow `json:"follows"`
}

type InstitutionListResponse struct {
	Institutions []models.Institution `json:"institutions"`
}

type DepartmentListResponse struct {
	Departments []models.Department `json:"departments"`
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, kind, ok := h.parseFollowTarget(w, r)
	if !ok {
		return
	}

	// Verify the target exists before recording the follow.
	var err error
	if kind == models.FollowInstitution {
		_, err = h.academicService.GetInstitution(r.Context(), targetID)
	} else {
		_, err = h.academicService.GetDepartment(r.Context(), targetID)
	}
	if errors.Is(err, services.ErrInstitutionNotFound) || errors.Is(err, services.ErrDepartmentNotFound) {
		writeError(w, http.StatusNotFound, "Target not found")
		return
	}
	if err != nil {
		log.Printf("Error looking up follow target: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	follow, err := h.followService.Follow(r.Context(), user.ID, targetID, kind)
	if errors.Is(err, services.ErrAlreadyFollowing) {
		writeError(w, http.StatusConflict, "Already following")
		return
	}
	if err != nil {
		log.Printf("Error creating follow: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, follow)
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, kind, ok := h.parseFollowTarget(w, r)
	if !ok {
		return
	}

	err := h.followService.Unfollow(r.Context(), user.ID, targetID, kind)
	if errors.Is(err, services.ErrFollowNotFound) {
		writeError(w, http.StatusNotFound, "Follow not found")
		return
	}
	if err != nil {
		log.Printf("Error removing follow: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Unfollowed"})
}

func (h *FollowHandler) parseFollowTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, models.FollowKind, bool) {
	var req FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, "", false
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid target ID")
		return uuid.Nil, "", false
	}

	kind := models.FollowKind(strings.ToUpper(req.Kind))
	switch kind {
	case models.FollowInstitution, models.FollowDepartment:
	default:
		writeError(w, http.StatusBadRequest, "Kind must be INSTITUTION or DEPARTMENT")
		return uuid.Nil, "", false
	}

	return targetID, kind, true
}

func (h *FollowHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, limit := parsePagination(r)

	follows, err := h.followService.List(r.Context(), user.ID, page, limit)
	if err != nil {
		log.Printf("Error listing follows: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if follows == nil {
		follows = []models.Follow{}
	}
	writeJSON(w, http.StatusOK, FollowListResponse{Follows: follows})
}

func (h *FollowHandler) ListInstitutions(w http.ResponseWriter, r *http.Request) {
	institutions, err := h.academicService.ListInstitutions(r.Context())
	if err != nil {
		log.Printf("Error listing institutions: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if institutions == nil {
		institutions = []models.Institution{}
	}
	writeJSON(w, http.StatusOK, InstitutionListResponse{Institutions: institutions})
}

func (h *FollowHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	institutionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid institution ID")
		return
	}

	departments, err := h.academicService.ListDepartments(r.Context(), institutionID)
	if err != nil {
		log.Printf("Error listing departments: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if departments == nil {
		departments = []models.Department{}
	}
	writeJSON(w, http.StatusOK, DepartmentListResponse{Departments: departments})
}
