package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
	"github.com/edusocial/edusocial/internal/services"
)

func TestFollowHandler_Follow_InvalidKind(t *testing.T) {
	handler := NewFollowHandler(&mockFollowService{
		FollowFunc: func(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (*models.Follow, error) {
			t.Fatal("Follow should not be called")
			return nil, nil
		},
	}, &mockAcademicService{})

	payload := `{"target_id":"` + uuid.New().String() + `","kind":"USER"}`
	req := httptest.NewRequest(http.MethodPost, "/api/follows", bytes.NewBufferString(payload))
	req = authedRequest(req, &models.User{ID: uuid.New()})
	rr := httptest.NewRecorder()
	handler.Follow(rr, req)
	assertErrorResponse(t, rr, http.StatusBadRequest, "Kind must be INSTITUTION or DEPARTMENT")
}

func TestFollowHandler_Follow_TargetMustExist(t *testing.T) {
	handler := NewFollowHandler(&mockFollowService{
		FollowFunc: func(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (*models.Follow, error) {
			t.Fatal("Follow should not be called when the target is missing")
			return nil, nil
		},
	}, &mockAcademicService{
		GetInstitutionFunc: func(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
			return nil, services.ErrInstitutionNotFound
		},
	})

	payload := `{"target_id":"` + uuid.New().String() + `","kind":"INSTITUTION"}`
	req := httptest.NewRequest(http.MethodPost, "/api/follows", bytes.NewBufferString(payload))
	req = authedRequest(req, &models.User{ID: uuid.New()})
	rr := httptest.NewRecorder()
	handler.Follow(rr, req)
	assertErrorResponse(t, rr, http.StatusNotFound, "Target not found")
}

func TestFollowHandler_Follow_Duplicate(t *testing.T) {
	handler := NewFollowHandler(&mockFollowService{
		FollowFunc: func(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (*models.Follow, error) {
			return nil, services.ErrAlreadyFollowing
		},
	}, &mockAcademicService{
		GetDepartmentFunc: func(ctx context.Context, id uuid.UUID) (*models.Department, error) {
			return &models.Department{ID: id}, nil
		},
	})

	payload := `{"target_id":"` + uuid.New().String() + `","kind":"DEPARTMENT"}`
	req := httptest.NewRequest(http.MethodPost, "/api/follows", bytes.NewBufferString(payload))
	req = authedRequest(req, &models.User{ID: uuid.New()})
	rr := httptest.NewRecorder()
	handler.Follow(rr, req)
	assertErrorResponse(t, rr, http.StatusConflict, "Already following")
}

func TestFollowHandler_Unfollow_NotFound(t *testing.T) {
	handler := NewFollowHandler(&mockFollowService{
		UnfollowFunc: func(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) error {
			return services.ErrFollowNotFound
		},
	}, &mockAcademicService{})

	payload := `{"target_id":"` + uuid.New().String() + `","kind":"INSTITUTION"}`
	req := httptest.NewRequest(http.MethodDelete, "/api/follows", bytes.NewBufferString(payload))
	req = authedRequest(req, &models.User{ID: uuid.New()})
	rr := httptest.NewRecorder()
	handler.Unfollow(rr, req)
	assertErrorResponse(t, rr, http.StatusNotFound, "Follow not found")
}

func TestFollowHandler_ListInstitutions(t *testing.T) {
	handler := NewFollowHandler(&mockFollowService{}, &mockAcademicService{
		ListInstitutionsFunc: func(ctx context.Context) ([]models.Institution, error) {
			return []models.Institution{{ID: uuid.New(), Name: "State University", Code: "STATE"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/institutions", nil)
	rr := httptest.NewRecorder()
	handler.ListInstitutions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("State University")) {
		t.Errorf("expected institution in response, got %s", rr.Body.String())
	}
}
