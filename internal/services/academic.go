package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edusocial/edusocial/internal/models"
)

var (
	ErrInstitutionNotFound = errors.New("institution not found")
	ErrDepartmentNotFound  = errors.New("department not found")
)

// AcademicService reads the institution/department catalog. The catalog is
// seeded by migrations and managed out of band, so there are no mutations
// here.
type AcademicService struct {
	db DB
}

func NewAcademicService(db DB) *AcademicService {
	return &AcademicService{db: db}
}

func (s *AcademicService) GetInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	inst := &models.Institution{}
	err := s.db.QueryRow(ctx,
		"SELECT id, name, code, created_at FROM institutions WHERE id = $1",
		id,
	).Scan(&inst.ID, &inst.Name, &inst.Code, &inst.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInstitutionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting institution: %w", err)
	}
	return inst, nil
}

func (s *AcademicService) ListInstitutions(ctx context.Context) ([]models.Institution, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, code, created_at FROM institutions ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("listing institutions: %w", err)
	}
	defer rows.Close()

	institutions := []models.Institution{}
	for rows.Next() {
		var inst models.Institution
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.Code, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning institution: %w", err)
		}
		institutions = append(institutions, inst)
	}
	return institutions, rows.Err()
}

func (s *AcademicService) GetDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	dept := &models.Department{}
	err := s.db.QueryRow(ctx,
		"SELECT id, institution_id, name, code, created_at FROM departments WHERE id = $1",
		id,
	).Scan(&dept.ID, &dept.InstitutionID, &dept.Name, &dept.Code, &dept.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDepartmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting department: %w", err)
	}
	return dept, nil
}

func (s *AcademicService) ListDepartments(ctx context.Context, institutionID uuid.UUID) ([]models.Department, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, institution_id, name, code, created_at
		 FROM departments WHERE institution_id = $1 ORDER BY name`,
		institutionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	departments := []models.Department{}
	for rows.Next() {
		var dept models.Department
		if err := rows.Scan(&dept.ID, &dept.InstitutionID, &dept.Name, &dept.Code, &dept.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}
