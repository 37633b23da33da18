package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edusocial/edusocial/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

const userColumns = `id, email, password_hash, username, full_name, user_type,
	institution_id, department_id, connections_count, searchable, created_at, updated_at`

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, username, full_name, user_type, institution_id, department_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		strings.ToLower(params.Email), params.PasswordHash, params.Username,
		params.FullName, params.UserType, params.InstitutionID, params.DepartmentID,
	).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.FullName, &user.UserType,
		&user.InstitutionID, &user.DepartmentID, &user.ConnectionsCount, &user.Searchable,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", strings.ToLower(email))
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

// Search matches username or full name by prefix, restricted to users who
// opted into discovery.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserSummary{}, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, username, full_name FROM users
		 WHERE searchable = TRUE
		   AND (username ILIKE $1 || '%' OR full_name ILIKE $1 || '%')
		 ORDER BY username
		 LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	results := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

func (s *UserService) SetSearchable(ctx context.Context, userID uuid.UUID, searchable bool) error {
	result, err := s.db.Exec(ctx,
		"UPDATE users SET searchable = $1, updated_at = NOW() WHERE id = $2",
		searchable, userID,
	)
	if err != nil {
		return fmt.Errorf("updating searchable flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecomputeConnections rebuilds the cached counter from the relationships
// table. It exists to repair drift left by best-effort counter bumps.
func (s *UserService) RecomputeConnections(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`UPDATE users SET connections_count = (
			SELECT COUNT(*) FROM relationships
			WHERE (requester_id = $1 OR recipient_id = $1) AND status = 'ACCEPTED'
		 )
		 WHERE id = $1
		 RETURNING connections_count`,
		userID,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("recomputing connections: %w", err)
	}
	return count, nil
}

func (s *UserService) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.FullName, &user.UserType,
		&user.InstitutionID, &user.DepartmentID, &user.ConnectionsCount, &user.Searchable,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}
