package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edusocial/edusocial/internal/models"
)

var (
	ErrAlreadyFollowing = errors.New("already following")
	ErrFollowNotFound   = errors.New("follow not found")
)

// FollowService manages subscriptions to institutions and departments.
// Users connect through relationships, so there is no user-to-user follow.
type FollowService struct {
	db DB
}

func NewFollowService(db DB) *FollowService {
	return &FollowService{db: db}
}

func (s *FollowService) Follow(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (*models.Follow, error) {
	follow := &models.Follow{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO follows (follower_id, following_id, following_kind)
		 VALUES ($1, $2, $3)
		 RETURNING id, follower_id, following_id, following_kind, created_at`,
		userID, targetID, kind,
	).Scan(&follow.ID, &follow.FollowerID, &follow.FollowingID, &follow.FollowingKind, &follow.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyFollowing
		}
		return nil, fmt.Errorf("creating follow: %w", err)
	}
	return follow, nil
}

func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) error {
	result, err := s.db.Exec(ctx,
		"DELETE FROM follows WHERE follower_id = $1 AND following_id = $2 AND following_kind = $3",
		userID, targetID, kind,
	)
	if err != nil {
		return fmt.Errorf("deleting follow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrFollowNotFound
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (bool, error) {
	var following bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM follows
			WHERE follower_id = $1 AND following_id = $2 AND following_kind = $3
		)`,
		userID, targetID, kind,
	).Scan(&following)
	if err != nil {
		return false, fmt.Errorf("checking follow: %w", err)
	}
	return following, nil
}

func (s *FollowService) FollowedIDs(ctx context.Context, userID uuid.UUID, kind models.FollowKind) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		"SELECT following_id FROM follows WHERE follower_id = $1 AND following_kind = $2",
		userID, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("listing follows: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning follow id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *FollowService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Follow, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := s.db.Query(ctx,
		`SELECT id, follower_id, following_id, following_kind, created_at
		 FROM follows WHERE follower_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing follows: %w", err)
	}
	defer rows.Close()

	follows := []models.Follow{}
	for rows.Next() {
		var f models.Follow
		if err := rows.Scan(&f.ID, &f.FollowerID, &f.FollowingID, &f.FollowingKind, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning follow: %w", err)
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}
