package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
)

// SuggestionService proposes people to connect with: the union of users at
// the same institution, users in the same department, and friends of
// friends. Anyone sharing a relationship row with the caller in any state
// is excluded, so a blocked or already-requested user never resurfaces.
type SuggestionService struct {
	db DB
}

func NewSuggestionService(db DB) *SuggestionService {
	return &SuggestionService{db: db}
}

func (s *SuggestionService) FriendSuggestions(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.UserSummary, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := s.db.Query(ctx,
		`WITH me AS (
			SELECT institution_id, department_id FROM users WHERE id = $1
		 ), friends AS (
			SELECT CASE WHEN requester_id = $1 THEN recipient_id ELSE requester_id END AS friend_id
			FROM relationships
			WHERE (requester_id = $1 OR recipient_id = $1) AND status = 'ACCEPTED'
		 ), candidates AS (
			SELECT u.id FROM users u, me
			WHERE u.institution_id IS NOT NULL AND u.institution_id = me.institution_id
			UNION
			SELECT u.id FROM users u, me
			WHERE u.department_id IS NOT NULL AND u.department_id = me.department_id
			UNION
			SELECT CASE WHEN r.requester_id = f.friend_id THEN r.recipient_id ELSE r.requester_id END
			FROM relationships r
			JOIN friends f ON r.requester_id = f.friend_id OR r.recipient_id = f.friend_id
			WHERE r.status = 'ACCEPTED'
		 )
		 SELECT u.id, u.username, u.full_name
		 FROM candidates c
		 JOIN users u ON u.id = c.id
		 WHERE u.id <> $1
		   AND u.searchable = TRUE
		   AND NOT EXISTS (
			SELECT 1 FROM relationships r
			WHERE (r.requester_id = $1 AND r.recipient_id = u.id)
			   OR (r.requester_id = u.id AND r.recipient_id = $1)
		   )
		 ORDER BY u.username
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName); err != nil {
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}
		suggestions = append(suggestions, u)
	}
	return suggestions, rows.Err()
}
