package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edusocial/edusocial/internal/logging"
	"github.com/edusocial/edusocial/internal/models"
)

var (
	ErrCannotActOnSelf      = errors.New("cannot perform this action on yourself")
	ErrAlreadyFriends       = errors.New("users are already friends")
	ErrRequestExists        = errors.New("friend request already sent")
	ErrUserBlocked          = errors.New("user is blocked")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrNotBlocker           = errors.New("only the blocker can unblock")
)

const relationshipColumns = "id, requester_id, recipient_id, status, blocked_by, created_at, updated_at"

// RelationshipService owns the pairwise friendship/block state machine.
// At most one row exists per unordered user pair; the row's requester is
// whoever initiated the current state, so every read resolves "the other
// party" by comparing against both columns.
type RelationshipService struct {
	db       DB
	notifier Notifier
}

func NewRelationshipService(db DB, notifier Notifier) *RelationshipService {
	return &RelationshipService{db: db, notifier: notifier}
}

// SendRequest creates a PENDING relationship from requester to recipient.
// If the recipient already has a PENDING request towards the requester, the
// crossed requests are reconciled by accepting the existing row instead of
// creating a duplicate, and the result reports ACCEPTED.
func (s *RelationshipService) SendRequest(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.RelationshipResult, error) {
	if requesterID == recipientID {
		return nil, ErrCannotActOnSelf
	}

	rel, err := s.getByPair(ctx, requesterID, recipientID)
	if err != nil && !errors.Is(err, ErrRelationshipNotFound) {
		return nil, err
	}

	if rel != nil {
		switch rel.Status {
		case models.RelationshipStatusAccepted:
			return nil, ErrAlreadyFriends
		case models.RelationshipStatusBlocked:
			return nil, ErrUserBlocked
		}

		// PENDING in the same direction is a duplicate.
		if rel.RequesterID == requesterID {
			return nil, ErrRequestExists
		}

		// Crossed requests: the other side already asked, so accept.
		if err := s.markAccepted(ctx, rel.ID); err != nil {
			return nil, err
		}
		s.bumpConnections(ctx, requesterID, recipientID, 1)
		s.notify(models.NotificationParams{
			RecipientID: rel.RequesterID,
			ActorID:     requesterID,
			Type:        models.NotificationFriendAccept,
			RelatedID:   &requesterID,
			RelatedKind: relatedUser(),
			Message:     "accepted your friend request.",
		})
		return &models.RelationshipResult{
			Status:         models.RelationshipStatusAccepted,
			RelationshipID: rel.ID,
		}, nil
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx,
		`INSERT INTO relationships (requester_id, recipient_id, status)
		 VALUES ($1, $2, 'PENDING')
		 RETURNING id`,
		requesterID, recipientID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	s.notify(models.NotificationParams{
		RecipientID: recipientID,
		ActorID:     requesterID,
		Type:        models.NotificationFriendRequest,
		RelatedID:   &requesterID,
		RelatedKind: relatedUser(),
		Message:     "sent you a friend request.",
	})

	return &models.RelationshipResult{
		Status:         models.RelationshipStatusPending,
		RelationshipID: id,
	}, nil
}

// AcceptRequest transitions PENDING to ACCEPTED. Only the recipient of the
// request may accept; anything else reads as not found.
func (s *RelationshipService) AcceptRequest(ctx context.Context, callerID, relationshipID uuid.UUID) (*models.Relationship, error) {
	rel, err := s.getByID(ctx, relationshipID)
	if err != nil {
		return nil, err
	}

	if rel.Status != models.RelationshipStatusPending || rel.RecipientID != callerID {
		return nil, ErrRelationshipNotFound
	}

	if err := s.markAccepted(ctx, rel.ID); err != nil {
		return nil, err
	}
	s.bumpConnections(ctx, rel.RequesterID, rel.RecipientID, 1)

	s.notify(models.NotificationParams{
		RecipientID: rel.RequesterID,
		ActorID:     callerID,
		Type:        models.NotificationFriendAccept,
		RelatedID:   &callerID,
		RelatedKind: relatedUser(),
		Message:     "accepted your friend request.",
	})

	rel.Status = models.RelationshipStatusAccepted
	return rel, nil
}

// CancelOrReject deletes a PENDING row. The requester cancelling and the
// recipient rejecting are the same operation; either participant may call it.
func (s *RelationshipService) CancelOrReject(ctx context.Context, callerID, relationshipID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM relationships
		 WHERE id = $1 AND status = 'PENDING'
		   AND (requester_id = $2 OR recipient_id = $2)`,
		relationshipID, callerID,
	)
	if err != nil {
		return fmt.Errorf("deleting friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRelationshipNotFound
	}
	return nil
}

// Unfriend deletes the ACCEPTED row for the pair.
func (s *RelationshipService) Unfriend(ctx context.Context, callerID, targetID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM relationships
		 WHERE status = 'ACCEPTED'
		   AND ((requester_id = $1 AND recipient_id = $2)
		     OR (requester_id = $2 AND recipient_id = $1))`,
		callerID, targetID,
	)
	if err != nil {
		return fmt.Errorf("removing friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRelationshipNotFound
	}

	s.bumpConnections(ctx, callerID, targetID, -1)
	return nil
}

// Block moves the pair to BLOCKED from any state, creating the row if none
// exists. An existing friendship is dissolved: the cached connection
// counters are decremented before the row is repurposed, because the row is
// updated in place rather than deleted.
func (s *RelationshipService) Block(ctx context.Context, callerID, targetID uuid.UUID) error {
	if callerID == targetID {
		return ErrCannotActOnSelf
	}

	rel, err := s.getByPair(ctx, callerID, targetID)
	if err != nil && !errors.Is(err, ErrRelationshipNotFound) {
		return err
	}

	if rel != nil {
		if rel.Status == models.RelationshipStatusAccepted {
			s.bumpConnections(ctx, callerID, targetID, -1)
		}
		_, err := s.db.Exec(ctx,
			`UPDATE relationships
			 SET status = 'BLOCKED', blocked_by = $2, updated_at = NOW()
			 WHERE id = $1`,
			rel.ID, callerID,
		)
		if err != nil {
			return fmt.Errorf("blocking user: %w", err)
		}
		return nil
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO relationships (requester_id, recipient_id, status, blocked_by)
		 VALUES ($1, $2, 'BLOCKED', $1)`,
		callerID, targetID,
	)
	if err != nil {
		return fmt.Errorf("creating block: %w", err)
	}
	return nil
}

// Unblock deletes a BLOCKED row, but only for the participant that imposed
// the block.
func (s *RelationshipService) Unblock(ctx context.Context, callerID, targetID uuid.UUID) error {
	rel, err := s.getByPair(ctx, callerID, targetID)
	if err != nil {
		return err
	}
	if rel.Status != models.RelationshipStatusBlocked {
		return ErrRelationshipNotFound
	}
	if rel.BlockedBy == nil || *rel.BlockedBy != callerID {
		return ErrNotBlocker
	}

	result, err := s.db.Exec(ctx, "DELETE FROM relationships WHERE id = $1", rel.ID)
	if err != nil {
		return fmt.Errorf("removing block: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRelationshipNotFound
	}
	return nil
}

// LabelFor classifies the relationship from the viewer's perspective. A
// block imposed by the target is reported as ErrUserNotFound so callers
// render the target as nonexistent instead of leaking the block.
func (s *RelationshipService) LabelFor(ctx context.Context, viewerID, targetID uuid.UUID) (*models.ProfileRelationship, error) {
	if viewerID == targetID {
		return &models.ProfileRelationship{Label: models.LabelSelf}, nil
	}

	rel, err := s.getByPair(ctx, viewerID, targetID)
	if errors.Is(err, ErrRelationshipNotFound) {
		return &models.ProfileRelationship{Label: models.LabelNone}, nil
	}
	if err != nil {
		return nil, err
	}

	switch rel.Status {
	case models.RelationshipStatusAccepted:
		return &models.ProfileRelationship{Label: models.LabelFriends, RelationshipID: &rel.ID}, nil
	case models.RelationshipStatusPending:
		if rel.RequesterID == viewerID {
			return &models.ProfileRelationship{Label: models.LabelRequestSent, RelationshipID: &rel.ID}, nil
		}
		return &models.ProfileRelationship{Label: models.LabelRequestReceived, RelationshipID: &rel.ID}, nil
	case models.RelationshipStatusBlocked:
		if rel.BlockedBy != nil && *rel.BlockedBy == viewerID {
			return &models.ProfileRelationship{Label: models.LabelBlocked, RelationshipID: &rel.ID}, nil
		}
		return nil, ErrUserNotFound
	}

	return &models.ProfileRelationship{Label: models.LabelNone}, nil
}

// IsFriend reports whether an ACCEPTED row exists for the pair.
func (s *RelationshipService) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	var isFriend bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM relationships
			WHERE ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
			  AND status = 'ACCEPTED'
		)`,
		userID, otherUserID,
	).Scan(&isFriend)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return isFriend, nil
}

// IsBlocked reports whether a BLOCKED row exists between the pair, in
// either direction.
func (s *RelationshipService) IsBlocked(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	var blocked bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM relationships
			WHERE ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
			  AND status = 'BLOCKED'
		)`,
		userID, otherUserID,
	).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("checking block: %w", err)
	}
	return blocked, nil
}

// FriendIDs returns the IDs of all accepted friends of userID.
func (s *RelationshipService) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		`SELECT CASE WHEN requester_id = $1 THEN recipient_id ELSE requester_id END
		 FROM relationships
		 WHERE (requester_id = $1 OR recipient_id = $1) AND status = 'ACCEPTED'`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friend ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning friend id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// List returns one slice of the caller's relationships (incoming or sent
// requests, friends, or the blocks they imposed) with the counterpart's
// summary joined in.
func (s *RelationshipService) List(ctx context.Context, userID uuid.UUID, kind models.RelationshipListKind, page, limit int) ([]models.RelationshipWithUser, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var query string
	switch kind {
	case models.ListIncoming:
		query = `SELECT r.id, r.requester_id, r.recipient_id, r.status, r.blocked_by, r.created_at, r.updated_at,
		                u.id, u.username, u.full_name
		         FROM relationships r
		         JOIN users u ON u.id = r.requester_id
		         WHERE r.recipient_id = $1 AND r.status = 'PENDING'
		         ORDER BY r.updated_at DESC
		         LIMIT $2 OFFSET $3`
	case models.ListSent:
		query = `SELECT r.id, r.requester_id, r.recipient_id, r.status, r.blocked_by, r.created_at, r.updated_at,
		                u.id, u.username, u.full_name
		         FROM relationships r
		         JOIN users u ON u.id = r.recipient_id
		         WHERE r.requester_id = $1 AND r.status = 'PENDING'
		         ORDER BY r.updated_at DESC
		         LIMIT $2 OFFSET $3`
	case models.ListFriends:
		query = `SELECT r.id, r.requester_id, r.recipient_id, r.status, r.blocked_by, r.created_at, r.updated_at,
		                u.id, u.username, u.full_name
		         FROM relationships r
		         JOIN users u ON u.id = CASE WHEN r.requester_id = $1 THEN r.recipient_id ELSE r.requester_id END
		         WHERE (r.requester_id = $1 OR r.recipient_id = $1) AND r.status = 'ACCEPTED'
		         ORDER BY r.updated_at DESC
		         LIMIT $2 OFFSET $3`
	case models.ListBlocked:
		query = `SELECT r.id, r.requester_id, r.recipient_id, r.status, r.blocked_by, r.created_at, r.updated_at,
		                u.id, u.username, u.full_name
		         FROM relationships r
		         JOIN users u ON u.id = CASE WHEN r.requester_id = $1 THEN r.recipient_id ELSE r.requester_id END
		         WHERE (r.requester_id = $1 OR r.recipient_id = $1)
		           AND r.status = 'BLOCKED' AND r.blocked_by = $1
		         ORDER BY r.updated_at DESC
		         LIMIT $2 OFFSET $3`
	default:
		return nil, fmt.Errorf("unknown relationship list kind: %s", kind)
	}

	rows, err := s.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	defer rows.Close()

	var results []models.RelationshipWithUser
	for rows.Next() {
		var rw models.RelationshipWithUser
		if err := rows.Scan(
			&rw.ID, &rw.RequesterID, &rw.RecipientID, &rw.Status, &rw.BlockedBy, &rw.CreatedAt, &rw.UpdatedAt,
			&rw.User.ID, &rw.User.Username, &rw.User.FullName,
		); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		results = append(results, rw)
	}
	if results == nil {
		results = []models.RelationshipWithUser{}
	}
	return results, rows.Err()
}

func (s *RelationshipService) getByID(ctx context.Context, id uuid.UUID) (*models.Relationship, error) {
	rel := &models.Relationship{}
	err := s.db.QueryRow(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE id = $1",
		id,
	).Scan(&rel.ID, &rel.RequesterID, &rel.RecipientID, &rel.Status, &rel.BlockedBy, &rel.CreatedAt, &rel.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRelationshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting relationship: %w", err)
	}
	return rel, nil
}

func (s *RelationshipService) getByPair(ctx context.Context, a, b uuid.UUID) (*models.Relationship, error) {
	rel := &models.Relationship{}
	err := s.db.QueryRow(ctx,
		`SELECT `+relationshipColumns+` FROM relationships
		 WHERE (requester_id = $1 AND recipient_id = $2)
		    OR (requester_id = $2 AND recipient_id = $1)`,
		a, b,
	).Scan(&rel.ID, &rel.RequesterID, &rel.RecipientID, &rel.Status, &rel.BlockedBy, &rel.CreatedAt, &rel.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRelationshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting relationship by pair: %w", err)
	}
	return rel, nil
}

func (s *RelationshipService) markAccepted(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`UPDATE relationships SET status = 'ACCEPTED', updated_at = NOW()
		 WHERE id = $1 AND status = 'PENDING'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRelationshipNotFound
	}
	return nil
}

// bumpConnections adjusts the denormalized connection counters on both user
// rows. The counters are a display cache, not the source of truth, so
// failures are logged and the caller's operation proceeds.
func (s *RelationshipService) bumpConnections(ctx context.Context, a, b uuid.UUID, delta int) {
	_, err := s.db.Exec(ctx,
		"UPDATE users SET connections_count = connections_count + $1 WHERE id = $2 OR id = $3",
		delta, a, b,
	)
	if err != nil {
		logging.Error("Failed to update connection counters", map[string]interface{}{
			"error": err.Error(),
			"users": []string{a.String(), b.String()},
		})
	}
}

func (s *RelationshipService) notify(params models.NotificationParams) {
	if s.notifier != nil {
		s.notifier.Dispatch(params)
	}
}

func relatedUser() *models.RelatedKind {
	k := models.RelatedUser
	return &k
}
