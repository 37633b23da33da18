package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/logging"
	"github.com/edusocial/edusocial/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationListParams struct {
	Limit      int
	Before     *time.Time
	UnreadOnly bool
}

// NotificationService records in-app notifications and mirrors them onto
// the event broker when one is configured. Dispatch detaches from the
// caller's request: the write happens on a goroutine with its own timeout,
// and failures are logged rather than surfaced, so a notification can never
// fail the action that caused it.
type NotificationService struct {
	db       DB
	events   EventPublisher
	async    func(fn func())
	asyncCtx context.Context
}

func NewNotificationService(db DB, events EventPublisher) *NotificationService {
	return &NotificationService{
		db:     db,
		events: events,
		async: func(fn func()) {
			go fn()
		},
		asyncCtx: context.Background(),
	}
}

// SetAsync replaces the goroutine scheduler, letting tests run dispatches
// synchronously.
func (s *NotificationService) SetAsync(fn func(fn func())) {
	s.async = fn
}

func (s *NotificationService) SetAsyncContext(ctx context.Context) {
	if ctx == nil {
		s.asyncCtx = context.Background()
		return
	}
	s.asyncCtx = ctx
}

// Dispatch records a notification for the recipient. The insert is guarded
// against blocked pairs so a blocked user can never reach the other through
// notification side channels.
func (s *NotificationService) Dispatch(params models.NotificationParams) {
	if s.async == nil {
		return
	}
	s.async(func() {
		baseCtx := s.asyncCtx
		if baseCtx == nil {
			baseCtx = context.Background()
		}
		ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
		defer cancel()
		s.deliver(ctx, params)
	})
}

func (s *NotificationService) deliver(ctx context.Context, params models.NotificationParams) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx,
		`INSERT INTO notifications (recipient_id, actor_id, type, related_id, related_kind, message)
		 SELECT $1, $2, $3, $4, $5, $6
		 WHERE NOT EXISTS (
			SELECT 1 FROM relationships
			WHERE ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
			  AND status = 'BLOCKED'
		 )
		 RETURNING id`,
		params.RecipientID, params.ActorID, params.Type, params.RelatedID, params.RelatedKind, params.Message,
	).Scan(&id)
	if err != nil {
		// No row also lands here when the pair is blocked; both cases are
		// silent for the actor.
		logging.Debug("Notification not recorded", map[string]interface{}{
			"error":     err.Error(),
			"type":      string(params.Type),
			"recipient": params.RecipientID.String(),
		})
		return
	}

	if s.events != nil {
		s.events.Publish(subjectFor(params.Type), models.Notification{
			ID:          id,
			RecipientID: params.RecipientID,
			ActorID:     params.ActorID,
			Type:        params.Type,
			RelatedID:   params.RelatedID,
			RelatedKind: params.RelatedKind,
			Message:     params.Message,
			CreatedAt:   time.Now().UTC(),
		})
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, params NotificationListParams) ([]models.Notification, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	conditions := []string{"recipient_id = $1"}
	args := []any{userID}
	idx := 2

	if params.Before != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", idx))
		args = append(args, *params.Before)
		idx++
	}
	if params.UnreadOnly {
		conditions = append(conditions, "read_at IS NULL")
	}

	query := fmt.Sprintf(
		`SELECT id, recipient_id, actor_id, type, related_id, related_kind, message, read_at, created_at
		 FROM notifications
		 WHERE %s
		 ORDER BY created_at DESC
		 LIMIT $%d`,
		strings.Join(conditions, " AND "),
		idx,
	)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.ActorID, &n.Type, &n.RelatedID, &n.RelatedKind,
			&n.Message, &n.ReadAt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		"UPDATE notifications SET read_at = NOW() WHERE id = $1 AND recipient_id = $2 AND read_at IS NULL",
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"UPDATE notifications SET read_at = NOW() WHERE recipient_id = $1 AND read_at IS NULL",
		userID,
	)
	if err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read_at IS NULL",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) CleanupOld(ctx context.Context) error {
	_, err := s.db.Exec(ctx, "DELETE FROM notifications WHERE created_at < NOW() - INTERVAL '1 year'")
	if err != nil {
		return fmt.Errorf("cleanup notifications: %w", err)
	}
	return nil
}

func subjectFor(t models.NotificationType) string {
	return "notification." + strings.ToLower(string(t))
}
