package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edusocial/edusocial/internal/models"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotRoomMember    = errors.New("not a member of this room")
	ErrAlreadyInRoom    = errors.New("already a room member")
	ErrRoomArchived     = errors.New("room is archived")
	ErrOwnerIrremovable = errors.New("room owner cannot be removed")
)

const roomColumns = "id, name, code, status, created_by, created_at"

// roomCodeAlphabet avoids ambiguous characters for codes read out loud.
const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// RoomService manages classrooms. Rooms are always membership-gated; there
// is no public room, and members are added by staff rather than joining.
type RoomService struct {
	db       DB
	notifier Notifier
}

func NewRoomService(db DB, notifier Notifier) *RoomService {
	return &RoomService{db: db, notifier: notifier}
}

func (s *RoomService) Create(ctx context.Context, creatorID uuid.UUID, name string) (*models.Room, error) {
	code, err := generateRoomCode(8)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	room := &models.Room{}
	err = tx.QueryRow(ctx,
		`INSERT INTO rooms (name, code, status, created_by)
		 VALUES ($1, $2, 'ACTIVE', $3)
		 RETURNING `+roomColumns,
		name, code, creatorID,
	).Scan(&room.ID, &room.Name, &room.Code, &room.Status, &room.CreatedBy, &room.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO room_memberships (room_id, user_id, role) VALUES ($1, $2, 'OWNER')",
		room.ID, creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing room creation: %w", err)
	}
	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRow(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id = $1",
		roomID,
	).Scan(&room.ID, &room.Name, &room.Code, &room.Status, &room.CreatedBy, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting room: %w", err)
	}
	return room, nil
}

// AddMember enrolls a user. The caller must hold a role above MEMBER in the
// room, and archived rooms accept no new members.
func (s *RoomService) AddMember(ctx context.Context, callerID, roomID, userID uuid.UUID) (*models.RoomMembership, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == models.RoomArchived {
		return nil, ErrRoomArchived
	}

	caller, err := s.getMembership(ctx, roomID, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.Outranks(models.RoleMember) {
		return nil, ErrInsufficientRole
	}

	if _, err := s.getMembership(ctx, roomID, userID); err == nil {
		return nil, ErrAlreadyInRoom
	} else if !errors.Is(err, ErrNotRoomMember) {
		return nil, err
	}

	m := &models.RoomMembership{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO room_memberships (room_id, user_id, role)
		 VALUES ($1, $2, 'MEMBER')
		 RETURNING id, room_id, user_id, role, created_at`,
		roomID, userID,
	).Scan(&m.ID, &m.RoomID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("adding room member: %w", err)
	}

	if s.notifier != nil {
		kind := models.RelatedRoom
		s.notifier.Dispatch(models.NotificationParams{
			RecipientID: userID,
			ActorID:     callerID,
			Type:        models.NotificationRoomAdded,
			RelatedID:   &roomID,
			RelatedKind: &kind,
			Message:     "added you to a classroom.",
		})
	}
	return m, nil
}

// RemoveMember drops a member. The caller must outrank the target and the
// OWNER can never be removed. A member may always remove themselves.
func (s *RoomService) RemoveMember(ctx context.Context, callerID, roomID, userID uuid.UUID) error {
	target, err := s.getMembership(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner {
		return ErrOwnerIrremovable
	}

	if callerID != userID {
		caller, err := s.getMembership(ctx, roomID, callerID)
		if err != nil {
			return err
		}
		if !caller.Role.Outranks(target.Role) {
			return ErrInsufficientRole
		}
	}

	result, err := s.db.Exec(ctx, "DELETE FROM room_memberships WHERE id = $1", target.ID)
	if err != nil {
		return fmt.Errorf("removing room member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotRoomMember
	}
	return nil
}

// Archive freezes a room. Only roles above MODERATOR may archive.
func (s *RoomService) Archive(ctx context.Context, callerID, roomID uuid.UUID) error {
	caller, err := s.getMembership(ctx, roomID, callerID)
	if err != nil {
		return err
	}
	if !caller.Role.Outranks(models.RoleModerator) {
		return ErrInsufficientRole
	}

	result, err := s.db.Exec(ctx,
		"UPDATE rooms SET status = 'ARCHIVED' WHERE id = $1 AND status = 'ACTIVE'",
		roomID,
	)
	if err != nil {
		return fmt.Errorf("archiving room: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *RoomService) Members(ctx context.Context, roomID uuid.UUID, page, limit int) ([]models.RoomMemberWithUser, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := s.db.Query(ctx,
		`SELECT m.id, m.room_id, m.user_id, m.role, m.created_at,
		        u.id, u.username, u.full_name
		 FROM room_memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.room_id = $1
		 ORDER BY m.created_at
		 LIMIT $2 OFFSET $3`,
		roomID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing room members: %w", err)
	}
	defer rows.Close()

	members := []models.RoomMemberWithUser{}
	for rows.Next() {
		var m models.RoomMemberWithUser
		if err := rows.Scan(
			&m.ID, &m.RoomID, &m.UserID, &m.Role, &m.CreatedAt,
			&m.User.ID, &m.User.Username, &m.User.FullName,
		); err != nil {
			return nil, fmt.Errorf("scanning room member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *RoomService) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var member bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM room_memberships WHERE room_id = $1 AND user_id = $2)",
		roomID, userID,
	).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("checking room membership: %w", err)
	}
	return member, nil
}

func (s *RoomService) MemberRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		"SELECT room_id FROM room_memberships WHERE user_id = $1",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing member rooms: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning room id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *RoomService) getMembership(ctx context.Context, roomID, userID uuid.UUID) (*models.RoomMembership, error) {
	m := &models.RoomMembership{}
	err := s.db.QueryRow(ctx,
		`SELECT id, room_id, user_id, role, created_at
		 FROM room_memberships WHERE room_id = $1 AND user_id = $2`,
		roomID, userID,
	).Scan(&m.ID, &m.RoomID, &m.UserID, &m.Role, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotRoomMember
	}
	if err != nil {
		return nil, fmt.Errorf("getting room membership: %w", err)
	}
	return m, nil
}

func generateRoomCode(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating room code: %w", err)
	}
	for i, b := range bytes {
		bytes[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(bytes), nil
}
