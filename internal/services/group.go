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
	ErrGroupNotFound     = errors.New("group not found")
	ErrNotGroupMember    = errors.New("not a member of this group")
	ErrAlreadyMember     = errors.New("already a member")
	ErrMembershipPending = errors.New("membership request already pending")
	ErrBannedFromGroup   = errors.New("banned from this group")
	ErrInviteOnly        = errors.New("group is invite only")
	ErrOwnerCannotLeave  = errors.New("group owner cannot leave")
	ErrInsufficientRole  = errors.New("insufficient role")
)

const groupColumns = "id, name, description, privacy, allow_member_posting, members_count, created_by, created_at"

// GroupService manages groups and their memberships. The creator becomes
// the OWNER member in the same transaction that creates the group, so a
// group is never ownerless.
type GroupService struct {
	db       DB
	notifier Notifier
}

func NewGroupService(db DB, notifier Notifier) *GroupService {
	return &GroupService{db: db, notifier: notifier}
}

func (s *GroupService) Create(ctx context.Context, creatorID uuid.UUID, name, description string, privacy models.GroupPrivacy, allowMemberPosting bool) (*models.Group, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	group := &models.Group{}
	err = tx.QueryRow(ctx,
		`INSERT INTO groups (name, description, privacy, allow_member_posting, members_count, created_by)
		 VALUES ($1, $2, $3, $4, 1, $5)
		 RETURNING `+groupColumns,
		name, description, privacy, allowMemberPosting, creatorID,
	).Scan(
		&group.ID, &group.Name, &group.Description, &group.Privacy,
		&group.AllowMemberPosting, &group.MembersCount, &group.CreatedBy, &group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO group_memberships (group_id, user_id, role, status)
		 VALUES ($1, $2, 'OWNER', 'JOINED')`,
		group.ID, creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing group creation: %w", err)
	}
	return group, nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRow(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE id = $1",
		groupID,
	).Scan(
		&group.ID, &group.Name, &group.Description, &group.Privacy,
		&group.AllowMemberPosting, &group.MembersCount, &group.CreatedBy, &group.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting group: %w", err)
	}
	return group, nil
}

// Join adds the caller to a group. PUBLIC groups admit immediately, PRIVATE
// groups record a PENDING request for a moderator to approve, and CLOSED
// groups only admit through invites.
func (s *GroupService) Join(ctx context.Context, userID, groupID uuid.UUID) (*models.GroupMembership, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	existing, err := s.getMembership(ctx, groupID, userID)
	if err != nil && !errors.Is(err, ErrNotGroupMember) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.MembershipJoined:
			return nil, ErrAlreadyMember
		case models.MembershipPending:
			return nil, ErrMembershipPending
		case models.MembershipBanned:
			return nil, ErrBannedFromGroup
		}
	}

	status := models.MembershipJoined
	switch group.Privacy {
	case models.GroupPrivate:
		status = models.MembershipPending
	case models.GroupClosed:
		return nil, ErrInviteOnly
	}

	membership, err := s.insertMembership(ctx, groupID, userID, models.RoleMember, status)
	if err != nil {
		return nil, err
	}
	if status == models.MembershipJoined {
		s.bumpMembers(ctx, groupID, 1)
	}
	return membership, nil
}

// Invite adds a user directly as a JOINED member. The inviter must hold a
// role above MEMBER.
func (s *GroupService) Invite(ctx context.Context, callerID, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	caller, err := s.requireJoined(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.Outranks(models.RoleMember) {
		return nil, ErrInsufficientRole
	}

	existing, err := s.getMembership(ctx, groupID, userID)
	if err != nil && !errors.Is(err, ErrNotGroupMember) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.MembershipPending {
			// An invite resolves a pending request.
			return s.approvePending(ctx, existing)
		}
		if existing.Status == models.MembershipJoined {
			return nil, ErrAlreadyMember
		}
		return nil, ErrBannedFromGroup
	}

	membership, err := s.insertMembership(ctx, groupID, userID, models.RoleMember, models.MembershipJoined)
	if err != nil {
		return nil, err
	}
	s.bumpMembers(ctx, groupID, 1)

	if s.notifier != nil {
		kind := models.RelatedGroup
		s.notifier.Dispatch(models.NotificationParams{
			RecipientID: userID,
			ActorID:     callerID,
			Type:        models.NotificationGroupInvite,
			RelatedID:   &groupID,
			RelatedKind: &kind,
			Message:     "added you to a group.",
		})
	}
	return membership, nil
}

// Approve flips a PENDING membership to JOINED. Requires a role above
// MEMBER.
func (s *GroupService) Approve(ctx context.Context, callerID, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	caller, err := s.requireJoined(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.Outranks(models.RoleMember) {
		return nil, ErrInsufficientRole
	}

	membership, err := s.getMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if membership.Status != models.MembershipPending {
		return nil, ErrNotGroupMember
	}
	return s.approvePending(ctx, membership)
}

// Ban marks a membership BANNED. The caller must outrank the target; the
// OWNER can never be banned.
func (s *GroupService) Ban(ctx context.Context, callerID, groupID, userID uuid.UUID) error {
	caller, err := s.requireJoined(ctx, groupID, callerID)
	if err != nil {
		return err
	}

	target, err := s.getMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner || !caller.Role.Outranks(target.Role) {
		return ErrInsufficientRole
	}

	wasJoined := target.Status == models.MembershipJoined
	_, err = s.db.Exec(ctx,
		"UPDATE group_memberships SET status = 'BANNED', role = 'MEMBER' WHERE id = $1",
		target.ID,
	)
	if err != nil {
		return fmt.Errorf("banning member: %w", err)
	}
	if wasJoined {
		s.bumpMembers(ctx, groupID, -1)
	}
	return nil
}

// Leave removes the caller's membership. The owner cannot leave; ownership
// has no transfer operation, so the group would be orphaned.
func (s *GroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	membership, err := s.getMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership.Role == models.RoleOwner {
		return ErrOwnerCannotLeave
	}

	result, err := s.db.Exec(ctx, "DELETE FROM group_memberships WHERE id = $1", membership.ID)
	if err != nil {
		return fmt.Errorf("leaving group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotGroupMember
	}
	if membership.Status == models.MembershipJoined {
		s.bumpMembers(ctx, groupID, -1)
	}
	return nil
}

// ChangeRole assigns a new role to a member. OWNER cannot be granted or
// taken away, and the caller must outrank both the member's current role
// and the role being assigned.
func (s *GroupService) ChangeRole(ctx context.Context, callerID, groupID, userID uuid.UUID, newRole models.ResourceRole) error {
	if newRole == models.RoleOwner {
		return ErrInsufficientRole
	}

	caller, err := s.requireJoined(ctx, groupID, callerID)
	if err != nil {
		return err
	}

	target, err := s.getMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if target.Status != models.MembershipJoined {
		return ErrNotGroupMember
	}
	if target.Role == models.RoleOwner {
		return ErrInsufficientRole
	}
	if !caller.Role.Outranks(target.Role) || !caller.Role.Outranks(newRole) {
		return ErrInsufficientRole
	}

	_, err = s.db.Exec(ctx,
		"UPDATE group_memberships SET role = $1 WHERE id = $2",
		newRole, target.ID,
	)
	if err != nil {
		return fmt.Errorf("changing member role: %w", err)
	}
	return nil
}

func (s *GroupService) Members(ctx context.Context, groupID uuid.UUID, page, limit int) ([]models.GroupMemberWithUser, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := s.db.Query(ctx,
		`SELECT m.id, m.group_id, m.user_id, m.role, m.status, m.created_at,
		        u.id, u.username, u.full_name
		 FROM group_memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = $1 AND m.status = 'JOINED'
		 ORDER BY m.created_at
		 LIMIT $2 OFFSET $3`,
		groupID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing group members: %w", err)
	}
	defer rows.Close()

	members := []models.GroupMemberWithUser{}
	for rows.Next() {
		var m models.GroupMemberWithUser
		if err := rows.Scan(
			&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Status, &m.CreatedAt,
			&m.User.ID, &m.User.Username, &m.User.FullName,
		); err != nil {
			return nil, fmt.Errorf("scanning group member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *GroupService) IsJoinedMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var joined bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM group_memberships
			WHERE group_id = $1 AND user_id = $2 AND status = 'JOINED'
		)`,
		groupID, userID,
	).Scan(&joined)
	if err != nil {
		return false, fmt.Errorf("checking group membership: %w", err)
	}
	return joined, nil
}

func (s *GroupService) JoinedGroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		"SELECT group_id FROM group_memberships WHERE user_id = $1 AND status = 'JOINED'",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing joined groups: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Membership returns the caller's membership row in any status.
func (s *GroupService) Membership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	return s.getMembership(ctx, groupID, userID)
}

func (s *GroupService) getMembership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	m := &models.GroupMembership{}
	err := s.db.QueryRow(ctx,
		`SELECT id, group_id, user_id, role, status, created_at
		 FROM group_memberships WHERE group_id = $1 AND user_id = $2`,
		groupID, userID,
	).Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Status, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotGroupMember
	}
	if err != nil {
		return nil, fmt.Errorf("getting membership: %w", err)
	}
	return m, nil
}

func (s *GroupService) requireJoined(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	m, err := s.getMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MembershipJoined {
		return nil, ErrNotGroupMember
	}
	return m, nil
}

func (s *GroupService) insertMembership(ctx context.Context, groupID, userID uuid.UUID, role models.ResourceRole, status models.MembershipStatus) (*models.GroupMembership, error) {
	m := &models.GroupMembership{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO group_memberships (group_id, user_id, role, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, group_id, user_id, role, status, created_at`,
		groupID, userID, role, status,
	).Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating membership: %w", err)
	}
	return m, nil
}

func (s *GroupService) approvePending(ctx context.Context, m *models.GroupMembership) (*models.GroupMembership, error) {
	_, err := s.db.Exec(ctx,
		"UPDATE group_memberships SET status = 'JOINED' WHERE id = $1",
		m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("approving membership: %w", err)
	}
	s.bumpMembers(ctx, m.GroupID, 1)
	m.Status = models.MembershipJoined
	return m, nil
}

// bumpMembers adjusts the denormalized members counter; failures are logged
// because the memberships table remains the source of truth.
func (s *GroupService) bumpMembers(ctx context.Context, groupID uuid.UUID, delta int) {
	_, err := s.db.Exec(ctx,
		"UPDATE groups SET members_count = members_count + $1 WHERE id = $2",
		delta, groupID,
	)
	if err != nil {
		logging.Error("Failed to update group members counter", map[string]interface{}{
			"error":    err.Error(),
			"group_id": groupID.String(),
		})
	}
}
