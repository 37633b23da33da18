package models

import (
	"time"

	"github.com/google/uuid"
)

type GroupPrivacy string

const (
	GroupPublic  GroupPrivacy = "PUBLIC"
	GroupPrivate GroupPrivacy = "PRIVATE"
	GroupClosed  GroupPrivacy = "CLOSED"
)

// ResourceRole is the shared role set for groups and rooms. OWNER is the
// creator and cannot be demoted or removed.
type ResourceRole string

const (
	RoleOwner     ResourceRole = "OWNER"
	RoleAdmin     ResourceRole = "ADMIN"
	RoleModerator ResourceRole = "MODERATOR"
	RoleMember    ResourceRole = "MEMBER"
)

// roleRank orders roles for hierarchy checks; higher acts on lower.
var roleRank = map[ResourceRole]int{
	RoleOwner:     4,
	RoleAdmin:     3,
	RoleModerator: 2,
	RoleMember:    1,
}

// Outranks reports whether r is strictly above other.
func (r ResourceRole) Outranks(other ResourceRole) bool {
	return roleRank[r] > roleRank[other]
}

type MembershipStatus string

const (
	MembershipJoined  MembershipStatus = "JOINED"
	MembershipPending MembershipStatus = "PENDING"
	MembershipBanned  MembershipStatus = "BANNED"
)

type Group struct {
	ID                 uuid.UUID    `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	Privacy            GroupPrivacy `json:"privacy"`
	AllowMemberPosting bool         `json:"allow_member_posting"`
	MembersCount       int          `json:"members_count"`
	CreatedBy          uuid.UUID    `json:"created_by"`
	CreatedAt          time.Time    `json:"created_at"`
}

type GroupMembership struct {
	ID        uuid.UUID        `json:"id"`
	GroupID   uuid.UUID        `json:"group_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Role      ResourceRole     `json:"role"`
	Status    MembershipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

type GroupMemberWithUser struct {
	GroupMembership
	User UserSummary `json:"user"`
}
