package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
)

// Notifier records an in-app notification without blocking the caller.
type Notifier interface {
	Dispatch(params models.NotificationParams)
}

// EventPublisher mirrors notification events onto an external broker.
// Publishing is best effort; implementations must not fail the caller.
type EventPublisher interface {
	Publish(subject string, payload any)
	Close()
}

// FriendChecker answers whether two users hold an accepted relationship.
type FriendChecker interface {
	IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
}

// FriendSource additionally enumerates a user's friends for feed assembly.
type FriendSource interface {
	FriendChecker
	FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// FollowSource enumerates and checks institution/department follows.
type FollowSource interface {
	FollowChecker
	FollowedIDs(ctx context.Context, userID uuid.UUID, kind models.FollowKind) ([]uuid.UUID, error)
}

// GroupSource is the group-side surface feed assembly and gating need.
type GroupSource interface {
	GroupMembershipChecker
	JoinedGroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error)
}

// RoomSource is the room-side surface feed assembly and gating need.
type RoomSource interface {
	RoomMembershipChecker
	MemberRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// GroupMembershipChecker answers whether a user is a joined (not pending,
// not banned) member of a group.
type GroupMembershipChecker interface {
	IsJoinedMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// RoomMembershipChecker answers whether a user belongs to a room.
type RoomMembershipChecker interface {
	IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
}

// BlockChecker answers whether either user has blocked the other.
type BlockChecker interface {
	IsBlocked(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
}

// ViewGate decides post visibility for a viewer.
type ViewGate interface {
	CanView(ctx context.Context, viewerID uuid.UUID, post *models.Post) (bool, error)
}

// FollowChecker answers whether a user follows an institution or department.
type FollowChecker interface {
	IsFollowing(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (bool, error)
}

// The interfaces below are the handler-facing surfaces of each service.

type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
	SetSearchable(ctx context.Context, userID uuid.UUID, searchable bool) error
}

type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
}

type RelationshipServiceInterface interface {
	SendRequest(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.RelationshipResult, error)
	AcceptRequest(ctx context.Context, callerID, relationshipID uuid.UUID) (*models.Relationship, error)
	CancelOrReject(ctx context.Context, callerID, relationshipID uuid.UUID) error
	Unfriend(ctx context.Context, callerID, targetID uuid.UUID) error
	Block(ctx context.Context, callerID, targetID uuid.UUID) error
	Unblock(ctx context.Context, callerID, targetID uuid.UUID) error
	LabelFor(ctx context.Context, viewerID, targetID uuid.UUID) (*models.ProfileRelationship, error)
	List(ctx context.Context, userID uuid.UUID, kind models.RelationshipListKind, page, limit int) ([]models.RelationshipWithUser, error)
}

type PostServiceInterface interface {
	Create(ctx context.Context, authorID uuid.UUID, params models.CreatePostParams) (*models.Post, error)
	GetPost(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error)
	Delete(ctx context.Context, callerID, postID uuid.UUID) error
	SetArchived(ctx context.Context, callerID, postID uuid.UUID, archived bool) error
	SetPinned(ctx context.Context, callerID, postID uuid.UUID, pinned bool) error
}

type FeedServiceInterface interface {
	BuildFeed(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]models.FeedPost, error)
	TargetFeed(ctx context.Context, viewerID, targetID uuid.UUID, kind models.TargetKind, page, limit int) ([]models.FeedPost, error)
	ProfileFeed(ctx context.Context, viewerID, profileID uuid.UUID, page, limit int) ([]models.FeedPost, error)
}

type CommentServiceInterface interface {
	Create(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error)
	List(ctx context.Context, viewerID, postID uuid.UUID, page, limit int) ([]models.CommentWithUser, error)
	Delete(ctx context.Context, callerID, commentID uuid.UUID) error
}

type ReactionServiceInterface interface {
	Toggle(ctx context.Context, userID, targetID uuid.UUID, kind models.ReactionTarget) (bool, error)
}

type GroupServiceInterface interface {
	Create(ctx context.Context, creatorID uuid.UUID, name, description string, privacy models.GroupPrivacy, allowMemberPosting bool) (*models.Group, error)
	GetGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error)
	Join(ctx context.Context, userID, groupID uuid.UUID) (*models.GroupMembership, error)
	Invite(ctx context.Context, callerID, groupID, userID uuid.UUID) (*models.GroupMembership, error)
	Approve(ctx context.Context, callerID, groupID, userID uuid.UUID) (*models.GroupMembership, error)
	Ban(ctx context.Context, callerID, groupID, userID uuid.UUID) error
	Leave(ctx context.Context, userID, groupID uuid.UUID) error
	ChangeRole(ctx context.Context, callerID, groupID, userID uuid.UUID, newRole models.ResourceRole) error
	Members(ctx context.Context, groupID uuid.UUID, page, limit int) ([]models.GroupMemberWithUser, error)
	Membership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMembership, error)
}

type RoomServiceInterface interface {
	Create(ctx context.Context, creatorID uuid.UUID, name string) (*models.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	AddMember(ctx context.Context, callerID, roomID, userID uuid.UUID) (*models.RoomMembership, error)
	RemoveMember(ctx context.Context, callerID, roomID, userID uuid.UUID) error
	Archive(ctx context.Context, callerID, roomID uuid.UUID) error
	Members(ctx context.Context, roomID uuid.UUID, page, limit int) ([]models.RoomMemberWithUser, error)
}

type FollowServiceInterface interface {
	Follow(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (*models.Follow, error)
	Unfollow(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) error
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Follow, error)
}

type AcademicServiceInterface interface {
	GetInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error)
	ListInstitutions(ctx context.Context) ([]models.Institution, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error)
	ListDepartments(ctx context.Context, institutionID uuid.UUID) ([]models.Department, error)
}

type NotificationServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, params NotificationListParams) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type SuggestionServiceInterface interface {
	FriendSuggestions(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.UserSummary, error)
}
