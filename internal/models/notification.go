package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationFriendRequest NotificationType = "FRIEND_REQUEST"
	NotificationFriendAccept  NotificationType = "FRIEND_ACCEPT"
	NotificationPostComment   NotificationType = "POST_COMMENT"
	NotificationPostLike      NotificationType = "POST_LIKE"
	NotificationGroupInvite   NotificationType = "GROUP_INVITE"
	NotificationRoomAdded     NotificationType = "ROOM_ADDED"
)

// RelatedKind names the entity a notification links to.
type RelatedKind string

const (
	RelatedUser  RelatedKind = "USER"
	RelatedPost  RelatedKind = "POST"
	RelatedGroup RelatedKind = "GROUP"
	RelatedRoom  RelatedKind = "ROOM"
)

type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	ActorID     uuid.UUID        `json:"actor_id"`
	Type        NotificationType `json:"type"`
	RelatedID   *uuid.UUID       `json:"related_id,omitempty"`
	RelatedKind *RelatedKind     `json:"related_kind,omitempty"`
	Message     string           `json:"message"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationParams describes a notification to record; dispatch is
// best effort and detached from the caller's request.
type NotificationParams struct {
	RecipientID uuid.UUID
	ActorID     uuid.UUID
	Type        NotificationType
	RelatedID   *uuid.UUID
	RelatedKind *RelatedKind
	Message     string
}
