package models

import (
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	RoomActive   RoomStatus = "ACTIVE"
	RoomArchived RoomStatus = "ARCHIVED"
)

// Room is a classroom. Unlike groups, rooms have no privacy flag: every
// room is membership-gated for reads regardless of post visibility.
type Room struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	Status    RoomStatus `json:"status"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// RoomMembership has no status column: a row's existence is membership.
type RoomMembership struct {
	ID        uuid.UUID    `json:"id"`
	RoomID    uuid.UUID    `json:"room_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Role      ResourceRole `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

type RoomMemberWithUser struct {
	RoomMembership
	User UserSummary `json:"user"`
}
