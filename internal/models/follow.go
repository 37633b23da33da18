package models

import (
	"time"

	"github.com/google/uuid"
)

// FollowKind limits what can be followed. Users are connected through
// relationships, never follows.
type FollowKind string

const (
	FollowInstitution FollowKind = "INSTITUTION"
	FollowDepartment  FollowKind = "DEPARTMENT"
)

type Follow struct {
	ID            uuid.UUID  `json:"id"`
	FollowerID    uuid.UUID  `json:"follower_id"`
	FollowingID   uuid.UUID  `json:"following_id"`
	FollowingKind FollowKind `json:"following_kind"`
	CreatedAt     time.Time  `json:"created_at"`
}
