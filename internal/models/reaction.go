package models

import (
	"time"

	"github.com/google/uuid"
)

type ReactionTarget string

const (
	ReactionTargetPost    ReactionTarget = "POST"
	ReactionTargetComment ReactionTarget = "COMMENT"
)

type Reaction struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	TargetID   uuid.UUID      `json:"target_id"`
	TargetKind ReactionTarget `json:"target_kind"`
	CreatedAt  time.Time      `json:"created_at"`
}
