package models

import (
	"time"

	"github.com/google/uuid"
)

type RelationshipStatus string

const (
	RelationshipStatusPending  RelationshipStatus = "PENDING"
	RelationshipStatusAccepted RelationshipStatus = "ACCEPTED"
	RelationshipStatusBlocked  RelationshipStatus = "BLOCKED"
)

// RelationshipLabel is the viewer-relative classification returned to API
// callers, as opposed to the raw row status.
type RelationshipLabel string

const (
	LabelSelf            RelationshipLabel = "SELF"
	LabelFriends         RelationshipLabel = "FRIENDS"
	LabelRequestSent     RelationshipLabel = "REQUEST_SENT"
	LabelRequestReceived RelationshipLabel = "REQUEST_RECEIVED"
	LabelBlocked         RelationshipLabel = "BLOCKED"
	LabelNone            RelationshipLabel = "NONE"
)

// Relationship is the single row kept per unordered user pair. RequesterID
// is whoever initiated the current state, not a fixed ordering; readers must
// compare their own ID against both columns to find the other party.
type Relationship struct {
	ID          uuid.UUID          `json:"id"`
	RequesterID uuid.UUID          `json:"requester_id"`
	RecipientID uuid.UUID          `json:"recipient_id"`
	Status      RelationshipStatus `json:"status"`
	BlockedBy   *uuid.UUID         `json:"blocked_by,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// OtherParty returns the participant that is not userID.
func (r *Relationship) OtherParty(userID uuid.UUID) uuid.UUID {
	if r.RequesterID == userID {
		return r.RecipientID
	}
	return r.RequesterID
}

// Involves reports whether userID is one of the two participants.
func (r *Relationship) Involves(userID uuid.UUID) bool {
	return r.RequesterID == userID || r.RecipientID == userID
}

// RelationshipListKind selects which slice of a user's relationships to list.
type RelationshipListKind string

const (
	ListIncoming RelationshipListKind = "INCOMING"
	ListSent     RelationshipListKind = "SENT"
	ListFriends  RelationshipListKind = "FRIENDS"
	ListBlocked  RelationshipListKind = "BLOCKED"
)

// RelationshipWithUser pairs a relationship row with the counterpart's
// summary for list rendering.
type RelationshipWithUser struct {
	Relationship
	User UserSummary `json:"user"`
}

// RelationshipResult is returned by SendRequest; Status is ACCEPTED when a
// crossed request was auto-accepted instead of creating a duplicate row.
type RelationshipResult struct {
	Status         RelationshipStatus `json:"status"`
	RelationshipID uuid.UUID          `json:"relationship_id"`
}

// ProfileRelationship is the viewer-relative label plus the underlying row
// ID (when present) so profile views can drive accept/cancel actions.
type ProfileRelationship struct {
	Label          RelationshipLabel `json:"label"`
	RelationshipID *uuid.UUID        `json:"relationship_id,omitempty"`
}
