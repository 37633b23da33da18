package models

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind discriminates what a post is posted onto.
type TargetKind string

const (
	TargetUser        TargetKind = "USER"
	TargetGroup       TargetKind = "GROUP"
	TargetRoom        TargetKind = "ROOM"
	TargetInstitution TargetKind = "INSTITUTION"
	TargetDepartment  TargetKind = "DEPARTMENT"

	// TargetPage exists in the schema and feed queries for data imported
	// from other systems; post creation does not accept it.
	TargetPage TargetKind = "PAGE"
)

type PostVisibility string

const (
	VisibilityPublic      PostVisibility = "PUBLIC"
	VisibilityInternal    PostVisibility = "INTERNAL"
	VisibilityConnections PostVisibility = "CONNECTIONS"
	VisibilityOnlyMe      PostVisibility = "ONLY_ME"
)

type Post struct {
	ID            uuid.UUID      `json:"id"`
	AuthorID      uuid.UUID      `json:"author_id"`
	TargetID      uuid.UUID      `json:"target_id"`
	TargetKind    TargetKind     `json:"target_kind"`
	Visibility    PostVisibility `json:"visibility"`
	Content       string         `json:"content"`
	IsArchived    bool           `json:"is_archived"`
	IsPinned      bool           `json:"is_pinned"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type CreatePostParams struct {
	TargetID   uuid.UUID
	TargetKind TargetKind
	Visibility PostVisibility
	Content    string
}

// FeedPost is a post annotated with viewer-specific fields.
type FeedPost struct {
	Post
	Author      UserSummary `json:"author"`
	IsLikedByMe bool        `json:"is_liked_by_me"`
}
