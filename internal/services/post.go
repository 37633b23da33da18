package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edusocial/edusocial/internal/models"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrPrivatePost       = errors.New("post is private")
	ErrNotPostAuthor     = errors.New("not the post author")
	ErrCannotPostHere    = errors.New("cannot post to this target")
	ErrPostingDisabled   = errors.New("member posting is disabled")
	ErrEmptyContent      = errors.New("content is empty")
	ErrContentTooLong    = errors.New("content exceeds maximum length")
	ErrInvalidVisibility = errors.New("invalid visibility for target")
)

const maxPostLength = 5000

const postColumns = `id, author_id, target_id, target_kind, visibility, content,
	is_archived, is_pinned, likes_count, comments_count, created_at, updated_at`

// PostService creates and retrieves posts. Write gating happens here at
// creation time; read gating is delegated to the visibility rules, with a
// block between viewer and author masking the post entirely.
type PostService struct {
	db         DB
	visibility ViewGate
	blocks     BlockChecker
	groups     GroupSource
	rooms      RoomMembershipChecker
}

func NewPostService(db DB, visibility ViewGate, blocks BlockChecker, groups GroupSource, rooms RoomMembershipChecker) *PostService {
	return &PostService{
		db:         db,
		visibility: visibility,
		blocks:     blocks,
		groups:     groups,
		rooms:      rooms,
	}
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, params models.CreatePostParams) (*models.Post, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxPostLength {
		return nil, ErrContentTooLong
	}

	if err := s.checkPostTarget(ctx, authorID, params); err != nil {
		return nil, err
	}

	post := &models.Post{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO posts (author_id, target_id, target_kind, visibility, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+postColumns,
		authorID, params.TargetID, params.TargetKind, params.Visibility, content,
	).Scan(
		&post.ID, &post.AuthorID, &post.TargetID, &post.TargetKind, &post.Visibility, &post.Content,
		&post.IsArchived, &post.IsPinned, &post.LikesCount, &post.CommentsCount,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return post, nil
}

// checkPostTarget enforces who may write to each target kind. Users post to
// their own wall only; group posts require joined membership and either a
// staff role or the group's member-posting flag; room posts require
// membership; institution and department posts require affiliation.
func (s *PostService) checkPostTarget(ctx context.Context, authorID uuid.UUID, params models.CreatePostParams) error {
	switch params.TargetKind {
	case models.TargetUser:
		if params.TargetID != authorID {
			return ErrCannotPostHere
		}

	case models.TargetGroup:
		group, err := s.groups.GetGroup(ctx, params.TargetID)
		if err != nil {
			return err
		}
		joined, err := s.groups.IsJoinedMember(ctx, params.TargetID, authorID)
		if err != nil {
			return err
		}
		if !joined {
			return ErrNotGroupMember
		}
		if !group.AllowMemberPosting {
			staff, err := s.isGroupStaff(ctx, params.TargetID, authorID)
			if err != nil {
				return err
			}
			if !staff {
				return ErrPostingDisabled
			}
		}

	case models.TargetRoom:
		member, err := s.rooms.IsMember(ctx, params.TargetID, authorID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotRoomMember
		}
		if params.Visibility == models.VisibilityConnections {
			return ErrInvalidVisibility
		}

	case models.TargetInstitution:
		return s.checkAffiliation(ctx, authorID, "institution_id", params.TargetID)

	case models.TargetDepartment:
		return s.checkAffiliation(ctx, authorID, "department_id", params.TargetID)

	default:
		return ErrCannotPostHere
	}
	return nil
}

func (s *PostService) isGroupStaff(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var staff bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM group_memberships
			WHERE group_id = $1 AND user_id = $2 AND status = 'JOINED' AND role <> 'MEMBER'
		)`,
		groupID, userID,
	).Scan(&staff)
	if err != nil {
		return false, fmt.Errorf("checking group role: %w", err)
	}
	return staff, nil
}

func (s *PostService) checkAffiliation(ctx context.Context, userID uuid.UUID, column string, targetID uuid.UUID) error {
	var affiliated bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND "+column+" = $2)",
		userID, targetID,
	).Scan(&affiliated)
	if err != nil {
		return fmt.Errorf("checking affiliation: %w", err)
	}
	if !affiliated {
		return ErrCannotPostHere
	}
	return nil
}

// GetPost fetches a post through the read gates. A block between viewer and
// author, or a visibility denial, reads as not found; ONLY_ME posts of
// someone else surface a distinct private error.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error) {
	post, err := s.getByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.IsArchived && post.AuthorID != viewerID {
		return nil, ErrPostNotFound
	}

	if post.AuthorID != viewerID {
		blocked, err := s.blocks.IsBlocked(ctx, viewerID, post.AuthorID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrPostNotFound
		}
	}

	ok, err := s.visibility.CanView(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if !ok {
		if post.Visibility == models.VisibilityOnlyMe {
			return nil, ErrPrivatePost
		}
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Delete removes a post. Author only.
func (s *PostService) Delete(ctx context.Context, callerID, postID uuid.UUID) error {
	post, err := s.getByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return ErrNotPostAuthor
	}

	result, err := s.db.Exec(ctx, "DELETE FROM posts WHERE id = $1", postID)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// SetArchived hides or restores a post from feeds. Author only.
func (s *PostService) SetArchived(ctx context.Context, callerID, postID uuid.UUID, archived bool) error {
	return s.authorUpdate(ctx, callerID, postID,
		"UPDATE posts SET is_archived = $1, updated_at = NOW() WHERE id = $2", archived)
}

// SetPinned pins a post to the top of its target's timeline. Author only.
func (s *PostService) SetPinned(ctx context.Context, callerID, postID uuid.UUID, pinned bool) error {
	return s.authorUpdate(ctx, callerID, postID,
		"UPDATE posts SET is_pinned = $1, updated_at = NOW() WHERE id = $2", pinned)
}

func (s *PostService) authorUpdate(ctx context.Context, callerID, postID uuid.UUID, query string, flag bool) error {
	post, err := s.getByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return ErrNotPostAuthor
	}

	if _, err := s.db.Exec(ctx, query, flag, postID); err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	return nil
}

func (s *PostService) getByID(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	post := &models.Post{}
	err := s.db.QueryRow(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = $1",
		postID,
	).Scan(
		&post.ID, &post.AuthorID, &post.TargetID, &post.TargetKind, &post.Visibility, &post.Content,
		&post.IsArchived, &post.IsPinned, &post.LikesCount, &post.CommentsCount,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}
	return post, nil
}
