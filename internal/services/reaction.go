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

var ErrCommentNotFound = errors.New("comment not found")

// PostGetter fetches a post with the viewer's read gates applied.
type PostGetter interface {
	GetPost(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error)
}

// ReactionService toggles likes on posts and comments. The same read gates
// that govern viewing a post govern liking it, so a user can never like
// content they cannot see.
type ReactionService struct {
	db       DB
	posts    PostGetter
	notifier Notifier
}

func NewReactionService(db DB, posts PostGetter, notifier Notifier) *ReactionService {
	return &ReactionService{db: db, posts: posts, notifier: notifier}
}

// Toggle flips the caller's like on a target and reports the new state.
func (s *ReactionService) Toggle(ctx context.Context, userID, targetID uuid.UUID, kind models.ReactionTarget) (liked bool, err error) {
	var authorID uuid.UUID
	switch kind {
	case models.ReactionTargetPost:
		post, err := s.posts.GetPost(ctx, userID, targetID)
		if err != nil {
			return false, err
		}
		authorID = post.AuthorID
	case models.ReactionTargetComment:
		comment, err := s.getComment(ctx, targetID)
		if err != nil {
			return false, err
		}
		// Gate through the parent post's visibility.
		if _, err := s.posts.GetPost(ctx, userID, comment.PostID); err != nil {
			return false, err
		}
		authorID = comment.AuthorID
	default:
		return false, fmt.Errorf("unsupported reaction target: %s", kind)
	}

	result, err := s.db.Exec(ctx,
		"DELETE FROM reactions WHERE user_id = $1 AND target_id = $2 AND target_kind = $3",
		userID, targetID, kind,
	)
	if err != nil {
		return false, fmt.Errorf("removing reaction: %w", err)
	}
	if result.RowsAffected() > 0 {
		s.bumpLikes(ctx, targetID, kind, -1)
		return false, nil
	}

	_, err = s.db.Exec(ctx,
		"INSERT INTO reactions (user_id, target_id, target_kind) VALUES ($1, $2, $3)",
		userID, targetID, kind,
	)
	if err != nil {
		return false, fmt.Errorf("creating reaction: %w", err)
	}
	s.bumpLikes(ctx, targetID, kind, 1)

	if s.notifier != nil && authorID != userID && kind == models.ReactionTargetPost {
		related := models.RelatedPost
		s.notifier.Dispatch(models.NotificationParams{
			RecipientID: authorID,
			ActorID:     userID,
			Type:        models.NotificationPostLike,
			RelatedID:   &targetID,
			RelatedKind: &related,
			Message:     "liked your post.",
		})
	}
	return true, nil
}

func (s *ReactionService) getComment(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(ctx,
		"SELECT id, post_id, author_id, content, likes_count, created_at FROM comments WHERE id = $1",
		commentID,
	).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.LikesCount, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment: %w", err)
	}
	return c, nil
}

// bumpLikes keeps the denormalized likes counter roughly right; the
// reactions table is authoritative.
func (s *ReactionService) bumpLikes(ctx context.Context, targetID uuid.UUID, kind models.ReactionTarget, delta int) {
	table := "posts"
	if kind == models.ReactionTargetComment {
		table = "comments"
	}
	_, err := s.db.Exec(ctx,
		"UPDATE "+table+" SET likes_count = likes_count + $1 WHERE id = $2",
		delta, targetID,
	)
	if err != nil {
		logging.Error("Failed to update likes counter", map[string]interface{}{
			"error":     err.Error(),
			"target_id": targetID.String(),
			"kind":      string(kind),
		})
	}
}
