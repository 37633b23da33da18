package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edusocial/edusocial/internal/logging"
	"github.com/edusocial/edusocial/internal/models"
)

var ErrNotCommentAuthor = errors.New("not the comment author")

const maxCommentLength = 2000

// CommentService manages comments under posts. Reading and writing comments
// both go through the parent post's read gates.
type CommentService struct {
	db       DB
	posts    PostGetter
	notifier Notifier
}

func NewCommentService(db DB, posts PostGetter, notifier Notifier) *CommentService {
	return &CommentService{db: db, posts: posts, notifier: notifier}
}

func (s *CommentService) Create(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxCommentLength {
		return nil, ErrContentTooLong
	}

	post, err := s.posts.GetPost(ctx, authorID, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO comments (post_id, author_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, post_id, author_id, content, likes_count, created_at`,
		postID, authorID, content,
	).Scan(&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Content, &comment.LikesCount, &comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.bumpComments(ctx, postID, 1)

	if s.notifier != nil && post.AuthorID != authorID {
		related := models.RelatedPost
		s.notifier.Dispatch(models.NotificationParams{
			RecipientID: post.AuthorID,
			ActorID:     authorID,
			Type:        models.NotificationPostComment,
			RelatedID:   &postID,
			RelatedKind: &related,
			Message:     "commented on your post.",
		})
	}
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, viewerID, postID uuid.UUID, page, limit int) ([]models.CommentWithUser, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	if _, err := s.posts.GetPost(ctx, viewerID, postID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.post_id, c.author_id, c.content, c.likes_count, c.created_at,
		        u.id, u.username, u.full_name
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = $1
		 ORDER BY c.created_at
		 LIMIT $2 OFFSET $3`,
		postID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []models.CommentWithUser{}
	for rows.Next() {
		var c models.CommentWithUser
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.LikesCount, &c.CreatedAt,
			&c.Author.ID, &c.Author.Username, &c.Author.FullName,
		); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Delete removes a comment. The comment author or the parent post's author
// may delete.
func (s *CommentService) Delete(ctx context.Context, callerID, commentID uuid.UUID) error {
	comment := &models.Comment{}
	var postAuthorID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT c.id, c.post_id, c.author_id, p.author_id
		 FROM comments c
		 JOIN posts p ON p.id = c.post_id
		 WHERE c.id = $1`,
		commentID,
	).Scan(&comment.ID, &comment.PostID, &comment.AuthorID, &postAuthorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("getting comment: %w", err)
	}

	if callerID != comment.AuthorID && callerID != postAuthorID {
		return ErrNotCommentAuthor
	}

	result, err := s.db.Exec(ctx, "DELETE FROM comments WHERE id = $1", commentID)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCommentNotFound
	}

	s.bumpComments(ctx, comment.PostID, -1)
	return nil
}

func (s *CommentService) bumpComments(ctx context.Context, postID uuid.UUID, delta int) {
	_, err := s.db.Exec(ctx,
		"UPDATE posts SET comments_count = comments_count + $1 WHERE id = $2",
		delta, postID,
	)
	if err != nil {
		logging.Error("Failed to update comments counter", map[string]interface{}{
			"error":   err.Error(),
			"post_id": postID.String(),
		})
	}
}
