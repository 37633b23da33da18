package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
)

func TestCommentService_Create_EmptyContent(t *testing.T) {
	svc := &CommentService{}
	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), "  ")
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestCommentService_Create_InvisiblePost(t *testing.T) {
	svc := NewCommentService(&fakeDB{}, stubPostGetter{err: ErrPostNotFound}, nil)
	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), "nice")
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCommentService_Create_NotifiesPostAuthor(t *testing.T) {
	authorID := uuid.New()
	commenterID := uuid.New()
	postID := uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(uuid.New(), postID, commenterID, "nice", 0, time.Now())
		},
	}
	notifier := &recordingNotifier{}

	svc := NewCommentService(db, stubPostGetter{post: &models.Post{ID: postID, AuthorID: authorID}}, notifier)
	comment, err := svc.Create(context.Background(), commenterID, postID, "nice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comment.PostID != postID {
		t.Fatalf("unexpected comment: %+v", comment)
	}
	if len(notifier.dispatched) != 1 || notifier.dispatched[0].Type != models.NotificationPostComment {
		t.Fatalf("expected POST_COMMENT notification, got %+v", notifier.dispatched)
	}
	if notifier.dispatched[0].RecipientID != authorID {
		t.Fatalf("expected notification for post author, got %v", notifier.dispatched[0].RecipientID)
	}
}

func TestCommentService_Create_OwnPostNoNotification(t *testing.T) {
	authorID := uuid.New()
	postID := uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(uuid.New(), postID, authorID, "note to self", 0, time.Now())
		},
	}
	notifier := &recordingNotifier{}

	svc := NewCommentService(db, stubPostGetter{post: &models.Post{ID: postID, AuthorID: authorID}}, notifier)
	if _, err := svc.Create(context.Background(), authorID, postID, "note to self"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.dispatched) != 0 {
		t.Fatalf("expected no self notification, got %+v", notifier.dispatched)
	}
}

func TestCommentService_Delete_Stranger(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(uuid.New(), uuid.New(), uuid.New(), uuid.New())
		},
	}

	svc := NewCommentService(db, nil, nil)
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotCommentAuthor) {
		t.Fatalf("expected ErrNotCommentAuthor, got %v", err)
	}
}

func TestCommentService_Delete_PostAuthorMayDelete(t *testing.T) {
	postAuthorID := uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(uuid.New(), uuid.New(), uuid.New(), postAuthorID)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}

	svc := NewCommentService(db, nil, nil)
	if err := svc.Delete(context.Background(), postAuthorID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
