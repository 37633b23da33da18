package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
)

type stubFriendSource struct {
	stubFriendChecker
	ids []uuid.UUID
}

func (s *stubFriendSource) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, nil
}

type stubFollowSource struct {
	stubFollowChecker
	institutions []uuid.UUID
	departments  []uuid.UUID
}

func (s *stubFollowSource) FollowedIDs(ctx context.Context, userID uuid.UUID, kind models.FollowKind) ([]uuid.UUID, error) {
	if kind == models.FollowInstitution {
		return s.institutions, nil
	}
	return s.departments, nil
}

type stubGroupSource struct {
	stubGroupChecker
	ids   []uuid.UUID
	group *models.Group
}

func (s *stubGroupSource) JoinedGroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, nil
}

func (s *stubGroupSource) GetGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	if s.group == nil {
		return nil, ErrGroupNotFound
	}
	return s.group, nil
}

type stubRoomSource struct {
	stubRoomChecker
	ids []uuid.UUID
}

func (s *stubRoomSource) MemberRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, nil
}

func feedPostRowValues(postID, authorID uuid.UUID) []any {
	return []any{
		postID, authorID, authorID, models.TargetUser, models.VisibilityPublic, "hello",
		false, false, 0, 0, time.Now(), time.Now(),
		authorID, "dana", "Dana Osei",
	}
}

func TestFeedService_BuildFeed_PassesMembershipSets(t *testing.T) {
	viewerID := uuid.New()
	friendID := uuid.New()
	groupID := uuid.New()

	var captured []any
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			captured = args
			return &fakeRows{}, nil
		},
	}

	svc := NewFeedService(db,
		&stubFriendSource{ids: []uuid.UUID{friendID}},
		&stubFollowSource{},
		&stubGroupSource{ids: []uuid.UUID{groupID}},
		&stubRoomSource{},
	)

	posts, err := svc.BuildFeed(context.Background(), viewerID, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected empty feed, got %d posts", len(posts))
	}

	if captured[0] != viewerID {
		t.Fatalf("expected viewer as first arg, got %v", captured[0])
	}
	friends, ok := captured[1].([]uuid.UUID)
	if !ok || len(friends) != 1 || friends[0] != friendID {
		t.Fatalf("unexpected friend set: %v", captured[1])
	}
	groups, ok := captured[4].([]uuid.UUID)
	if !ok || len(groups) != 1 || groups[0] != groupID {
		t.Fatalf("unexpected group set: %v", captured[4])
	}
}

func TestFeedService_BuildFeed_EmptyPageSkipsReactionQuery(t *testing.T) {
	queries := 0
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			queries++
			if strings.Contains(sql, "reactions") {
				t.Fatal("reaction query must be skipped for an empty page")
			}
			return &fakeRows{}, nil
		},
	}

	svc := NewFeedService(db, &stubFriendSource{}, &stubFollowSource{}, &stubGroupSource{}, &stubRoomSource{})
	if _, err := svc.BuildFeed(context.Background(), uuid.New(), 1, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queries != 1 {
		t.Fatalf("expected a single query, got %d", queries)
	}
}

func TestFeedService_BuildFeed_AnnotatesLikes(t *testing.T) {
	viewerID := uuid.New()
	likedID := uuid.New()
	otherID := uuid.New()
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			if strings.Contains(sql, "reactions") {
				return &fakeRows{rows: [][]any{{likedID}}}, nil
			}
			return &fakeRows{rows: [][]any{
				feedPostRowValues(likedID, uuid.New()),
				feedPostRowValues(otherID, uuid.New()),
			}}, nil
		},
	}

	svc := NewFeedService(db, &stubFriendSource{}, &stubFollowSource{}, &stubGroupSource{}, &stubRoomSource{})
	posts, err := svc.BuildFeed(context.Background(), viewerID, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if !posts[0].IsLikedByMe {
		t.Fatal("expected first post to be liked")
	}
	if posts[1].IsLikedByMe {
		t.Fatal("expected second post to not be liked")
	}
}

func TestFeedService_TargetFeed_PrivateGroupRequiresMembership(t *testing.T) {
	groups := &stubGroupSource{group: &models.Group{ID: uuid.New(), Privacy: models.GroupPrivate}}
	groups.joined = false

	svc := NewFeedService(&fakeDB{}, &stubFriendSource{}, &stubFollowSource{}, groups, &stubRoomSource{})
	_, err := svc.TargetFeed(context.Background(), uuid.New(), uuid.New(), models.TargetGroup, 1, 20)
	if !errors.Is(err, ErrNotGroupMember) {
		t.Fatalf("expected ErrNotGroupMember, got %v", err)
	}
}

func TestFeedService_TargetFeed_PublicGroupSkipsMembership(t *testing.T) {
	groups := &stubGroupSource{group: &models.Group{ID: uuid.New(), Privacy: models.GroupPublic}}

	svc := NewFeedService(&fakeDB{}, &stubFriendSource{}, &stubFollowSource{}, groups, &stubRoomSource{})
	if _, err := svc.TargetFeed(context.Background(), uuid.New(), uuid.New(), models.TargetGroup, 1, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if groups.called {
		t.Fatal("no membership check expected for a public group")
	}
}

func TestFeedService_TargetFeed_RoomRequiresMembership(t *testing.T) {
	rooms := &stubRoomSource{}
	rooms.member = false

	svc := NewFeedService(&fakeDB{}, &stubFriendSource{}, &stubFollowSource{}, &stubGroupSource{}, rooms)
	_, err := svc.TargetFeed(context.Background(), uuid.New(), uuid.New(), models.TargetRoom, 1, 20)
	if !errors.Is(err, ErrNotRoomMember) {
		t.Fatalf("expected ErrNotRoomMember, got %v", err)
	}
}

func TestFeedService_ProfileFeed_VisibilityWidening(t *testing.T) {
	profileID := uuid.New()

	capture := func(db **fakeDB) *[]any {
		var args []any
		*db = &fakeDB{
			QueryFunc: func(ctx context.Context, sql string, queryArgs ...any) (Rows, error) {
				if !strings.Contains(sql, "reactions") {
					args = queryArgs
				}
				return &fakeRows{}, nil
			},
		}
		return &args
	}

	// Owner sees everything including ONLY_ME.
	var db *fakeDB
	args := capture(&db)
	svc := NewFeedService(db, &stubFriendSource{}, &stubFollowSource{}, &stubGroupSource{}, &stubRoomSource{})
	if _, err := svc.ProfileFeed(context.Background(), profileID, profileID, 1, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vis := (*args)[1].([]models.PostVisibility)
	if len(vis) != 4 {
		t.Fatalf("owner should see 4 visibility levels, got %v", vis)
	}

	// Friend sees everything but ONLY_ME.
	args = capture(&db)
	friends := &stubFriendSource{}
	friends.isFriend = true
	svc = NewFeedService(db, friends, &stubFollowSource{}, &stubGroupSource{}, &stubRoomSource{})
	if _, err := svc.ProfileFeed(context.Background(), uuid.New(), profileID, 1, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vis = (*args)[1].([]models.PostVisibility)
	if len(vis) != 3 {
		t.Fatalf("friend should see 3 visibility levels, got %v", vis)
	}
	for _, v := range vis {
		if v == models.VisibilityOnlyMe {
			t.Fatal("friend must not see ONLY_ME")
		}
	}

	// Stranger sees PUBLIC and INTERNAL only.
	args = capture(&db)
	svc = NewFeedService(db, &stubFriendSource{}, &stubFollowSource{}, &stubGroupSource{}, &stubRoomSource{})
	if _, err := svc.ProfileFeed(context.Background(), uuid.New(), profileID, 1, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vis = (*args)[1].([]models.PostVisibility)
	if len(vis) != 2 {
		t.Fatalf("stranger should see 2 visibility levels, got %v", vis)
	}
}
