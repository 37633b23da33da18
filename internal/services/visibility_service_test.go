package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
)

type stubFriendChecker struct {
	isFriend bool
	called   bool
}

func (s *stubFriendChecker) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	s.called = true
	return s.isFriend, nil
}

type stubGroupChecker struct {
	joined bool
	called bool
}

func (s *stubGroupChecker) IsJoinedMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	s.called = true
	return s.joined, nil
}

type stubRoomChecker struct {
	member bool
	called bool
}

func (s *stubRoomChecker) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	s.called = true
	return s.member, nil
}

type stubFollowChecker struct {
	following bool
	called    bool
	kind      models.FollowKind
}

func (s *stubFollowChecker) IsFollowing(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (bool, error) {
	s.called = true
	s.kind = kind
	return s.following, nil
}

func newPost(authorID uuid.UUID, kind models.TargetKind, visibility models.PostVisibility) *models.Post {
	return &models.Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		TargetID:   uuid.New(),
		TargetKind: kind,
		Visibility: visibility,
	}
}

func TestVisibilityService_AuthorAlwaysSees(t *testing.T) {
	authorID := uuid.New()
	friends := &stubFriendChecker{}
	svc := NewVisibilityService(friends, &stubGroupChecker{}, &stubRoomChecker{}, &stubFollowChecker{})

	post := newPost(authorID, models.TargetUser, models.VisibilityOnlyMe)
	ok, err := svc.CanView(context.Background(), authorID, post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("author must see their own post")
	}
	if friends.called {
		t.Fatal("no lookup expected for the author")
	}
}

func TestVisibilityService_OnlyMeDeniesOthers(t *testing.T) {
	rooms := &stubRoomChecker{member: true}
	svc := NewVisibilityService(&stubFriendChecker{isFriend: true}, &stubGroupChecker{joined: true}, rooms, &stubFollowChecker{following: true})

	post := newPost(uuid.New(), models.TargetRoom, models.VisibilityOnlyMe)
	ok, err := svc.CanView(context.Background(), uuid.New(), post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("ONLY_ME must deny everyone but the author")
	}
	if rooms.called {
		t.Fatal("ONLY_ME must short-circuit before membership lookups")
	}
}

func TestVisibilityService_RoomAlwaysMembershipGated(t *testing.T) {
	for _, visibility := range []models.PostVisibility{models.VisibilityPublic, models.VisibilityInternal, models.VisibilityConnections} {
		rooms := &stubRoomChecker{member: false}
		svc := NewVisibilityService(&stubFriendChecker{}, &stubGroupChecker{}, rooms, &stubFollowChecker{})

		post := newPost(uuid.New(), models.TargetRoom, visibility)
		ok, err := svc.CanView(context.Background(), uuid.New(), post)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatalf("non-member must not see %s room post", visibility)
		}
		if !rooms.called {
			t.Fatal("expected room membership lookup")
		}
	}
}

func TestVisibilityService_UserConnectionsRequiresFriendship(t *testing.T) {
	friends := &stubFriendChecker{isFriend: false}
	svc := NewVisibilityService(friends, &stubGroupChecker{}, &stubRoomChecker{}, &stubFollowChecker{})

	post := newPost(uuid.New(), models.TargetUser, models.VisibilityConnections)
	ok, err := svc.CanView(context.Background(), uuid.New(), post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("stranger must not see a CONNECTIONS wall post")
	}

	friends.isFriend = true
	ok, err = svc.CanView(context.Background(), uuid.New(), post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("friend must see a CONNECTIONS wall post")
	}
}

func TestVisibilityService_GroupConnectionsRequiresMembership(t *testing.T) {
	groups := &stubGroupChecker{joined: true}
	svc := NewVisibilityService(&stubFriendChecker{}, groups, &stubRoomChecker{}, &stubFollowChecker{})

	post := newPost(uuid.New(), models.TargetGroup, models.VisibilityConnections)
	ok, err := svc.CanView(context.Background(), uuid.New(), post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("joined member must see group CONNECTIONS post")
	}
	if !groups.called {
		t.Fatal("expected group membership lookup")
	}
}

func TestVisibilityService_PublicGroupPostSkipsLookup(t *testing.T) {
	groups := &stubGroupChecker{}
	svc := NewVisibilityService(&stubFriendChecker{}, groups, &stubRoomChecker{}, &stubFollowChecker{})

	post := newPost(uuid.New(), models.TargetGroup, models.VisibilityPublic)
	ok, err := svc.CanView(context.Background(), uuid.New(), post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("PUBLIC group post must be visible")
	}
	if groups.called {
		t.Fatal("no membership lookup expected for PUBLIC visibility")
	}
}

func TestVisibilityService_InstitutionConnectionsRequiresFollow(t *testing.T) {
	follows := &stubFollowChecker{following: false}
	svc := NewVisibilityService(&stubFriendChecker{}, &stubGroupChecker{}, &stubRoomChecker{}, follows)

	post := newPost(uuid.New(), models.TargetInstitution, models.VisibilityConnections)
	ok, err := svc.CanView(context.Background(), uuid.New(), post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("non-follower must not see institution CONNECTIONS post")
	}
	if follows.kind != models.FollowInstitution {
		t.Fatalf("expected INSTITUTION follow check, got %s", follows.kind)
	}
}

func TestVisibilityService_DepartmentConnectionsUsesDepartmentKind(t *testing.T) {
	follows := &stubFollowChecker{following: true}
	svc := NewVisibilityService(&stubFriendChecker{}, &stubGroupChecker{}, &stubRoomChecker{}, follows)

	post := newPost(uuid.New(), models.TargetDepartment, models.VisibilityConnections)
	ok, err := svc.CanView(context.Background(), uuid.New(), post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("follower must see department CONNECTIONS post")
	}
	if follows.kind != models.FollowDepartment {
		t.Fatalf("expected DEPARTMENT follow check, got %s", follows.kind)
	}
}
