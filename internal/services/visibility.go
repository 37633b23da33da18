package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
)

// VisibilityService decides whether a viewer may see a post. The rule order
// is fixed: author always sees their own post, ONLY_ME hides everything
// else, then the post's target kind picks the gate. A denial is (false, nil);
// errors are reserved for infrastructure failures.
type VisibilityService struct {
	friends FriendChecker
	groups  GroupMembershipChecker
	rooms   RoomMembershipChecker
	follows FollowChecker
}

func NewVisibilityService(friends FriendChecker, groups GroupMembershipChecker, rooms RoomMembershipChecker, follows FollowChecker) *VisibilityService {
	return &VisibilityService{
		friends: friends,
		groups:  groups,
		rooms:   rooms,
		follows: follows,
	}
}

func (s *VisibilityService) CanView(ctx context.Context, viewerID uuid.UUID, post *models.Post) (bool, error) {
	if post.AuthorID == viewerID {
		return true, nil
	}

	if post.Visibility == models.VisibilityOnlyMe {
		return false, nil
	}

	switch post.TargetKind {
	case models.TargetRoom:
		// Rooms are membership-gated regardless of the post's visibility.
		return s.rooms.IsMember(ctx, post.TargetID, viewerID)

	case models.TargetUser:
		if post.Visibility == models.VisibilityConnections {
			return s.friends.IsFriend(ctx, viewerID, post.TargetID)
		}

	case models.TargetGroup:
		if post.Visibility == models.VisibilityConnections {
			return s.groups.IsJoinedMember(ctx, post.TargetID, viewerID)
		}

	case models.TargetInstitution:
		if post.Visibility == models.VisibilityConnections {
			return s.follows.IsFollowing(ctx, viewerID, post.TargetID, models.FollowInstitution)
		}

	case models.TargetDepartment:
		if post.Visibility == models.VisibilityConnections {
			return s.follows.IsFollowing(ctx, viewerID, post.TargetID, models.FollowDepartment)
		}
	}

	return true, nil
}
