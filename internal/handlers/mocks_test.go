package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
	"github.com/edusocial/edusocial/internal/services"
)

type mockUserService struct {
	CreateFunc        func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	SearchFunc        func(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
	SetSearchableFunc func(ctx context.Context, userID uuid.UUID, searchable bool) error
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockUserService) Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockUserService) SetSearchable(ctx context.Context, userID uuid.UUID, searchable bool) error {
	if m.SetSearchableFunc != nil {
		return m.SetSearchableFunc(ctx, userID, searchable)
	}
	return nil
}

type mockAuthService struct {
	HashPasswordFunc          func(password string) (string, error)
	VerifyPasswordFunc        func(hash, password string) bool
	CreateSessionFunc         func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc       func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc         func(ctx context.Context, token string) error
	DeleteAllUserSessionsFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return true
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, services.ErrSessionNotFound
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthService) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteAllUserSessionsFunc != nil {
		return m.DeleteAllUserSessionsFunc(ctx, userID)
	}
	return nil
}

type mockRelationshipService struct {
	SendRequestFunc    func(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.RelationshipResult, error)
	AcceptRequestFunc  func(ctx context.Context, callerID, relationshipID uuid.UUID) (*models.Relationship, error)
	CancelOrRejectFunc func(ctx context.Context, callerID, relationshipID uuid.UUID) error
	UnfriendFunc       func(ctx context.Context, callerID, targetID uuid.UUID) error
	BlockFunc          func(ctx context.Context, callerID, targetID uuid.UUID) error
	UnblockFunc        func(ctx context.Context, callerID, targetID uuid.UUID) error
	LabelForFunc       func(ctx context.Context, viewerID, targetID uuid.UUID) (*models.ProfileRelationship, error)
	ListFunc           func(ctx context.Context, userID uuid.UUID, kind models.RelationshipListKind, page, limit int) ([]models.RelationshipWithUser, error)
}

func (m *mockRelationshipService) SendRequest(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.RelationshipResult, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, requesterID, recipientID)
	}
	return &models.RelationshipResult{}, nil
}

func (m *mockRelationshipService) AcceptRequest(ctx context.Context, callerID, relationshipID uuid.UUID) (*models.Relationship, error) {
	if m.AcceptRequestFunc != nil {
		return m.AcceptRequestFunc(ctx, callerID, relationshipID)
	}
	return &models.Relationship{}, nil
}

func (m *mockRelationshipService) CancelOrReject(ctx context.Context, callerID, relationshipID uuid.UUID) error {
	if m.CancelOrRejectFunc != nil {
		return m.CancelOrRejectFunc(ctx, callerID, relationshipID)
	}
	return nil
}

func (m *mockRelationshipService) Unfriend(ctx context.Context, callerID, targetID uuid.UUID) error {
	if m.UnfriendFunc != nil {
		return m.UnfriendFunc(ctx, callerID, targetID)
	}
	return nil
}

func (m *mockRelationshipService) Block(ctx context.Context, callerID, targetID uuid.UUID) error {
	if m.BlockFunc != nil {
		return m.BlockFunc(ctx, callerID, targetID)
	}
	return nil
}

func (m *mockRelationshipService) Unblock(ctx context.Context, callerID, targetID uuid.UUID) error {
	if m.UnblockFunc != nil {
		return m.UnblockFunc(ctx, callerID, targetID)
	}
	return nil
}

func (m *mockRelationshipService) LabelFor(ctx context.Context, viewerID, targetID uuid.UUID) (*models.ProfileRelationship, error) {
	if m.LabelForFunc != nil {
		return m.LabelForFunc(ctx, viewerID, targetID)
	}
	return &models.ProfileRelationship{Label: models.LabelNone}, nil
}

func (m *mockRelationshipService) List(ctx context.Context, userID uuid.UUID, kind models.RelationshipListKind, page, limit int) ([]models.RelationshipWithUser, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, kind, page, limit)
	}
	return nil, nil
}

type mockPostService struct {
	CreateFunc      func(ctx context.Context, authorID uuid.UUID, params models.CreatePostParams) (*models.Post, error)
	GetPostFunc     func(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error)
	DeleteFunc      func(ctx context.Context, callerID, postID uuid.UUID) error
	SetArchivedFunc func(ctx context.Context, callerID, postID uuid.UUID, archived bool) error
	SetPinnedFunc   func(ctx context.Context, callerID, postID uuid.UUID, pinned bool) error
}

func (m *mockPostService) Create(ctx context.Context, authorID uuid.UUID, params models.CreatePostParams) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, authorID, params)
	}
	return &models.Post{}, nil
}

func (m *mockPostService) GetPost(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error) {
	if m.GetPostFunc != nil {
		return m.GetPostFunc(ctx, viewerID, postID)
	}
	return &models.Post{}, nil
}

func (m *mockPostService) Delete(ctx context.Context, callerID, postID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, callerID, postID)
	}
	return nil
}

func (m *mockPostService) SetArchived(ctx context.Context, callerID, postID uuid.UUID, archived bool) error {
	if m.SetArchivedFunc != nil {
		return m.SetArchivedFunc(ctx, callerID, postID, archived)
	}
	return nil
}

func (m *mockPostService) SetPinned(ctx context.Context, callerID, postID uuid.UUID, pinned bool) error {
	if m.SetPinnedFunc != nil {
		return m.SetPinnedFunc(ctx, callerID, postID, pinned)
	}
	return nil
}

type mockReactionService struct {
	ToggleFunc func(ctx context.Context, userID, targetID uuid.UUID, kind models.ReactionTarget) (bool, error)
}

func (m *mockReactionService) Toggle(ctx context.Context, userID, targetID uuid.UUID, kind models.ReactionTarget) (bool, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, userID, targetID, kind)
	}
	return true, nil
}

type mockFeedService struct {
	BuildFeedFunc   func(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]models.FeedPost, error)
	TargetFeedFunc  func(ctx context.Context, viewerID, targetID uuid.UUID, kind models.TargetKind, page, limit int) ([]models.FeedPost, error)
	ProfileFeedFunc func(ctx context.Context, viewerID, profileID uuid.UUID, page, limit int) ([]models.FeedPost, error)
}

func (m *mockFeedService) BuildFeed(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]models.FeedPost, error) {
	if m.BuildFeedFunc != nil {
		return m.BuildFeedFunc(ctx, viewerID, page, limit)
	}
	return nil, nil
}

func (m *mockFeedService) TargetFeed(ctx context.Context, viewerID, targetID uuid.UUID, kind models.TargetKind, page, limit int) ([]models.FeedPost, error) {
	if m.TargetFeedFunc != nil {
		return m.TargetFeedFunc(ctx, viewerID, targetID, kind, page, limit)
	}
	return nil, nil
}

func (m *mockFeedService) ProfileFeed(ctx context.Context, viewerID, profileID uuid.UUID, page, limit int) ([]models.FeedPost, error) {
	if m.ProfileFeedFunc != nil {
		return m.ProfileFeedFunc(ctx, viewerID, profileID, page, limit)
	}
	return nil, nil
}

type mockCommentService struct {
	CreateFunc func(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error)
	ListFunc   func(ctx context.Context, viewerID, postID uuid.UUID, page, limit int) ([]models.CommentWithUser, error)
	DeleteFunc func(ctx context.Context, callerID, commentID uuid.UUID) error
}

func (m *mockCommentService) Create(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, authorID, postID, content)
	}
	return &models.Comment{}, nil
}

func (m *mockCommentService) List(ctx context.Context, viewerID, postID uuid.UUID, page, limit int) ([]models.CommentWithUser, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, viewerID, postID, page, limit)
	}
	return nil, nil
}

func (m *mockCommentService) Delete(ctx context.Context, callerID, commentID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, callerID, commentID)
	}
	return nil
}

type mockGroupService struct {
	CreateFunc     func(ctx context.Context, creatorID uuid.UUID, name, description string, privacy models.GroupPrivacy, allowMemberPosting bool) (*models.Group, error)
	GetGroupFunc   func(ctx context.Context, groupID uuid.UUID) (*models.Group, error)
	JoinFunc       func(ctx context.Context, userID, groupID uuid.UUID) (*models.GroupMembership, error)
	InviteFunc     func(ctx context.Context, callerID, groupID, userID uuid.UUID) (*models.GroupMembership, error)
	ApproveFunc    func(ctx context.Context, callerID, groupID, userID uuid.UUID) (*models.GroupMembership, error)
	BanFunc        func(ctx context.Context, callerID, groupID, userID uuid.UUID) error
	LeaveFunc      func(ctx context.Context, userID, groupID uuid.UUID) error
	ChangeRoleFunc func(ctx context.Context, callerID, groupID, userID uuid.UUID, newRole models.ResourceRole) error
	MembersFunc    func(ctx context.Context, groupID uuid.UUID, page, limit int) ([]models.GroupMemberWithUser, error)
	MembershipFunc func(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMembership, error)
}

func (m *mockGroupService) Create(ctx context.Context, creatorID uuid.UUID, name, description string, privacy models.GroupPrivacy, allowMemberPosting bool) (*models.Group, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, creatorID, name, description, privacy, allowMemberPosting)
	}
	return &models.Group{}, nil
}

func (m *mockGroupService) GetGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	if m.GetGroupFunc != nil {
		return m.GetGroupFunc(ctx, groupID)
	}
	return &models.Group{}, nil
}

func (m *mockGroupService) Join(ctx context.Context, userID, groupID uuid.UUID) (*models.GroupMembership, error) {
	if m.JoinFunc != nil {
		return m.JoinFunc(ctx, userID, groupID)
	}
	return &models.GroupMembership{Status: models.MembershipJoined}, nil
}

func (m *mockGroupService) Invite(ctx context.Context, callerID, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	if m.InviteFunc != nil {
		return m.InviteFunc(ctx, callerID, groupID, userID)
	}
	return &models.GroupMembership{}, nil
}

func (m *mockGroupService) Approve(ctx context.Context, callerID, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, callerID, groupID, userID)
	}
	return &models.GroupMembership{}, nil
}

func (m *mockGroupService) Ban(ctx context.Context, callerID, groupID, userID uuid.UUID) error {
	if m.BanFunc != nil {
		return m.BanFunc(ctx, callerID, groupID, userID)
	}
	return nil
}

func (m *mockGroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	if m.LeaveFunc != nil {
		return m.LeaveFunc(ctx, userID, groupID)
	}
	return nil
}

func (m *mockGroupService) ChangeRole(ctx context.Context, callerID, groupID, userID uuid.UUID, newRole models.ResourceRole) error {
	if m.ChangeRoleFunc != nil {
		return m.ChangeRoleFunc(ctx, callerID, groupID, userID, newRole)
	}
	return nil
}

func (m *mockGroupService) Members(ctx context.Context, groupID uuid.UUID, page, limit int) ([]models.GroupMemberWithUser, error) {
	if m.MembersFunc != nil {
		return m.MembersFunc(ctx, groupID, page, limit)
	}
	return nil, nil
}

func (m *mockGroupService) Membership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	if m.MembershipFunc != nil {
		return m.MembershipFunc(ctx, groupID, userID)
	}
	return nil, services.ErrNotGroupMember
}

type mockRoomService struct {
	CreateFunc       func(ctx context.Context, creatorID uuid.UUID, name string) (*models.Room, error)
	GetRoomFunc      func(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	AddMemberFunc    func(ctx context.Context, callerID, roomID, userID uuid.UUID) (*models.RoomMembership, error)
	RemoveMemberFunc func(ctx context.Context, callerID, roomID, userID uuid.UUID) error
	ArchiveFunc      func(ctx context.Context, callerID, roomID uuid.UUID) error
	MembersFunc      func(ctx context.Context, roomID uuid.UUID, page, limit int) ([]models.RoomMemberWithUser, error)
}

func (m *mockRoomService) Create(ctx context.Context, creatorID uuid.UUID, name string) (*models.Room, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, creatorID, name)
	}
	return &models.Room{}, nil
}

func (m *mockRoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(ctx, roomID)
	}
	return &models.Room{}, nil
}

func (m *mockRoomService) AddMember(ctx context.Context, callerID, roomID, userID uuid.UUID) (*models.RoomMembership, error) {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, callerID, roomID, userID)
	}
	return &models.RoomMembership{}, nil
}

func (m *mockRoomService) RemoveMember(ctx context.Context, callerID, roomID, userID uuid.UUID) error {
	if m.RemoveMemberFunc != nil {
		return m.RemoveMemberFunc(ctx, callerID, roomID, userID)
	}
	return nil
}

func (m *mockRoomService) Archive(ctx context.Context, callerID, roomID uuid.UUID) error {
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, callerID, roomID)
	}
	return nil
}

func (m *mockRoomService) Members(ctx context.Context, roomID uuid.UUID, page, limit int) ([]models.RoomMemberWithUser, error) {
	if m.MembersFunc != nil {
		return m.MembersFunc(ctx, roomID, page, limit)
	}
	return nil, nil
}

type mockFollowService struct {
	FollowFunc   func(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (*models.Follow, error)
	UnfollowFunc func(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) error
	ListFunc     func(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Follow, error)
}

func (m *mockFollowService) Follow(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) (*models.Follow, error) {
	if m.FollowFunc != nil {
		return m.FollowFunc(ctx, userID, targetID, kind)
	}
	return &models.Follow{}, nil
}

func (m *mockFollowService) Unfollow(ctx context.Context, userID, targetID uuid.UUID, kind models.FollowKind) error {
	if m.UnfollowFunc != nil {
		return m.UnfollowFunc(ctx, userID, targetID, kind)
	}
	return nil
}

func (m *mockFollowService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Follow, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, page, limit)
	}
	return nil, nil
}

type mockAcademicService struct {
	GetInstitutionFunc   func(ctx context.Context, id uuid.UUID) (*models.Institution, error)
	ListInstitutionsFunc func(ctx context.Context) ([]models.Institution, error)
	GetDepartmentFunc    func(ctx context.Context, id uuid.UUID) (*models.Department, error)
	ListDepartmentsFunc  func(ctx context.Context, institutionID uuid.UUID) ([]models.Department, error)
}

func (m *mockAcademicService) GetInstitution(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	if m.GetInstitutionFunc != nil {
		return m.GetInstitutionFunc(ctx, id)
	}
	return &models.Institution{}, nil
}

func (m *mockAcademicService) ListInstitutions(ctx context.Context) ([]models.Institution, error) {
	if m.ListInstitutionsFunc != nil {
		return m.ListInstitutionsFunc(ctx)
	}
	return nil, nil
}

func (m *mockAcademicService) GetDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	if m.GetDepartmentFunc != nil {
		return m.GetDepartmentFunc(ctx, id)
	}
	return &models.Department{}, nil
}

func (m *mockAcademicService) ListDepartments(ctx context.Context, institutionID uuid.UUID) ([]models.Department, error) {
	if m.ListDepartmentsFunc != nil {
		return m.ListDepartmentsFunc(ctx, institutionID)
	}
	return nil, nil
}

type mockNotificationService struct {
	ListFunc        func(ctx context.Context, userID uuid.UUID, params services.NotificationListParams) ([]models.Notification, error)
	MarkReadFunc    func(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllReadFunc func(ctx context.Context, userID uuid.UUID) error
	UnreadCountFunc func(ctx context.Context, userID uuid.UUID) (int, error)
}

func (m *mockNotificationService) List(ctx context.Context, userID uuid.UUID, params services.NotificationListParams) ([]models.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, params)
	}
	return nil, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, notificationID)
	}
	return nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.UnreadCountFunc != nil {
		return m.UnreadCountFunc(ctx, userID)
	}
	return 0, nil
}

type mockSuggestionService struct {
	FriendSuggestionsFunc func(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.UserSummary, error)
}

func (m *mockSuggestionService) FriendSuggestions(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.UserSummary, error) {
	if m.FriendSuggestionsFunc != nil {
		return m.FriendSuggestionsFunc(ctx, userID, page, limit)
	}
	return nil, nil
}
