package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/edusocial/edusocial/internal/models"
)

const feedPostColumns = `p.id, p.author_id, p.target_id, p.target_kind, p.visibility, p.content,
	p.is_archived, p.is_pinned, p.likes_count, p.comments_count, p.created_at, p.updated_at,
	u.id, u.username, u.full_name`

// FeedService assembles the home feed and the per-target timelines. It does
// not re-run the per-post visibility rules; the membership sets gathered up
// front make each UNION branch visible by construction.
type FeedService struct {
	db      DB
	friends FriendSource
	follows FollowSource
	groups  GroupSource
	rooms   RoomSource
}

func NewFeedService(db DB, friends FriendSource, follows FollowSource, groups GroupSource, rooms RoomSource) *FeedService {
	return &FeedService{
		db:      db,
		friends: friends,
		follows: follows,
		groups:  groups,
		rooms:   rooms,
	}
}

// BuildFeed returns one page of the viewer's home feed: friend wall posts,
// followed institution and department posts, joined group and room posts,
// and the viewer's own posts, newest first.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]models.FeedPost, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		friendIDs []uuid.UUID
		instIDs   []uuid.UUID
		deptIDs   []uuid.UUID
		groupIDs  []uuid.UUID
		roomIDs   []uuid.UUID
	)

	collect := func(dst *[]uuid.UUID, fetch func() ([]uuid.UUID, error)) {
		defer wg.Done()
		ids, err := fetch()
		mu.Lock()
		defer mu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = err
			return
		}
		*dst = ids
	}

	wg.Add(5)
	go collect(&friendIDs, func() ([]uuid.UUID, error) { return s.friends.FriendIDs(ctx, viewerID) })
	go collect(&instIDs, func() ([]uuid.UUID, error) {
		return s.follows.FollowedIDs(ctx, viewerID, models.FollowInstitution)
	})
	go collect(&deptIDs, func() ([]uuid.UUID, error) {
		return s.follows.FollowedIDs(ctx, viewerID, models.FollowDepartment)
	})
	go collect(&groupIDs, func() ([]uuid.UUID, error) { return s.groups.JoinedGroupIDs(ctx, viewerID) })
	go collect(&roomIDs, func() ([]uuid.UUID, error) { return s.rooms.MemberRoomIDs(ctx, viewerID) })
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("gathering feed sources: %w", firstErr)
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+feedPostColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.is_archived = FALSE
		   AND (p.visibility <> 'ONLY_ME' OR p.author_id = $1)
		   AND (
		        (p.target_kind = 'USER' AND p.author_id = ANY($2)
		         AND p.visibility IN ('PUBLIC', 'CONNECTIONS'))
		     OR (p.target_kind = 'INSTITUTION' AND p.target_id = ANY($3))
		     OR (p.target_kind = 'DEPARTMENT' AND p.target_id = ANY($4))
		     OR (p.target_kind = 'GROUP' AND p.target_id = ANY($5))
		     OR (p.target_kind = 'ROOM' AND p.target_id = ANY($6))
		     OR p.author_id = $1
		   )
		 ORDER BY p.created_at DESC
		 LIMIT $7 OFFSET $8`,
		viewerID, friendIDs, instIDs, deptIDs, groupIDs, roomIDs, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	defer rows.Close()

	posts, err := scanFeedPosts(rows)
	if err != nil {
		return nil, err
	}

	if err := s.annotateLikes(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// TargetFeed returns the timeline of a group, room, institution or
// department, pinned posts first. Group and room targets are gated before
// querying; institution and department walls are open.
func (s *FeedService) TargetFeed(ctx context.Context, viewerID, targetID uuid.UUID, kind models.TargetKind, page, limit int) ([]models.FeedPost, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	switch kind {
	case models.TargetGroup:
		group, err := s.groups.GetGroup(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if group.Privacy != models.GroupPublic {
			joined, err := s.groups.IsJoinedMember(ctx, targetID, viewerID)
			if err != nil {
				return nil, err
			}
			if !joined {
				return nil, ErrNotGroupMember
			}
		}
	case models.TargetRoom:
		member, err := s.rooms.IsMember(ctx, targetID, viewerID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrNotRoomMember
		}
	case models.TargetInstitution, models.TargetDepartment, models.TargetPage:
	default:
		return nil, fmt.Errorf("unsupported target kind: %s", kind)
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+feedPostColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.target_id = $2 AND p.target_kind = $3
		   AND p.is_archived = FALSE
		   AND (p.visibility <> 'ONLY_ME' OR p.author_id = $1)
		 ORDER BY p.is_pinned DESC, p.created_at DESC
		 LIMIT $4 OFFSET $5`,
		viewerID, targetID, kind, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying target feed: %w", err)
	}
	defer rows.Close()

	posts, err := scanFeedPosts(rows)
	if err != nil {
		return nil, err
	}

	if err := s.annotateLikes(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ProfileFeed returns a user's wall. The visible set widens with the
// relationship: owners see everything, friends see everything but ONLY_ME,
// strangers see PUBLIC and INTERNAL.
func (s *FeedService) ProfileFeed(ctx context.Context, viewerID, profileID uuid.UUID, page, limit int) ([]models.FeedPost, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	visibilities := []models.PostVisibility{models.VisibilityPublic, models.VisibilityInternal}
	if viewerID == profileID {
		visibilities = append(visibilities, models.VisibilityConnections, models.VisibilityOnlyMe)
	} else {
		isFriend, err := s.friends.IsFriend(ctx, viewerID, profileID)
		if err != nil {
			return nil, err
		}
		if isFriend {
			visibilities = append(visibilities, models.VisibilityConnections)
		}
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+feedPostColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.target_id = $1 AND p.target_kind = 'USER'
		   AND p.is_archived = FALSE
		   AND p.visibility = ANY($2)
		 ORDER BY p.is_pinned DESC, p.created_at DESC
		 LIMIT $3 OFFSET $4`,
		profileID, visibilities, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying profile feed: %w", err)
	}
	defer rows.Close()

	posts, err := scanFeedPosts(rows)
	if err != nil {
		return nil, err
	}

	if err := s.annotateLikes(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// annotateLikes fills IsLikedByMe with one batched query over the page's
// post IDs. An empty page issues no query.
func (s *FeedService) annotateLikes(ctx context.Context, viewerID uuid.UUID, posts []models.FeedPost) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	rows, err := s.db.Query(ctx,
		`SELECT target_id FROM reactions
		 WHERE user_id = $1 AND target_kind = 'POST' AND target_id = ANY($2)`,
		viewerID, ids,
	)
	if err != nil {
		return fmt.Errorf("querying reactions: %w", err)
	}
	defer rows.Close()

	liked := make(map[uuid.UUID]bool, len(posts))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning reaction: %w", err)
		}
		liked[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range posts {
		posts[i].IsLikedByMe = liked[posts[i].ID]
	}
	return nil
}

func scanFeedPosts(rows Rows) ([]models.FeedPost, error) {
	posts := []models.FeedPost{}
	for rows.Next() {
		var fp models.FeedPost
		if err := rows.Scan(
			&fp.ID, &fp.AuthorID, &fp.TargetID, &fp.TargetKind, &fp.Visibility, &fp.Content,
			&fp.IsArchived, &fp.IsPinned, &fp.LikesCount, &fp.CommentsCount, &fp.CreatedAt, &fp.UpdatedAt,
			&fp.Author.ID, &fp.Author.Username, &fp.Author.FullName,
		); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, fp)
	}
	return posts, rows.Err()
}
