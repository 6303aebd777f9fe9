// Package memstore is an in-memory implementation of every repository
// interface. It backs the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.UserRepository         = (*Store)(nil)
	_ repositories.FollowRepository       = (*Store)(nil)
	_ repositories.PostRepository         = (*Store)(nil)
	_ repositories.NotificationRepository = (*Store)(nil)
	_ repositories.Transactor             = (*Store)(nil)
)

type edge struct{ from, to uint }

type storedPost struct {
	post models.Post
	seq  int
}

// Store holds users, follow edges, posts and notifications in maps guarded by
// one mutex.
type Store struct {
	mu sync.Mutex

	users         []models.User
	following     map[edge]time.Time
	followers     map[edge]time.Time
	posts         map[primitive.ObjectID]*storedPost
	notifications []models.Notification
	postSeq       int

	// NotificationErr, when set, is returned by CreateNotification.
	NotificationErr error
	// Now stamps created records; defaults to time.Now.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		following: make(map[edge]time.Time),
		followers: make(map[edge]time.Time),
		posts:     make(map[primitive.ObjectID]*storedPost),
		Now:       time.Now,
	}
}

// WithinTransaction restores the PostgreSQL-backed state (users, edges and
// notifications) when fn fails. Posts are untouched, matching the real split
// between the two stores.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	users := append([]models.User(nil), s.users...)
	following := copyEdges(s.following)
	followers := copyEdges(s.followers)
	notifications := append([]models.Notification(nil), s.notifications...)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.following, s.followers, s.notifications = users, following, followers, notifications
		s.mu.Unlock()
		return err
	}
	return nil
}

func copyEdges(m map[edge]time.Time) map[edge]time.Time {
	out := make(map[edge]time.Time, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	user.ID = uint(len(s.users) + 1)
	user.CreatedAt = s.Now()
	user.UpdatedAt = user.CreatedAt
	s.users = append(s.users, *user)
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.ID == id })
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Store) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID })
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.User
	for _, u := range s.users {
		if want[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) ListUsersExcept(_ context.Context, excludeID uint, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == user.ID {
			user.UpdatedAt = s.Now()
			s.users[i] = *user
			return nil
		}
	}
	return repositories.ErrNotFound
}

// --- follow edges ---

func (s *Store) AddFollowing(_ context.Context, userID, followingID uint) error {
	return s.addEdge(s.following, edge{userID, followingID})
}

func (s *Store) RemoveFollowing(_ context.Context, userID, followingID uint) error {
	return s.removeEdge(s.following, edge{userID, followingID})
}

func (s *Store) AddFollower(_ context.Context, userID, followerID uint) error {
	return s.addEdge(s.followers, edge{userID, followerID})
}

func (s *Store) RemoveFollower(_ context.Context, userID, followerID uint) error {
	return s.removeEdge(s.followers, edge{userID, followerID})
}

func (s *Store) addEdge(set map[edge]time.Time, e edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := set[e]; ok {
		return repositories.ErrDuplicate
	}
	set[e] = s.Now()
	return nil
}

func (s *Store) removeEdge(set map[edge]time.Time, e edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := set[e]; !ok {
		return repositories.ErrNotFound
	}
	delete(set, e)
	return nil
}

func (s *Store) IsFollowing(_ context.Context, userID, targetID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.following[edge{userID, targetID}]
	return ok, nil
}

func (s *Store) GetFollowingIDs(_ context.Context, userID uint) ([]uint, error) {
	return s.edgeTargets(s.following, userID), nil
}

func (s *Store) GetFollowerIDs(_ context.Context, userID uint) ([]uint, error) {
	return s.edgeTargets(s.followers, userID), nil
}

func (s *Store) edgeTargets(set map[edge]time.Time, userID uint) []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for e := range set {
		if e.from == userID {
			ids = append(ids, e.to)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := set[edge{userID, ids[i]}], set[edge{userID, ids[j]}]
		if ti.Equal(tj) {
			return ids[i] < ids[j]
		}
		return ti.Before(tj)
	})
	return ids
}

func (s *Store) CountFollowers(_ context.Context, userIDs []uint) (map[uint]int64, error) {
	return s.countEdges(s.followers, userIDs), nil
}

func (s *Store) CountFollowing(_ context.Context, userIDs []uint) (map[uint]int64, error) {
	return s.countEdges(s.following, userIDs), nil
}

func (s *Store) countEdges(set map[edge]time.Time, userIDs []uint) map[uint]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	counts := make(map[uint]int64, len(userIDs))
	for e := range set {
		if want[e.from] {
			counts[e.from]++
		}
	}
	return counts
}

// --- posts ---

func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = s.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	s.postSeq++
	s.posts[post.ID] = &storedPost{post: clonePost(*post), seq: s.postSeq}
	return nil
}

func (s *Store) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookupPost(id)
	if err != nil {
		return nil, err
	}
	p := clonePost(sp.post)
	return &p, nil
}

func (s *Store) lookupPost(id string) (*storedPost, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	sp, ok := s.posts[objID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return sp, nil
}

func (s *Store) GetPostsByIDs(_ context.Context, ids []string) (map[string]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Post, len(ids))
	for _, id := range ids {
		if sp, err := s.lookupPost(id); err == nil {
			out[sp.post.ID.Hex()] = clonePost(sp.post)
		}
	}
	return out, nil
}

func (s *Store) GetPostsByUserIDs(_ context.Context, userIDs []uint) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	var matched []*storedPost
	for _, sp := range s.posts {
		if want[sp.post.UserID] {
			matched = append(matched, sp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})
	posts := make([]models.Post, 0, len(matched))
	for _, sp := range matched {
		posts = append(posts, clonePost(sp.post))
	}
	return posts, nil
}

func (s *Store) AddLike(_ context.Context, postID string, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookupPost(postID)
	if err != nil {
		return false, err
	}
	if sp.post.LikedBy(userID) {
		return false, nil
	}
	sp.post.Likes = append(sp.post.Likes, userID)
	sp.post.UpdatedAt = s.Now()
	return true, nil
}

func (s *Store) RemoveLike(_ context.Context, postID string, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookupPost(postID)
	if err != nil {
		return false, err
	}
	for i, id := range sp.post.Likes {
		if id == userID {
			sp.post.Likes = append(sp.post.Likes[:i:i], sp.post.Likes[i+1:]...)
			sp.post.UpdatedAt = s.Now()
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AppendComment(_ context.Context, postID string, comment models.Comment) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookupPost(postID)
	if err != nil {
		return nil, err
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = s.Now()
	}
	sp.post.Comments = append(sp.post.Comments, comment)
	sp.post.UpdatedAt = s.Now()
	p := clonePost(sp.post)
	return &p, nil
}

func (s *Store) EnsureIndexes(context.Context) error { return nil }

func clonePost(p models.Post) models.Post {
	p.Likes = append([]uint{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

// --- notifications ---

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.NotificationErr != nil {
		return s.NotificationErr
	}
	n.ID = uint(len(s.notifications) + 1)
	n.CreatedAt = s.Now()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *Store) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			found := n
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetByRecipientID(_ context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if s.notifications[i].RecipientID == recipientID {
			out = append(out, s.notifications[i])
		}
	}
	return out, nil
}

func (s *Store) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkAsRead(_ context.Context, notificationID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == notificationID {
			s.notifications[i].IsRead = true
		}
	}
	return nil
}

func (s *Store) MarkAllAsRead(_ context.Context, recipientID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.notifications {
		if s.notifications[i].RecipientID == recipientID && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

// Notifications returns every stored notification in creation order.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}
