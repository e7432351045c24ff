package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"blogmanity/internal/domain"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
)

// In-memory repositories backing the service tests. They honor the same
// sentinel error contract as the sqlite implementations.

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}}
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return 0, repository.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, d query.Directives) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.users {
		if id != user.ID && other.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	clone := *user
	clone.CreatedAt = stored.CreatedAt
	clone.UpdatedAt = time.Now()
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) SetPassword(ctx context.Context, id int64, hash string, changedAt time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.ResetTokenHash = tokenHash
	user.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearResetToken(ctx context.Context, id int64) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Active = active
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakePocketRepo struct {
	nextID  int64
	byUser  map[int64]*domain.Pocket
	entries map[int64]map[int64]struct{} // pocket id -> post ids
}

func newFakePocketRepo() *fakePocketRepo {
	return &fakePocketRepo{
		byUser:  map[int64]*domain.Pocket{},
		entries: map[int64]map[int64]struct{}{},
	}
}

func (r *fakePocketRepo) Init(ctx context.Context) error { return nil }

func (r *fakePocketRepo) Create(ctx context.Context, userID int64) (int64, error) {
	if _, ok := r.byUser[userID]; ok {
		return 0, repository.ErrDuplicate
	}
	r.nextID++
	r.byUser[userID] = &domain.Pocket{ID: r.nextID, UserID: userID}
	r.entries[r.nextID] = map[int64]struct{}{}
	return r.nextID, nil
}

func (r *fakePocketRepo) GetByUser(ctx context.Context, userID int64) (*domain.Pocket, error) {
	pocket, ok := r.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *pocket
	return &clone, nil
}

func (r *fakePocketRepo) Contains(ctx context.Context, pocketID, postID int64) (bool, error) {
	_, ok := r.entries[pocketID][postID]
	return ok, nil
}

func (r *fakePocketRepo) AddPost(ctx context.Context, pocketID, postID int64) error {
	posts, ok := r.entries[pocketID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, dup := posts[postID]; dup {
		return repository.ErrDuplicate
	}
	posts[postID] = struct{}{}
	return nil
}

func (r *fakePocketRepo) RemovePost(ctx context.Context, pocketID, postID int64) error {
	posts, ok := r.entries[pocketID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(posts, postID)
	return nil
}

type fakePostRepo struct {
	nextID int64
	posts  map[int64]*domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int64]*domain.Post{}}
}

func (r *fakePostRepo) Init(ctx context.Context) error { return nil }

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post) (int64, error) {
	r.nextID++
	post.ID = r.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	clone := *post
	r.posts[post.ID] = &clone
	return post.ID, nil
}

func (r *fakePostRepo) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *post
	return &clone, nil
}

func (r *fakePostRepo) List(ctx context.Context, d query.Directives, onlyValidated bool) ([]domain.Post, error) {
	var out []domain.Post
	for _, post := range r.posts {
		if onlyValidated && !post.Validated {
			continue
		}
		out = append(out, *post)
	}
	return out, nil
}

func (r *fakePostRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	var out []domain.Post
	for _, post := range r.posts {
		if post.UserID == userID {
			out = append(out, *post)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *domain.Post) error {
	if _, ok := r.posts[post.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *post
	clone.UpdatedAt = time.Now()
	r.posts[post.ID] = &clone
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type fakeFeedbackRepo struct {
	nextID  int64
	entries map[int64]*domain.Feedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{entries: map[int64]*domain.Feedback{}}
}

func (r *fakeFeedbackRepo) Init(ctx context.Context) error { return nil }

func (r *fakeFeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) (int64, error) {
	r.nextID++
	fb.ID = r.nextID
	fb.CreatedAt = time.Now()
	fb.UpdatedAt = fb.CreatedAt
	clone := *fb
	r.entries[fb.ID] = &clone
	return fb.ID, nil
}

func (r *fakeFeedbackRepo) Get(ctx context.Context, id int64) (*domain.Feedback, error) {
	fb, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *fb
	return &clone, nil
}

func (r *fakeFeedbackRepo) ListByPost(ctx context.Context, postID int64, d query.Directives) ([]domain.Feedback, error) {
	return r.AllByPost(ctx, postID)
}

func (r *fakeFeedbackRepo) AllByPost(ctx context.Context, postID int64) ([]domain.Feedback, error) {
	var out []domain.Feedback
	for _, fb := range r.entries {
		if fb.PostID == postID {
			out = append(out, *fb)
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) HasLike(ctx context.Context, userID, postID int64) (bool, error) {
	for _, fb := range r.entries {
		if fb.UserID == userID && fb.PostID == postID && fb.Type == domain.FeedbackLike {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFeedbackRepo) Update(ctx context.Context, fb *domain.Feedback) error {
	if _, ok := r.entries[fb.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *fb
	clone.UpdatedAt = time.Now()
	r.entries[fb.ID] = &clone
	return nil
}

func (r *fakeFeedbackRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	sent []string // delivered bodies
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, body)
	return nil
}

// lastResetSecret digs the reset secret out of the most recent mail body.
func (m *fakeMailer) lastResetSecret() string {
	if len(m.sent) == 0 {
		return ""
	}
	body := m.sent[len(m.sent)-1]
	idx := strings.LastIndex(body, "/")
	if idx < 0 {
		return ""
	}
	return body[idx+1:]
}
