package graph

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"lireddit/internal/models"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.User
	failOn error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{rows: map[uint]models.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != nil {
		return nil, models.NewInternalError(r.failOn)
	}
	u, ok := r.rows[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return &u, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != nil {
		return models.NewInternalError(r.failOn)
	}
	for _, u := range r.rows {
		if u.Username == user.Username {
			return models.NewConflictError("username already exists", errors.New("23505"))
		}
	}
	r.nextID++
	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.rows[user.ID] = *user
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.UpdatedAt = time.Now().UTC()
	r.rows[user.ID] = *user
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.rows))
	for _, u := range r.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memPostRepo struct {
	mu       sync.Mutex
	nextID   uint
	rows     map[uint]models.Post
	failures error
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{rows: map[uint]models.Post{}}
}

func (r *memPostRepo) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	post.ID = r.nextID
	post.CreatedAt = now
	post.UpdatedAt = now
	r.rows[post.ID] = *post
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &p, nil
}

func (r *memPostRepo) List(_ context.Context) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Post, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPostRepo) Update(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.UpdatedAt = time.Now().UTC()
	r.rows[post.ID] = *post
	return nil
}

func (r *memPostRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures != nil {
		return r.failures
	}
	delete(r.rows, id)
	return nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, string) bool { return false }
