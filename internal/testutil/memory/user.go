package memory

import (
	"context"
	"sync"
	"time"

	"it-asset-dashboard/internal/domain/user"
)

// UserRepository implements user.Repository.
type UserRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uint]user.User)}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return user.ErrUserAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) GetByID(_ context.Context, userID uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}
