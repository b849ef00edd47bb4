package repository

import (
	"context"
	"sync"

	"labtrack-data/internal/domain"
)

// MemoryUsersRepository is an in-memory UsersRepository for dev fallback and
// tests.
type MemoryUsersRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*domain.User
}

func NewMemoryUsersRepository() *MemoryUsersRepository {
	return &MemoryUsersRepository{
		nextID: 1,
		users:  map[int64]*domain.User{},
	}
}

var _ UsersRepository = (*MemoryUsersRepository)(nil)

func (r *MemoryUsersRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *MemoryUsersRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsersRepository) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return 0, ErrDuplicateKey
		}
	}
	id := r.nextID
	r.nextID++
	copied := *user
	copied.ID = id
	r.users[id] = &copied
	return id, nil
}

func (r *MemoryUsersRepository) UpdatePassword(ctx context.Context, id int64, passwordHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = append([]byte(nil), passwordHash...)
	return nil
}
