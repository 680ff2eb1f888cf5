package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"task-api/domain/models"
	"task-api/domain/repositories"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repositories.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if r.conflictLocked(user) {
		return repositories.ErrDuplicate
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.users[user.ID] = copyUser(user)
	return nil
}

// conflictLocked reports whether another user already holds user's unique keys.
func (r *UserRepository) conflictLocked(user *models.User) bool {
	for id, u := range r.store.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return true
		}
		if user.IsGoogleUser() && u.IsGoogleUser() && *u.GoogleID == *user.GoogleID {
			return true
		}
	}
	return false
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.IsGoogleUser() && *u.GoogleID == googleID })
}

func (r *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.conflictLocked(user) {
		return repositories.ErrDuplicate
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	r.store.users[user.ID] = copyUser(user)
	return nil
}

// Delete removes the user and cascades to their tasks.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.users, id)
	r.store.deleteTasksLocked(id)
	return nil
}
