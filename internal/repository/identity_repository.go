package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/strack-api/internal/models"
)

// IdentityRepository is an in-memory user directory standing in for the
// external identity provider. Emails are matched case-insensitively.
type IdentityRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

// NewIdentityRepository constructs an empty directory.
func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

// FindByEmail looks a user up by email.
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	user := *r.byID[id]
	return &user, nil
}

// FindByID looks a user up by ID.
func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	user := *u
	return &user, nil
}

// Create registers a user. The email must be unused.
func (r *IdentityRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	key := strings.ToLower(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[key]; exists {
		return fmt.Errorf("create user: email %s already registered", user.Email)
	}
	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[key] = user.ID
	return nil
}
