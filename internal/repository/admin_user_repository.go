package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

// ErrEmailTaken is returned when an admin account already uses the email.
var ErrEmailTaken = fmt.Errorf("email already registered")

// AdminUserRepository persists admin accounts in the document store.
type AdminUserRepository struct {
	store DocumentStore
}

// NewAdminUserRepository constructs the repository.
func NewAdminUserRepository(store DocumentStore) *AdminUserRepository {
	return &AdminUserRepository{store: store}
}

// FindByEmail looks an account up by its lower-cased email.
func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	docs, err := r.store.Query(ctx, models.DocumentQuery{
		Collection: models.CollectionAdminUsers,
		Filters:    []models.Filter{{Field: "email", Value: strings.ToLower(strings.TrimSpace(email))}},
	})
	if err != nil {
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrDocumentNotFound
	}
	var user models.AdminUser
	if err := docs[0].Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID fetches an account.
func (r *AdminUserRepository) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	doc, err := r.store.Get(ctx, models.CollectionAdminUsers, id)
	if err != nil {
		return nil, err
	}
	var user models.AdminUser
	if err := doc.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create stores a new account, rejecting duplicate emails.
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, err := r.FindByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	} else if err != ErrDocumentNotFound {
		return err
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = models.Now()
	}
	fields, err := models.ToFields(user)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, models.CollectionAdminUsers, fields)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	user.ID = id
	return nil
}

// UpdatePassword replaces the stored hash.
func (r *AdminUserRepository) UpdatePassword(ctx context.Context, id, hash string, at models.Timestamp) error {
	return r.store.Update(ctx, models.CollectionAdminUsers, id, models.Fields{
		"passwordHash": hash,
		"updatedAt":    at.String(),
	})
}

// UpdateLastLogin stamps the last successful sign-in.
func (r *AdminUserRepository) UpdateLastLogin(ctx context.Context, id string, at models.Timestamp) error {
	return r.store.Update(ctx, models.CollectionAdminUsers, id, models.Fields{"lastLogin": at.String()})
}
