// Package users provides database operations for account management.
//
// Emails are the login key: they are normalized to lowercase before storage
// and lookup, so "User@Example.com" and "user@example.com" address the same
// account.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(email)
package users

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/aniping/aniping/internal/database"
	"github.com/aniping/aniping/internal/entities"
)

var (
	// ErrEmailExists is returned when an account with the same email is
	// already registered.
	ErrEmailExists = errors.New("email already registered")

	// ErrNotFound is returned when no account matches the lookup key.
	ErrNotFound = errors.New("user not found")
)

// Repository handles all account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeEmail applies the storage-level email case policy.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new account. passwordHash must already be a bcrypt hash;
// the raw secret never reaches this layer. Duplicate emails are rejected
// with ErrEmailExists.
func (r *Repository) Create(username, email, passwordHash string) (*entities.User, error) {
	email = NormalizeEmail(email)

	var existing entities.User
	err := r.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := r.db.Create(user).Error; err != nil {
		// The existence check above is not atomic with the insert, so a
		// concurrent registration can still hit the unique email index.
		if database.IsUniqueConstraintViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves an account by its login email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves an account by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

// GetByTokenHash retrieves an account by the hash of its API token.
func (r *Repository) GetByTokenHash(tokenHash string) (*entities.User, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	var user entities.User
	err := r.db.Where("token_hash = ?", tokenHash).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user by token: %w", err)
	}
	return &user, nil
}

// Update persists changed account fields (token hash, last login time).
func (r *Repository) Update(user *entities.User) error {
	return r.db.Save(user).Error
}
