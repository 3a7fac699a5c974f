package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aniping/aniping/internal/config"
	"github.com/aniping/aniping/internal/database/users"
	"github.com/aniping/aniping/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_. -]{2,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrEmailExists      = errors.New("an account with this email already exists")
	ErrEmailNotFound    = errors.New("no account found for this email")
	ErrWrongPassword    = errors.New("wrong password")
	ErrInvalidToken     = errors.New("invalid token")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 2-64 characters")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// UserRepository defines the account storage operations the service needs.
type UserRepository interface {
	Create(username, email, passwordHash string) (*entities.User, error)
	GetByEmail(email string) (*entities.User, error)
	GetByID(id uint) (*entities.User, error)
	GetByTokenHash(tokenHash string) (*entities.User, error)
	Update(user *entities.User) error
}

var _ UserRepository = (*users.Repository)(nil)

// Service handles account creation and credential verification.
type Service struct {
	repo   UserRepository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo UserRepository, cfg config.Auth) *Service {
	return &Service{repo: repo, config: cfg}
}

// CreateAccount registers a new user. The password is stored only as a
// bcrypt hash. Registering an email twice fails with ErrEmailExists and
// leaves the stored account untouched.
func (s *Service) CreateAccount(username, email, password string) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}
	// RFC 5321 length limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(username, email, passwordHash)
	if errors.Is(err, users.ErrEmailExists) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the matching account.
// An unknown email fails with ErrEmailNotFound; a known email with a
// non-matching password fails with ErrWrongPassword. Everything else is a
// storage failure.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	user, err := s.repo.GetByEmail(email)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrEmailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrWrongPassword
		}
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.repo.Update(user); err != nil {
		// A failed last-login stamp must not fail the login itself.
		return user, nil
	}
	return user, nil
}

// GenerateToken issues a fresh API token for the user, replacing any
// previous one. The plaintext is returned exactly once.
func (s *Service) GenerateToken(userID uint) (string, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return "", err
	}

	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.TokenHash = hash
	if err := s.repo.Update(user); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return plaintext, nil
}

// GetUserByToken resolves an API bearer token to its account.
func (s *Service) GetUserByToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.repo.GetByTokenHash(HashToken(token))
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

// GetUserByID retrieves an account by id.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.repo.GetByID(id)
}
