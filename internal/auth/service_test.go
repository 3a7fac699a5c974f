package auth

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aniping/aniping/internal/config"
	"github.com/aniping/aniping/internal/database/users"
	"github.com/aniping/aniping/internal/entities"
)

func setupTestService(t *testing.T) (*Service, func()) {
	dbPath := "./test_auth_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	svc := NewService(users.NewRepository(db), config.Auth{BcryptCost: bcrypt.MinCost})

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return svc, cleanup
}

func TestService_CreateAccount(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.CreateAccount("testuser", "test@email.com", "testpassword")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "test@email.com", user.Email)
	assert.NotEqual(t, "testpassword", user.PasswordHash)
}

func TestService_CreateAccount_DuplicateEmail(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateAccount("testuser", "test@email.com", "testpassword")
	require.NoError(t, err)

	_, err = svc.CreateAccount("other", "test@email.com", "otherpassword")

	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestService_CreateAccount_Validation(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateAccount("", "test@email.com", "testpassword")
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = svc.CreateAccount("testuser", "", "testpassword")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.CreateAccount("testuser", "test@email.com", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = svc.CreateAccount("testuser", "not-an-email", "testpassword")
	assert.ErrorIs(t, err, ErrEmailInvalid)

	_, err = svc.CreateAccount("testuser", "test@email.com", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_Authenticate(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateAccount("testuser", "test@email.com", "testpassword")
	require.NoError(t, err)

	user, err := svc.Authenticate("test@email.com", "testpassword")

	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	require.NotNil(t, user.LastLoginAt)
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateAccount("testuser", "test@email.com", "testpassword")
	require.NoError(t, err)

	_, err = svc.Authenticate("test@email.com", "wrongpass")

	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestService_Authenticate_UnknownEmail(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.Authenticate("nouser@email.com", "testpassword")

	assert.ErrorIs(t, err, ErrEmailNotFound)
}

func TestService_Authenticate_EmailCaseInsensitive(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateAccount("testuser", "Test@Email.com", "testpassword")
	require.NoError(t, err)

	user, err := svc.Authenticate("test@EMAIL.com", "testpassword")

	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
}

func TestService_TokenRoundTrip(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	created, err := svc.CreateAccount("testuser", "test@email.com", "testpassword")
	require.NoError(t, err)

	token, err := svc.GenerateToken(created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := svc.GetUserByToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// Only the hash is stored.
	assert.NotEqual(t, token, user.TokenHash)
	assert.Equal(t, HashToken(token), user.TokenHash)
}

func TestService_GetUserByToken_Invalid(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.GetUserByToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.GetUserByToken("not-a-real-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_GenerateToken_ReplacesPrevious(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	created, err := svc.CreateAccount("testuser", "test@email.com", "testpassword")
	require.NoError(t, err)

	first, err := svc.GenerateToken(created.ID)
	require.NoError(t, err)

	second, err := svc.GenerateToken(created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// The old token no longer resolves.
	_, err = svc.GetUserByToken(first)
	assert.ErrorIs(t, err, ErrInvalidToken)

	user, err := svc.GetUserByToken(second)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}
