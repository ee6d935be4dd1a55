package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pantrybase/recipe-api/internal/models"
	"github.com/pantrybase/recipe-api/internal/service"
	"github.com/pantrybase/recipe-api/internal/testhelpers"
)

func TestCreateUser(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	user, err := auth.CreateUser("Test User", "Test@EXAMPLE.com", "testpass123")
	require.NoError(t, err)

	assert.Equal(t, "Test@example.com", user.Email)
	assert.Equal(t, "Test User", user.Name)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("testpass123")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	_, err := auth.CreateUser("First", "test@example.com", "testpass123")
	require.NoError(t, err)

	_, err = auth.CreateUser("Second", "test@example.com", "otherpass456")
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestCreateUserEmptyEmail(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	_, err := auth.CreateUser("Test User", "", "testpass123")
	assert.ErrorIs(t, err, models.ErrEmailRequired)
}

func TestCreateSuperuser(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	user, err := auth.CreateSuperuser("Admin", "admin@example.com", "testpass123")
	require.NoError(t, err)

	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.IsStaff)
	assert.True(t, stored.IsSuperuser)
}

func TestLogin(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	user, err := auth.CreateUser("Test User", "test@example.com", "testpass123")
	require.NoError(t, err)

	token, err := auth.Login("test@EXAMPLE.com", "testpass123")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	_, err := auth.CreateUser("Test User", "test@example.com", "testpass123")
	require.NoError(t, err)

	_, err = auth.Login("test@example.com", "wrongpass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	_, err := auth.Login("nobody@example.com", "testpass123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	user, err := auth.CreateUser("Test User", "test@example.com", "testpass123")
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = auth.Login("test@example.com", "testpass123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	db := testhelpers.OpenTestDB(t)
	auth := service.NewAuthService(db, "test-secret")
	other := service.NewAuthService(db, "other-secret")

	user, err := auth.CreateUser("Test User", "test@example.com", "testpass123")
	require.NoError(t, err)

	token, err := other.GenerateToken(user.ID)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}
