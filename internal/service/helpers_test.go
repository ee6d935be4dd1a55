package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pantrybase/recipe-api/internal/models"
	"github.com/pantrybase/recipe-api/internal/service"
	"github.com/pantrybase/recipe-api/internal/testhelpers"
)

// pngHeader is the magic byte sequence of a PNG file, enough for content
// sniffing to classify the payload as an image.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	auth := service.NewAuthService(db, "test-secret")
	user, err := auth.CreateUser("Test User", email, "testpass123")
	require.NoError(t, err)
	return user
}

func createTestRecipe(t *testing.T, svc *service.RecipeService, userID uuid.UUID, title string, tags, ingredients []service.NamedRef) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Title:       title,
		TimeMinutes: 10,
		Price:       decimal.RequireFromString("5.50"),
	}
	created, err := svc.Create(context.Background(), userID, recipe, tags, ingredients)
	require.NoError(t, err)
	return created
}

func newRecipeService(t *testing.T) (*service.RecipeService, *gorm.DB, string) {
	t.Helper()

	db := testhelpers.OpenTestDB(t)
	mediaDir := t.TempDir()
	store := service.NewLocalImageStore(mediaDir, "/media")
	return service.NewRecipeService(db, store), db, mediaDir
}
