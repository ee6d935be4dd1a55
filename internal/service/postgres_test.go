package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrybase/recipe-api/internal/database"
	"github.com/pantrybase/recipe-api/internal/models"
	"github.com/pantrybase/recipe-api/internal/service"
	"github.com/pantrybase/recipe-api/internal/testhelpers"
)

// Runs the full recipe lifecycle against a containerized PostgreSQL with the
// SQL migrations applied, so column types like numeric(5,2) are the real ones.
func TestRecipeLifecyclePostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	require.NoError(t, database.RunMigrations(db, "../../migrations"))

	auth := service.NewAuthService(db, "test-secret")
	svc := service.NewRecipeService(db, nil)

	user, err := auth.CreateUser("Test User", "test@example.com", "testpass123")
	require.NoError(t, err)

	recipe := &models.Recipe{
		Title:       "Thai prawn curry",
		TimeMinutes: 40,
		Price:       decimal.RequireFromString("12.50"),
	}
	created, err := svc.Create(context.Background(), user.ID, recipe,
		[]service.NamedRef{{Name: "Thai"}, {Name: "Dinner"}},
		[]service.NamedRef{{Name: "Prawns"}})
	require.NoError(t, err)
	require.Len(t, created.Tags, 2)
	require.Len(t, created.Ingredients, 1)

	fetched, err := svc.Get(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.50").Equal(fetched.Price))

	empty := []service.NamedRef{}
	updated, err := svc.Update(context.Background(), user.ID, created.ID, service.RecipeUpdate{Tags: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)

	require.NoError(t, svc.Delete(context.Background(), user.ID, created.ID))

	recipes, err := svc.List(context.Background(), user.ID, service.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, recipes)

	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.Equal(t, int64(2), tagCount)
}
