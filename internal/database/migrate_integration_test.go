package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrybase/recipe-api/internal/database"
	"github.com/pantrybase/recipe-api/internal/testhelpers"
)

func TestRunMigrationsPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)

	require.NoError(t, database.RunMigrations(db, "../../migrations"))

	for _, table := range []string{"users", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients", "migrations"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}

	// A second run must skip everything already recorded.
	require.NoError(t, database.RunMigrations(db, "../../migrations"))

	var count int64
	require.NoError(t, db.Table("migrations").Where("name = ?", "0001_init.sql").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
