package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pantrybase/recipe-api/internal/models"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"test1@EXAMPLE.com", "test1@example.com"},
		{"Test2@Example.com", "Test2@example.com"},
		{"TEST3@EXAMPLE.com", "TEST3@example.com"},
		{"test4@example.COM", "test4@example.com"},
		{"test5@example.com", "test5@example.com"},
	}

	for _, tc := range cases {
		got, err := models.NormalizeEmail(tc.input)
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, got)
	}
}

func TestNormalizeEmailEmpty(t *testing.T) {
	_, err := models.NormalizeEmail("")
	assert.ErrorIs(t, err, models.ErrEmailRequired)
}

func TestTagString(t *testing.T) {
	tag := models.Tag{Name: "Vegan"}
	assert.Equal(t, "Vegan", tag.String())
}

func TestIngredientString(t *testing.T) {
	ing := models.Ingredient{Name: "Cucumber"}
	assert.Equal(t, "Cucumber", ing.String())
}

func TestRecipeString(t *testing.T) {
	recipe := models.Recipe{Title: "Steak and mushroom sauce"}
	assert.Equal(t, "Steak and mushroom sauce", recipe.String())
}
