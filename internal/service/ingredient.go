package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrybase/recipe-api/internal/models"
)

// IngredientService mirrors TagService for ingredients.
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

func (s *IngredientService) List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("ingredients.user_id = ?", userID)

	if assignedOnly {
		query = query.Joins("JOIN recipe_ingredients ON recipe_ingredients.ingredient_id = ingredients.id").
			Joins("JOIN recipes ON recipes.id = recipe_ingredients.recipe_id").
			Where("recipes.user_id = ?", userID)
	}

	var ingredients []models.Ingredient
	if err := query.Distinct("ingredients.*").Order("ingredients.name DESC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *IngredientService) Update(ctx context.Context, userID, id uuid.UUID, name string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&ingredient).Update("name", name).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (s *IngredientService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&ingredient).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_ingredients WHERE ingredient_id = ?", ingredient.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&ingredient).Error
	})
}
