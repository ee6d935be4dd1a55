package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantrybase/recipe-api/internal/models"
)

var (
	ErrNotAnImage   = errors.New("uploaded file is not an image")
	ErrNoImageStore = errors.New("image storage is not configured")
)

// NamedRef is a nested tag or ingredient reference in a recipe payload.
type NamedRef struct {
	Name string
}

// RecipeFilter narrows a listing to recipes that intersect the given tag or
// ingredient ids.
type RecipeFilter struct {
	TagIDs        []uuid.UUID
	IngredientIDs []uuid.UUID
}

// RecipeUpdate carries the fields of a full or partial update. Nil fields are
// left untouched; a non-nil Tags/Ingredients slice replaces the whole
// association set, so an empty slice clears it.
type RecipeUpdate struct {
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Description *string
	Link        *string
	Tags        *[]NamedRef
	Ingredients *[]NamedRef
}

// RecipeService handles recipe operations. Every query is scoped to the
// owning user, so records of other users read as not found.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// List returns the user's recipes, newest first.
func (s *RecipeService) List(ctx context.Context, userID uuid.UUID, filter RecipeFilter) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("recipes.user_id = ?", userID)

	if len(filter.TagIDs) > 0 {
		query = query.Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Where("recipe_tags.tag_id IN ?", filter.TagIDs)
	}
	if len(filter.IngredientIDs) > 0 {
		query = query.Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = recipes.id").
			Where("recipe_ingredients.ingredient_id IN ?", filter.IngredientIDs)
	}

	var recipes []models.Recipe
	err := query.Distinct("recipes.*").
		Preload("Tags").
		Preload("Ingredients").
		Order("recipes.created_at DESC").
		Order("recipes.id").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Get retrieves one of the user's recipes by id.
func (s *RecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients").
		Where("user_id = ? AND id = ?", userID, id).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create persists the recipe for the given user. Nested tag and ingredient
// names are resolved to existing records of the same user or created, all in
// one transaction with the recipe itself.
func (s *RecipeService) Create(ctx context.Context, userID uuid.UUID, recipe *models.Recipe, tags, ingredients []NamedRef) (*models.Recipe, error) {
	recipe.UserID = userID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolvedTags, err := resolveTags(tx, userID, tags)
		if err != nil {
			return err
		}
		recipe.Tags = resolvedTags

		resolvedIngredients, err := resolveIngredients(tx, userID, ingredients)
		if err != nil {
			return err
		}
		recipe.Ingredients = resolvedIngredients

		return tx.Create(recipe).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, recipe.ID)
}

// Update applies a full or partial update to one of the user's recipes.
func (s *RecipeService) Update(ctx context.Context, userID, id uuid.UUID, upd RecipeUpdate) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&recipe).Error; err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if upd.Title != nil {
			fields["title"] = *upd.Title
		}
		if upd.TimeMinutes != nil {
			fields["time_minutes"] = *upd.TimeMinutes
		}
		if upd.Price != nil {
			fields["price"] = *upd.Price
		}
		if upd.Description != nil {
			fields["description"] = *upd.Description
		}
		if upd.Link != nil {
			fields["link"] = *upd.Link
		}
		if len(fields) > 0 {
			if err := tx.Model(&recipe).Updates(fields).Error; err != nil {
				return err
			}
		}

		if upd.Tags != nil {
			resolved, err := resolveTags(tx, userID, *upd.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&recipe).Association("Tags").Replace(&resolved); err != nil {
				return err
			}
		}
		if upd.Ingredients != nil {
			resolved, err := resolveIngredients(tx, userID, *upd.Ingredients)
			if err != nil {
				return err
			}
			if err := tx.Model(&recipe).Association("Ingredients").Replace(&resolved); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, id)
}

// Delete removes one of the user's recipes along with its association rows
// and stored image. Tags and ingredients themselves stay.
func (s *RecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&recipe).Error; err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Select(clause.Associations).Delete(&recipe).Error; err != nil {
		return err
	}

	if recipe.ImageKey != "" && s.images != nil {
		if err := s.images.Delete(ctx, recipe.ImageKey); err != nil {
			log.Printf("Failed to delete image %s: %v", recipe.ImageKey, err)
		}
	}

	return nil
}

// UploadImage validates and stores an image for one of the user's recipes.
// The stored key is a fresh uuid plus the original extension, so user-supplied
// file names never reach the storage backend.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id uuid.UUID, filename string, data []byte) (*models.Recipe, error) {
	if s.images == nil {
		return nil, ErrNoImageStore
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&recipe).Error; err != nil {
		return nil, err
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}

	key := recipeImageKey(filename)
	if err := s.images.Save(ctx, key, data, contentType); err != nil {
		return nil, err
	}

	previous := recipe.ImageKey
	if err := s.db.WithContext(ctx).Model(&recipe).Update("image_key", key).Error; err != nil {
		return nil, err
	}
	if previous != "" {
		if err := s.images.Delete(ctx, previous); err != nil {
			log.Printf("Failed to delete replaced image %s: %v", previous, err)
		}
	}

	return s.Get(ctx, userID, id)
}

// ImageURL returns the public URL for a recipe's image, or "" when it has none.
func (s *RecipeService) ImageURL(recipe *models.Recipe) string {
	if recipe.ImageKey == "" || s.images == nil {
		return ""
	}
	return s.images.URL(recipe.ImageKey)
}

func recipeImageKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return "recipe-images/" + uuid.New().String() + ext
}

// resolveTags maps nested name references to the user's tags, creating the
// ones that do not exist yet. Resolving the same names twice never creates
// duplicates.
func resolveTags(tx *gorm.DB, userID uuid.UUID, refs []NamedRef) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.Name]; ok {
			continue
		}
		seen[ref.Name] = struct{}{}

		var tag models.Tag
		if err := tx.Where(models.Tag{UserID: userID, Name: ref.Name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func resolveIngredients(tx *gorm.DB, userID uuid.UUID, refs []NamedRef) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.Name]; ok {
			continue
		}
		seen[ref.Name] = struct{}{}

		var ingredient models.Ingredient
		if err := tx.Where(models.Ingredient{UserID: userID, Name: ref.Name}).FirstOrCreate(&ingredient).Error; err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, nil
}
