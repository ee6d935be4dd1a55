package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrybase/recipe-api/internal/models"
)

// TagService handles tag operations, scoped to the owning user.
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// List returns the user's tags in reverse name order. With assignedOnly set,
// only tags referenced by at least one of the user's recipes are returned,
// each at most once.
func (s *TagService) List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]models.Tag, error) {
	query := s.db.WithContext(ctx).Model(&models.Tag{}).Where("tags.user_id = ?", userID)

	if assignedOnly {
		query = query.Joins("JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
			Joins("JOIN recipes ON recipes.id = recipe_tags.recipe_id").
			Where("recipes.user_id = ?", userID)
	}

	var tags []models.Tag
	if err := query.Distinct("tags.*").Order("tags.name DESC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Update renames one of the user's tags.
func (s *TagService) Update(ctx context.Context, userID, id uuid.UUID, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&tag).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&tag).Update("name", name).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Delete removes one of the user's tags. Recipes referencing it lose the
// association only.
func (s *TagService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&tag).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}
