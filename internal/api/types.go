package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrybase/recipe-api/internal/models"
	"github.com/pantrybase/recipe-api/internal/service"
)

func init() {
	// Report validation errors under the JSON field names clients sent.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// TagResponse is the serialized form of a tag.
type TagResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// IngredientResponse is the serialized form of an ingredient.
type IngredientResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// RecipeSummary is the listing shape of a recipe.
type RecipeSummary struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       decimal.Decimal      `json:"price"`
	Link        string               `json:"link"`
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
}

// RecipeDetail adds the fields only single-recipe responses carry.
type RecipeDetail struct {
	RecipeSummary
	Description string `json:"description"`
	Image       string `json:"image"`
}

func newTagResponse(t models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name}
}

func newIngredientResponse(i models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name}
}

func newRecipeSummary(r models.Recipe) RecipeSummary {
	tags := make([]TagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, newTagResponse(t))
	}
	ingredients := make([]IngredientResponse, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ingredients = append(ingredients, newIngredientResponse(i))
	}
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func newRecipeDetail(r models.Recipe, imageURL string) RecipeDetail {
	return RecipeDetail{
		RecipeSummary: newRecipeSummary(r),
		Description:   r.Description,
		Image:         imageURL,
	}
}

// bindingError flattens validator errors into field-level messages.
func bindingError(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		return gin.H{"errors": fields}
	}
	return gin.H{"error": err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	default:
		return "invalid value"
	}
}

func fieldError(field, message string) gin.H {
	return gin.H{"errors": map[string]string{field: message}}
}

func namedRefs(refs *[]namedRefRequest) []service.NamedRef {
	if refs == nil {
		return nil
	}
	out := make([]service.NamedRef, 0, len(*refs))
	for _, ref := range *refs {
		out = append(out, service.NamedRef{Name: ref.Name})
	}
	return out
}

func namedRefsPtr(refs *[]namedRefRequest) *[]service.NamedRef {
	if refs == nil {
		return nil
	}
	out := namedRefs(refs)
	return &out
}
