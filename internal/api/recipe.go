package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pantrybase/recipe-api/internal/middleware"
	"github.com/pantrybase/recipe-api/internal/models"
	"github.com/pantrybase/recipe-api/internal/service"
)

// maxImageSize caps uploaded recipe images at 5 MiB.
const maxImageSize = 5 << 20

type RecipeHandler struct {
	recipes     *service.RecipeService
	rateLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipes *service.RecipeService, rateLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		rateLimiter: rateLimiter,
	}
}

type namedRefRequest struct {
	Name string `json:"name" binding:"required"`
}

type createRecipeRequest struct {
	Title       string             `json:"title" binding:"required"`
	TimeMinutes *int               `json:"time_minutes" binding:"required,min=0"`
	Price       *decimal.Decimal   `json:"price" binding:"required"`
	Description string             `json:"description"`
	Link        string             `json:"link"`
	Tags        *[]namedRefRequest `json:"tags" binding:"omitempty,dive"`
	Ingredients *[]namedRefRequest `json:"ingredients" binding:"omitempty,dive"`
}

type updateRecipeRequest struct {
	Title       *string            `json:"title"`
	TimeMinutes *int               `json:"time_minutes" binding:"omitempty,min=0"`
	Price       *decimal.Decimal   `json:"price"`
	Description *string            `json:"description"`
	Link        *string            `json:"link"`
	Tags        *[]namedRefRequest `json:"tags" binding:"omitempty,dive"`
	Ingredients *[]namedRefRequest `json:"ingredients" binding:"omitempty,dive"`
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.POST("", h.Create)
		recipes.GET("/:id", h.Get)
		recipes.PUT("/:id", h.Update)
		recipes.PATCH("/:id", h.Update)
		recipes.DELETE("/:id", h.Delete)

		if h.rateLimiter != nil {
			recipes.POST("/:id/upload-image", h.rateLimiter.RateLimitMiddleware(), h.UploadImage)
		} else {
			recipes.POST("/:id/upload-image", h.UploadImage)
		}
	}
}

func (h *RecipeHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var filter service.RecipeFilter
	var err error
	if filter.TagIDs, err = parseIDList(c.Query("tags")); err != nil {
		c.JSON(http.StatusBadRequest, fieldError("tags", "invalid id list"))
		return
	}
	if filter.IngredientIDs, err = parseIDList(c.Query("ingredients")); err != nil {
		c.JSON(http.StatusBadRequest, fieldError("ingredients", "invalid id list"))
		return
	}

	recipes, err := h.recipes.List(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	summaries := make([]RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		summaries = append(summaries, newRecipeSummary(r))
	}

	c.JSON(http.StatusOK, gin.H{"recipes": summaries})
}

func (h *RecipeHandler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecipeDetail(*recipe, h.recipes.ImageURL(recipe)))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	if msg := priceMessage(*req.Price); msg != "" {
		c.JSON(http.StatusBadRequest, fieldError("price", msg))
		return
	}

	recipe := &models.Recipe{
		Title:       req.Title,
		TimeMinutes: *req.TimeMinutes,
		Price:       *req.Price,
		Description: req.Description,
		Link:        req.Link,
	}

	created, err := h.recipes.Create(c.Request.Context(), userID, recipe, namedRefs(req.Tags), namedRefs(req.Ingredients))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, newRecipeDetail(*created, h.recipes.ImageURL(created)))
}

// Update serves both PUT and PATCH. Only keys present in the payload change;
// a present tags/ingredients key replaces that whole association set.
func (h *RecipeHandler) Update(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var upd service.RecipeUpdate
	if c.Request.Method == http.MethodPut {
		var req createRecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindingError(err))
			return
		}
		if msg := priceMessage(*req.Price); msg != "" {
			c.JSON(http.StatusBadRequest, fieldError("price", msg))
			return
		}
		upd = service.RecipeUpdate{
			Title:       &req.Title,
			TimeMinutes: req.TimeMinutes,
			Price:       req.Price,
			Description: &req.Description,
			Link:        &req.Link,
			Tags:        namedRefsPtr(req.Tags),
			Ingredients: namedRefsPtr(req.Ingredients),
		}
	} else {
		var req updateRecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindingError(err))
			return
		}
		if req.Price != nil {
			if msg := priceMessage(*req.Price); msg != "" {
				c.JSON(http.StatusBadRequest, fieldError("price", msg))
				return
			}
		}
		upd = service.RecipeUpdate{
			Title:       req.Title,
			TimeMinutes: req.TimeMinutes,
			Price:       req.Price,
			Description: req.Description,
			Link:        req.Link,
			Tags:        namedRefsPtr(req.Tags),
			Ingredients: namedRefsPtr(req.Ingredients),
		}
	}

	recipe, err := h.recipes.Update(c.Request.Context(), userID, id, upd)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecipeDetail(*recipe, h.recipes.ImageURL(recipe)))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		h.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, fieldError("image", "no file was submitted"))
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, fieldError("image", "file too large"))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, fieldError("image", "could not read uploaded file"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, fieldError("image", "could not read uploaded file"))
		return
	}

	recipe, err := h.recipes.UploadImage(c.Request.Context(), userID, id, file.Filename, data)
	if err != nil {
		if errors.Is(err, service.ErrNotAnImage) {
			c.JSON(http.StatusBadRequest, fieldError("image", "upload a valid image"))
			return
		}
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecipeDetail(*recipe, h.recipes.ImageURL(recipe)))
}

func (h *RecipeHandler) renderError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// maxPrice is the first value the price column, numeric(5,2), cannot hold.
var maxPrice = decimal.New(1000, 0)

// priceMessage validates a price against the column constraints and returns
// the rejection message, or "" when the value fits.
func priceMessage(price decimal.Decimal) string {
	switch {
	case price.IsNegative():
		return "must not be negative"
	case price.Exponent() < -2:
		return "no more than 2 decimal places allowed"
	case price.GreaterThanOrEqual(maxPrice):
		return "must be less than 1000"
	}
	return ""
}

// parseIDList parses a comma-separated list of uuids from a query parameter.
func parseIDList(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
