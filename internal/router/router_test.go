package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pantrybase/recipe-api/internal/api"
	"github.com/pantrybase/recipe-api/internal/router"
	"github.com/pantrybase/recipe-api/internal/service"
	"github.com/pantrybase/recipe-api/internal/testhelpers"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.OpenTestDB(t)

	auth := service.NewAuthService(db, "test-secret")
	recipes := service.NewRecipeService(db, nil)
	engine := router.Setup(
		db,
		api.NewAuthHandler(auth),
		api.NewRecipeHandler(recipes, nil),
		api.NewTagHandler(service.NewTagService(db)),
		api.NewIngredientHandler(service.NewIngredientService(db)),
		auth,
	)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.OpenTestDB(t)

	auth := service.NewAuthService(db, "test-secret")
	engine := router.Setup(
		db,
		api.NewAuthHandler(auth),
		api.NewRecipeHandler(service.NewRecipeService(db, nil), nil),
		api.NewTagHandler(service.NewTagService(db)),
		api.NewIngredientHandler(service.NewIngredientService(db)),
		auth,
	)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
