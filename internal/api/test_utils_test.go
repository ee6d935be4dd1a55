package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pantrybase/recipe-api/internal/api"
	"github.com/pantrybase/recipe-api/internal/models"
	"github.com/pantrybase/recipe-api/internal/router"
	"github.com/pantrybase/recipe-api/internal/service"
	"github.com/pantrybase/recipe-api/internal/testhelpers"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	auth    *service.AuthService
	recipes *service.RecipeService
	media   string
}

// newTestEnv wires the full HTTP surface against an in-memory database and a
// throwaway local image store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.OpenTestDB(t)
	media := t.TempDir()
	images := service.NewLocalImageStore(media, "/media")
	auth := service.NewAuthService(db, "test-secret")
	recipes := service.NewRecipeService(db, images)

	engine := router.Setup(
		db,
		api.NewAuthHandler(auth),
		api.NewRecipeHandler(recipes, nil),
		api.NewTagHandler(service.NewTagService(db)),
		api.NewIngredientHandler(service.NewIngredientService(db)),
		auth,
	)

	return &testEnv{router: engine, db: db, auth: auth, recipes: recipes, media: media}
}

func (e *testEnv) createUser(t *testing.T, email string) (*models.User, string) {
	t.Helper()

	user, err := e.auth.CreateUser("Test User", email, "testpass123")
	require.NoError(t, err)
	token, err := e.auth.GenerateToken(user.ID)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) createRecipe(t *testing.T, userID uuid.UUID, title string, tags, ingredients []string) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Title:       title,
		TimeMinutes: 22,
		Price:       decimal.RequireFromString("5.25"),
	}
	created, err := e.recipes.Create(context.Background(), userID, recipe, namedRefs(tags), namedRefs(ingredients))
	require.NoError(t, err)
	return created
}

func namedRefs(names []string) []service.NamedRef {
	refs := make([]service.NamedRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, service.NamedRef{Name: name})
	}
	return refs
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) uploadImage(t *testing.T, path, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
