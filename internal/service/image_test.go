package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrybase/recipe-api/internal/service"
)

func TestLocalImageStoreSave(t *testing.T) {
	root := t.TempDir()
	store := service.NewLocalImageStore(root, "/media")

	err := store.Save(context.Background(), "recipe-images/test.png", pngHeader, "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "recipe-images", "test.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestLocalImageStoreDelete(t *testing.T) {
	root := t.TempDir()
	store := service.NewLocalImageStore(root, "/media")

	require.NoError(t, store.Save(context.Background(), "recipe-images/test.png", pngHeader, "image/png"))
	require.NoError(t, store.Delete(context.Background(), "recipe-images/test.png"))

	_, err := os.Stat(filepath.Join(root, "recipe-images", "test.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalImageStoreDeleteMissing(t *testing.T) {
	store := service.NewLocalImageStore(t.TempDir(), "/media")
	assert.NoError(t, store.Delete(context.Background(), "recipe-images/gone.png"))
}

func TestLocalImageStoreURL(t *testing.T) {
	store := service.NewLocalImageStore(t.TempDir(), "/media")
	assert.Equal(t, "/media/recipe-images/test.png", store.URL("recipe-images/test.png"))
}
