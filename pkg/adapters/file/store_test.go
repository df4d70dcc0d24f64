package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/psdrun/pkg/adapters/file"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestFileHintStore_Contract(t *testing.T) {
	ports.RunHintStoreContract(t, file.NewHintStore(t.TempDir()))
}

func TestFileStore_ListIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.NewSnapshot("a")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-123-b.json"), []byte("{}"), 0o644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	ids, err := file.New(filepath.Join(t.TempDir(), "missing")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileHintStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.NewHintStore(dir)
	ctx := context.Background()

	require.NoError(t, store.SaveHints(ctx, "designs/menu.psd", domain.NewHintSet()))
	require.NoError(t, store.SaveAPIKey(ctx, "sk-1"))

	raw, err := os.ReadFile(filepath.Join(dir, "designs_menu.psd.hints.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"qtpsdparser.hint": 1`)

	info, err := os.Stat(filepath.Join(dir, "apikey"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
