package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(sessionID)
		snap.Configured = true
		snap.CurrentScreen = "home"
		snap.ActivePopups = []string{"confirm"}
		snap.SelectedHighlights["tabs"] = "tab2"
		snap.DynamicTexts[7] = "-1"
		snap.SliderValues[9] = 3.5
		snap.Overrides[10] = true
		snap.Overrides[20] = false

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "home", loaded.CurrentScreen)
		assert.Equal(t, []string{"confirm"}, loaded.ActivePopups)
		assert.Equal(t, "tab2", loaded.SelectedHighlights["tabs"])
		assert.Equal(t, "-1", loaded.DynamicTexts[7])
		assert.InDelta(t, 3.5, loaded.SliderValues[9], 1e-9)
		assert.Equal(t, map[int]bool{10: true, 20: false}, loaded.Overrides)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.DynamicTexts[7] = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "-1", again.DynamicTexts[7])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSnapshot(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSnapshot(id1))
		_ = store.Save(ctx, id2, domain.NewSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunHintStoreContract verifies a HintStore implementation.
func RunHintStoreContract(t *testing.T, store HintStore) {
	ctx := context.Background()
	docKey := "contract-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load Hints", func(t *testing.T) {
		hints := domain.NewHintSet()
		hints.Set(12, domain.LayerHint{Type: domain.HintNative, Native: 2, Visible: true, Properties: []string{"text"}})
		hints.Set(14, domain.LayerHint{Type: domain.HintSkip, Visible: false})

		require.NoError(t, store.SaveHints(ctx, docKey, hints))

		loaded, err := store.LoadHints(ctx, docKey)
		require.NoError(t, err)
		assert.Equal(t, domain.HintFormatVersion, loaded.Version)
		assert.Len(t, loaded.Layers, 2)
		assert.Equal(t, domain.HintNative, loaded.Get(12).Type)
		assert.Equal(t, []string{"text"}, loaded.Get(12).Properties)
		assert.False(t, loaded.Get(14).Visible)
	})

	t.Run("Documents Are Isolated", func(t *testing.T) {
		_, err := store.LoadHints(ctx, docKey+"-other")
		assert.ErrorIs(t, err, domain.ErrHintsNotFound)
	})

	t.Run("Delete Hints", func(t *testing.T) {
		require.NoError(t, store.DeleteHints(ctx, docKey))
		_, err := store.LoadHints(ctx, docKey)
		assert.ErrorIs(t, err, domain.ErrHintsNotFound)
	})

	t.Run("API Key", func(t *testing.T) {
		key, err := store.LoadAPIKey(ctx)
		require.NoError(t, err)
		_ = key

		require.NoError(t, store.SaveAPIKey(ctx, "sk-contract-123"))
		key, err = store.LoadAPIKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sk-contract-123", key)
	})
}
