package psdrun

import (
	"context"
	"testing"

	"github.com/aretw0/psdrun/pkg/adapters/memory"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/interaction"
	"github.com/aretw0/psdrun/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_OpenGetClose(t *testing.T) {
	var opened, closed []string
	h := NewHub(WithSessionHooks(
		func(s *Session) { opened = append(opened, s.ID()) },
		func(s *Session) { closed = append(closed, s.ID()) },
	))
	ctx := context.Background()

	s, err := h.Open(fixtureDocument(), "b")
	require.NoError(t, err)
	_, err = h.Open(fixtureDocument(), "a")
	require.NoError(t, err)

	_, err = h.Open(fixtureDocument(), "b")
	assert.Error(t, err, "ids are unique")

	got, err := h.Get("b")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, []string{"a", "b"}, h.List())

	require.NoError(t, h.Close(ctx, "b"))
	_, err = h.Get("b")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, h.Close(ctx, "b"), domain.ErrSessionNotFound)

	require.NoError(t, h.Shutdown(ctx))
	assert.Empty(t, h.List())
	assert.Equal(t, []string{"b", "a"}, opened)
	assert.Equal(t, []string{"b", "a"}, closed)
}

func TestHub_RandomID(t *testing.T) {
	h := NewHub()
	s, err := h.Open(fixtureDocument(), "")
	require.NoError(t, err)
	t.Cleanup(func() { h.Shutdown(context.Background()) })
	assert.NotEmpty(t, s.ID())
}

func TestHub_PersistAndResume(t *testing.T) {
	store := memory.NewStore()
	h := NewHub(WithManager(session.NewManager(store)))
	ctx := context.Background()

	cfg, err := interaction.Parse(modelReply)
	require.NoError(t, err)

	s, err := h.Open(fixtureDocument(), "p1")
	require.NoError(t, err)
	require.NoError(t, s.SetConfig(ctx, cfg))
	_, err = s.Dispatch(ctx, domain.Action{Type: domain.ActionNavigate, Target: "pin"})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, domain.Action{Type: domain.ActionShowPopup, Target: "confirm"})
	require.NoError(t, err)

	require.NoError(t, h.Persist(ctx, "p1"))
	require.NoError(t, h.Close(ctx, "p1"))

	saved, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "pin", saved.CurrentScreen)

	resumed, err := h.Resume(ctx, fixtureDocument(), "p1", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { h.Shutdown(ctx) })

	snap, err := resumed.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pin", snap.CurrentScreen)
	assert.Equal(t, []string{"confirm"}, snap.ActivePopups)
}

func TestHub_ResumeWithoutSnapshot(t *testing.T) {
	h := NewHub(WithManager(session.NewManager(memory.NewStore())))
	ctx := context.Background()
	t.Cleanup(func() { h.Shutdown(ctx) })

	cfg, err := interaction.Parse(modelReply)
	require.NoError(t, err)

	s, err := h.Resume(ctx, fixtureDocument(), "fresh", cfg)
	require.NoError(t, err)
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "home", snap.CurrentScreen)
}

func TestHub_ResumeRequiresManager(t *testing.T) {
	_, err := NewHub().Resume(context.Background(), fixtureDocument(), "x", &domain.InteractionConfig{})
	assert.Error(t, err)
}
