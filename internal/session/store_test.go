package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tegflow/tegflow/internal/rules"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testState() *State {
	return &State{
		Phase:   "attack",
		Current: 1,
		Participants: []Participant{
			{ID: "p1", Name: "Blue", Active: true, AvailableUnits: 3},
			{ID: "p2", Name: "Red", Active: false, AvailableUnits: 0},
		},
		Fields: map[string]FieldStatus{
			"brazil": {Owner: "p1", Units: 4},
			"peru":   {Owner: "p2", Units: 1},
		},
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open(" ")
	require.Error(t, err)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	attrs := map[string]rules.Value{
		"figures_left":  rules.NumberValue(3),
		"setup_done":    rules.BoolValue(true),
		"current_color": rules.StringValue("blue"),
	}
	require.NoError(t, store.Save(ctx, "game-1", "classic", testState(), attrs))

	snap, err := store.Load(ctx, "game-1")
	require.NoError(t, err)

	require.Equal(t, "game-1", snap.ID)
	require.Equal(t, "classic", snap.Variant)
	require.Equal(t, "attack", snap.State.Phase)
	require.Equal(t, 1, snap.State.Current)
	require.Equal(t, testState().Participants, snap.State.Participants)
	require.Equal(t, testState().Fields, snap.State.Fields)
	require.Equal(t, attrs, snap.Attrs)
	require.WithinDuration(t, time.Now(), snap.UpdatedAt, time.Minute)
}

func TestStoreSaveReplacesSnapshot(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "game-1", "classic", testState(), map[string]rules.Value{
		"figures_left": rules.NumberValue(3),
	}))

	next := testState()
	next.Phase = "setup"
	next.Participants = next.Participants[:1]
	require.NoError(t, store.Save(ctx, "game-1", "classic", next, nil))

	snap, err := store.Load(ctx, "game-1")
	require.NoError(t, err)
	require.Equal(t, "setup", snap.State.Phase)
	require.Len(t, snap.State.Participants, 1)
	require.Empty(t, snap.Attrs)
}

func TestStoreLoadUnknownID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	_, err := store.Load(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSaveRejectsBadInput(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	require.Error(t, store.Save(ctx, "", "classic", testState(), nil))
	require.Error(t, store.Save(ctx, "game-1", "classic", nil, nil))
}

func TestStoreList(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, infos)

	require.NoError(t, store.Save(ctx, "game-1", "classic", testState(), nil))
	require.NoError(t, store.Save(ctx, "game-2", "duel", testState(), nil))

	infos, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	ids := []string{infos[0].ID, infos[1].ID}
	require.ElementsMatch(t, []string{"game-1", "game-2"}, ids)
	require.False(t, infos[0].UpdatedAt.Before(infos[1].UpdatedAt))
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "game-1", "classic", testState(), map[string]rules.Value{
		"figures_left": rules.NumberValue(1),
	}))
	require.NoError(t, store.Delete(ctx, "game-1"))

	_, err := store.Load(ctx, "game-1")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent id is a no-op.
	require.NoError(t, store.Delete(ctx, "ghost"))
}

func TestStoreContextCancellation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Save(ctx, "game-1", "classic", testState(), nil), context.Canceled)
	_, err := store.Load(ctx, "game-1")
	require.ErrorIs(t, err, context.Canceled)
	_, err = store.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Delete(ctx, "game-1"), context.Canceled)
}

func TestEncodeDecodeValue(t *testing.T) {
	t.Parallel()

	cases := []rules.Value{
		rules.NumberValue(3.5),
		rules.BoolValue(false),
		rules.StringValue("blue"),
	}
	for _, v := range cases {
		kind, text := encodeValue(v)
		got, err := decodeValue(kind, text)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	_, err := decodeValue("blob", "x")
	require.Error(t, err)
}
