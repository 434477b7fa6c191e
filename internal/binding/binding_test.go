package binding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/inform-ai/internal/session"
	"github.com/vultisig/inform-ai/internal/types"
)

func TestNewRequiresSession(t *testing.T) {
	_, err := New(nil, types.ComponentState{})
	assert.ErrorIs(t, err, session.ErrNoSession)

	_, err = FromContext(context.Background(), types.ComponentState{})
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestFromContext(t *testing.T) {
	store := session.New()
	b, err := FromContext(session.NewContext(context.Background(), store), types.ComponentState{ComponentID: "pinned"})
	require.NoError(t, err)
	assert.Equal(t, "pinned", b.ComponentID())
}

func TestComponentIDIsStable(t *testing.T) {
	store := session.New()
	b, err := New(store, types.ComponentState{Name: "Logs"})
	require.NoError(t, err)

	id := b.ComponentID()
	assert.Len(t, id, 6)

	_, err = b.Sync(types.ComponentState{Name: "Logs", ComponentID: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, id, b.ComponentID())

	other, err := New(store, types.ComponentState{Name: "Logs"})
	require.NoError(t, err)
	assert.NotEqual(t, id, other.ComponentID(), "a new instance gets a new id")
}

func TestSyncPublishesOncePerDistinctValue(t *testing.T) {
	store := session.New()
	b, err := New(store, types.ComponentState{ComponentID: "table"})
	require.NoError(t, err)

	desc := types.ComponentState{Name: "Table", Prompt: "rows", Props: map[string]any{"rows": 3}}

	published, err := b.Sync(desc)
	require.NoError(t, err)
	assert.True(t, published)

	published, err = b.Sync(types.ComponentState{Name: "Table", Prompt: "rows", Props: map[string]any{"rows": 3}})
	require.NoError(t, err)
	assert.False(t, published, "structurally equal description")

	published, err = b.Sync(types.ComponentState{Name: "Table", Prompt: "rows", Props: map[string]any{"rows": 4}})
	require.NoError(t, err)
	assert.True(t, published)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	got, ok := store.GetState("table")
	require.True(t, ok)
	assert.Equal(t, types.ComponentState{
		ComponentID: "table",
		Name:        "Table",
		Prompt:      "rows",
		Props:       map[string]any{"rows": 4},
	}, got)
}

func TestSyncDetachesNestedProps(t *testing.T) {
	store := session.New()
	b, err := New(store, types.ComponentState{ComponentID: "search"})
	require.NoError(t, err)

	filter := map[string]any{"q": "a"}
	props := map[string]any{"filter": filter}

	published, err := b.Sync(types.ComponentState{Name: "Search", Props: props})
	require.NoError(t, err)
	require.True(t, published)

	filter["q"] = "b"
	published, err = b.Sync(types.ComponentState{Name: "Search", Props: props})
	require.NoError(t, err)
	assert.True(t, published, "nested change is a new description")

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"q": "a"}, msgs[0].State.Props["filter"])
	assert.Equal(t, map[string]any{"q": "b"}, msgs[1].State.Props["filter"])
}

func TestSyncNoState(t *testing.T) {
	store := session.New()
	b, err := New(store, types.ComponentState{})
	require.NoError(t, err)

	published, err := b.Sync(types.ComponentState{Name: "Chat", NoState: true})
	require.NoError(t, err)
	assert.False(t, published)
	assert.Empty(t, store.Messages())

	published, err = b.Sync(types.ComponentState{Name: "Chat"})
	require.NoError(t, err)
	assert.True(t, published)
	assert.Len(t, store.Messages(), 1)
}

func TestSyncUnencodableProps(t *testing.T) {
	store := session.New()
	b, err := New(store, types.ComponentState{})
	require.NoError(t, err)

	_, err = b.Sync(types.ComponentState{Props: map[string]any{"ch": make(chan int)}})
	assert.Error(t, err)
	assert.Empty(t, store.Messages())
}

func TestImperativeHelpersDefaultComponentID(t *testing.T) {
	store := session.New()
	b, err := New(store, types.ComponentState{ComponentID: "form"})
	require.NoError(t, err)

	ev := b.AddEvent(types.ComponentEvent{Type: "submit"})
	assert.Equal(t, "form", ev.Event.ComponentID)

	ev = b.AddEvent(types.ComponentEvent{ComponentID: "other", Type: "submit"})
	assert.Equal(t, "other", ev.Event.ComponentID)

	st := b.AddState(types.ComponentState{Props: map[string]any{"valid": true}})
	assert.Equal(t, "form", st.State.ComponentID)

	up := b.UpdateState(types.ComponentState{Name: "Signup form"})
	assert.Equal(t, "form", up.State.ComponentID)
	assert.Equal(t, true, up.State.Props["valid"])
	assert.Equal(t, "Signup form", up.State.Name)
}

func TestPassthroughs(t *testing.T) {
	notified := 0
	store := session.New(session.WithEventHandler(func(types.Message) error {
		notified++
		return nil
	}))
	b, err := New(store, types.ComponentState{ComponentID: "c"})
	require.NoError(t, err)

	require.NoError(t, b.AddMessage(types.NewStateMessage("s1", time.Time{}, types.ComponentState{ComponentID: "c"})))
	require.NoError(t, b.AddStateMessage(types.NewStateMessage("s2", time.Time{}, types.ComponentState{ComponentID: "c"})))
	require.NoError(t, b.AddEventMessage(types.NewEventMessage("e1", time.Time{}, types.ComponentEvent{ComponentID: "c", Type: "x"})))

	assert.Len(t, store.Messages(), 3)
	assert.Equal(t, 1, notified)
}
