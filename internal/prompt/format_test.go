package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/inform-ai/internal/types"
)

func TestFormatMessages(t *testing.T) {
	now := time.Now()
	state := types.NewStateMessage("message1", now, types.ComponentState{
		ComponentID: "test",
		Name:        "test component name",
		Prompt:      "test component prompt",
		Props:       map[string]any{"test": "test"},
	})
	event := types.NewEventMessage("message2", now, types.ComponentEvent{
		ComponentID: "test",
		Type:        "test",
		Description: "test",
	})

	out := FormatMessages([]types.Message{state, event})
	require.Len(t, out, 2)

	t.Run("fresh ids", func(t *testing.T) {
		assert.NotEqual(t, out[0].ID, out[1].ID)
		assert.NotEqual(t, "message1", out[0].ID)
		assert.Len(t, out[0].ID, 10)
	})

	t.Run("system role", func(t *testing.T) {
		assert.Equal(t, types.RoleSystem, out[0].Role)
		assert.Equal(t, types.RoleSystem, out[1].Role)
	})

	t.Run("state content", func(t *testing.T) {
		assert.Contains(t, out[0].Content, "Component test has updated its state")
		assert.Contains(t, out[0].Content, "Component Name: test component name")
		assert.Contains(t, out[0].Content, "Component self-description: test component prompt")
		assert.Contains(t, out[0].Content, `Component props: {"test":"test"}`)
	})

	t.Run("event content", func(t *testing.T) {
		assert.Equal(t, "Component test sent event test.\n  Description was: test", out[1].Content)
	})
}

func TestFormatStateFullSnapshot(t *testing.T) {
	got := FormatState(types.ComponentState{
		ComponentID: "c1",
		Name:        "Table",
		Prompt:      "desc",
		Props:       map[string]any{"a": 1},
	})
	want := "Component c1 has updated its state\n" +
		"Component Name: Table\n" +
		"Component self-description: desc\n" +
		`Component props: {"a":1}`
	assert.Equal(t, want, got)
}

func TestFormatStateSkipsEmptyFields(t *testing.T) {
	assert.Equal(t, "Component c1 has updated its state", FormatState(types.ComponentState{ComponentID: "c1"}))
	assert.Equal(t,
		"Component c1 has updated its state\nComponent props: {}",
		FormatState(types.ComponentState{ComponentID: "c1", Props: map[string]any{}}),
	)
}

func TestFormatStatePropsNotHTMLEscaped(t *testing.T) {
	got := FormatState(types.ComponentState{ComponentID: "c1", Props: map[string]any{"q": "a<b & c>d"}})
	assert.Contains(t, got, `Component props: {"q":"a<b & c>d"}`)
}

func TestFormatEventWithoutDescription(t *testing.T) {
	assert.Equal(t, "Component x sent event click.", FormatEvent(types.ComponentEvent{ComponentID: "x", Type: "click"}))
}

func TestFormatMessagesUniqueIDs(t *testing.T) {
	msgs := make([]types.Message, 50)
	for i := range msgs {
		msgs[i] = types.NewEventMessage("same", time.Time{}, types.ComponentEvent{ComponentID: "c", Type: "t"})
	}
	out := FormatMessages(msgs)
	require.Len(t, out, 50)

	seen := make(map[string]struct{}, len(out))
	for _, m := range out {
		seen[m.ID] = struct{}{}
	}
	assert.Len(t, seen, 50)
}

func TestUserMessage(t *testing.T) {
	msg := UserMessage("hello")
	assert.Equal(t, types.RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.NotEmpty(t, msg.ID)
}
