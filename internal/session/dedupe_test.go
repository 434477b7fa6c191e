package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/inform-ai/internal/types"
)

func stateMsg(id, componentID string) types.Message {
	return types.NewStateMessage(id, time.Time{}, types.ComponentState{ComponentID: componentID})
}

func eventMsg(id, componentID string) types.Message {
	return types.NewEventMessage(id, time.Time{}, types.ComponentEvent{ComponentID: componentID, Type: "click"})
}

func ids(msgs []types.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestDedupeKeepsLatestStatePerComponent(t *testing.T) {
	s := newTestStore()
	s.AddState(types.ComponentState{ComponentID: "x", Props: map[string]any{"key": "value"}})
	s.AddEvent(types.ComponentEvent{ComponentID: "x", Type: "click", Data: map[string]any{"key": "value"}})
	s.AddState(types.ComponentState{ComponentID: "x", Props: map[string]any{"key": "newValue"}})

	out := Dedupe(s.Messages())
	require.Len(t, out, 2)
	assert.Equal(t, types.MessageTypeEvent, out[0].Type)
	assert.Equal(t, types.MessageTypeState, out[1].Type)
	assert.Equal(t, "newValue", out[1].State.Props["key"])
}

func TestDedupePreservesOrderAndEvents(t *testing.T) {
	in := []types.Message{
		stateMsg("s1", "a"),
		eventMsg("e1", "a"),
		stateMsg("s2", "b"),
		stateMsg("s3", "a"),
		eventMsg("e2", "b"),
		stateMsg("s4", "b"),
	}

	out := Dedupe(in)
	assert.Equal(t, []string{"e1", "s3", "e2", "s4"}, ids(out))
}

func TestDedupeNeverDropsAnonymousState(t *testing.T) {
	in := []types.Message{
		stateMsg("s1", ""),
		stateMsg("s2", ""),
		stateMsg("s3", "a"),
	}
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids(Dedupe(in)))
}

func TestDedupeIdempotent(t *testing.T) {
	in := []types.Message{
		stateMsg("s1", "a"),
		eventMsg("e1", "a"),
		stateMsg("s2", "a"),
		stateMsg("s3", ""),
		stateMsg("s4", "b"),
		stateMsg("s5", "b"),
	}
	once := Dedupe(in)
	assert.Equal(t, once, Dedupe(once))
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	in := []types.Message{stateMsg("s1", "a"), stateMsg("s2", "a")}
	Dedupe(in)
	assert.Equal(t, []string{"s1", "s2"}, ids(in))
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}
