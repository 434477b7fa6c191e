// Package prompt renders session messages into natural-language system
// messages for a language model.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vultisig/inform-ai/internal/randomid"
	"github.com/vultisig/inform-ai/internal/types"
)

// FormatMessages maps each message to a system message, in order. Every
// output gets a fresh id unrelated to the source message.
func FormatMessages(messages []types.Message) []types.FormattedMessage {
	out := make([]types.FormattedMessage, 0, len(messages))
	for _, msg := range messages {
		var content string
		if msg.Type == types.MessageTypeEvent && msg.Event != nil {
			content = FormatEvent(*msg.Event)
		} else if msg.State != nil {
			content = FormatState(*msg.State)
		} else {
			content = FormatState(types.ComponentState{})
		}
		out = append(out, types.FormattedMessage{
			ID:      randomid.Formatted(),
			Content: content,
			Role:    types.RoleSystem,
		})
	}
	return out
}

// FormatEvent describes an event. The description line is left out when the
// event has none.
func FormatEvent(event types.ComponentEvent) string {
	line := fmt.Sprintf("Component %s sent event %s.", event.ComponentID, event.Type)
	if event.Description == "" {
		return line
	}
	return line + "\n  Description was: " + event.Description
}

// FormatState describes a state snapshot, one line per populated field.
func FormatState(state types.ComponentState) string {
	lines := make([]string, 0, 4)

	if state.ComponentID != "" {
		lines = append(lines, fmt.Sprintf("Component %s has updated its state", state.ComponentID))
	} else {
		lines = append(lines, "Component has updated its state")
	}
	if state.Name != "" {
		lines = append(lines, "Component Name: "+state.Name)
	}
	if state.Prompt != "" {
		lines = append(lines, "Component self-description: "+state.Prompt)
	}
	if state.Props != nil {
		lines = append(lines, "Component props: "+encodeProps(state.Props))
	}

	return strings.Join(lines, "\n")
}

// UserMessage wraps free text typed by the user.
func UserMessage(content string) types.FormattedMessage {
	return types.FormattedMessage{
		ID:      randomid.Formatted(),
		Content: content,
		Role:    types.RoleUser,
	}
}

func encodeProps(props map[string]any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(props); err != nil {
		return fmt.Sprintf("%v", props)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
