package session

import "github.com/vultisig/inform-ai/internal/types"

// Dedupe keeps only the latest state message per component. Event messages and
// state messages without a component id are always kept, and the survivors
// stay in their original order. messages is not modified.
func Dedupe(messages []types.Message) []types.Message {
	seen := make(map[string]struct{})
	keep := make([]bool, len(messages))
	kept := 0

	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Type == types.MessageTypeState && msg.State != nil && msg.State.ComponentID != "" {
			if _, dup := seen[msg.State.ComponentID]; dup {
				continue
			}
			seen[msg.State.ComponentID] = struct{}{}
		}
		keep[i] = true
		kept++
	}

	out := make([]types.Message, 0, kept)
	for i, msg := range messages {
		if keep[i] {
			out = append(out, msg)
		}
	}
	return out
}
