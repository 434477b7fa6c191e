package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// MessageRole represents the role of a formatted message sent to the model.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// MessageType discriminates the payload carried by a Message.
type MessageType string

const (
	MessageTypeState MessageType = "state"
	MessageTypeEvent MessageType = "event"
)

// Conversation represents one active session and its send cursor.
type Conversation struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSentAt time.Time `json:"last_sent_at"`
}

// ComponentState is a snapshot of a UI component's self-description.
type ComponentState struct {
	ComponentID string         `json:"componentId,omitempty"`
	Name        string         `json:"name,omitempty"`
	Prompt      string         `json:"prompt,omitempty"`
	Props       map[string]any `json:"props"`
	NoState     bool           `json:"noState,omitempty"`
}

// ComponentEvent is a discrete occurrence attributed to a component.
type ComponentEvent struct {
	ComponentID string `json:"componentId"`
	Type        string `json:"type"`
	Data        any    `json:"data,omitempty"`
	Description string `json:"description,omitempty"`
}

// Message is a single entry in a session log. Exactly one of State or Event is
// set, matching Type.
type Message struct {
	ID        string
	CreatedAt time.Time
	Type      MessageType
	State     *ComponentState
	Event     *ComponentEvent
}

// FormattedMessage is a message rendered for a language model prompt.
type FormattedMessage struct {
	ID      string      `json:"id"`
	Content string      `json:"content"`
	Role    MessageRole `json:"role"`
}

// ErrInvalidMessage is returned when a message's type and payload disagree.
var ErrInvalidMessage = errors.New("invalid message")

// NewStateMessage builds a state message around a copy of state.
func NewStateMessage(id string, createdAt time.Time, state ComponentState) Message {
	s := state.Clone()
	return Message{ID: id, CreatedAt: createdAt, Type: MessageTypeState, State: &s}
}

// NewEventMessage builds an event message.
func NewEventMessage(id string, createdAt time.Time, event ComponentEvent) Message {
	e := event
	return Message{ID: id, CreatedAt: createdAt, Type: MessageTypeEvent, Event: &e}
}

// Validate reports whether the payload matches the declared type.
func (m Message) Validate() error {
	switch m.Type {
	case MessageTypeState:
		if m.State == nil {
			return fmt.Errorf("%w: state message without state content", ErrInvalidMessage)
		}
	case MessageTypeEvent:
		if m.Event == nil {
			return fmt.Errorf("%w: event message without event content", ErrInvalidMessage)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}
	return nil
}

// ComponentID returns the component the message is attributed to, if any.
func (m Message) ComponentID() string {
	switch {
	case m.State != nil && m.Type == MessageTypeState:
		return m.State.ComponentID
	case m.Event != nil && m.Type == MessageTypeEvent:
		return m.Event.ComponentID
	}
	return ""
}

// Clone returns a copy that shares no maps or slices with s, at any depth of
// Props.
func (s ComponentState) Clone() ComponentState {
	out := s
	if s.Props != nil {
		out.Props = cloneProps(s.Props)
	}
	return out
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if val == nil {
			return val
		}
		return cloneProps(val)
	case []any:
		if val == nil {
			return val
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElem(iter.Value(), rv.Type().Elem()))
		}
		return out.Interface()
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneElem(rv.Index(i), rv.Type().Elem()))
		}
		return out.Interface()
	}
	return v
}

func cloneElem(v reflect.Value, typ reflect.Type) reflect.Value {
	if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
		return reflect.Zero(typ)
	}
	c := cloneValue(v.Interface())
	if c == nil {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(c)
}

// Merge overlays the set fields of updates on s. Props is replaced as a whole.
func (s ComponentState) Merge(updates ComponentState) ComponentState {
	out := s.Clone()
	if updates.ComponentID != "" {
		out.ComponentID = updates.ComponentID
	}
	if updates.Name != "" {
		out.Name = updates.Name
	}
	if updates.Prompt != "" {
		out.Prompt = updates.Prompt
	}
	if updates.Props != nil {
		out.Props = updates.Clone().Props
	}
	if updates.NoState {
		out.NoState = true
	}
	return out
}

type messageJSON struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Type      MessageType     `json:"type"`
	Content   json.RawMessage `json:"content"`
}

// MarshalJSON encodes the payload under a single "content" key.
func (m Message) MarshalJSON() ([]byte, error) {
	var (
		content []byte
		err     error
	)
	switch m.Type {
	case MessageTypeState:
		content, err = json.Marshal(m.State)
	case MessageTypeEvent:
		content, err = json.Marshal(m.Event)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal %s content: %w", m.Type, err)
	}
	return json.Marshal(messageJSON{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Type:      m.Type,
		Content:   content,
	})
}

// UnmarshalJSON decodes "content" according to "type".
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{ID: raw.ID, CreatedAt: raw.CreatedAt, Type: raw.Type}
	switch raw.Type {
	case MessageTypeState:
		var s ComponentState
		if len(raw.Content) > 0 {
			if err := json.Unmarshal(raw.Content, &s); err != nil {
				return fmt.Errorf("decode state content: %w", err)
			}
		}
		m.State = &s
	case MessageTypeEvent:
		var e ComponentEvent
		if len(raw.Content) > 0 {
			if err := json.Unmarshal(raw.Content, &e); err != nil {
				return fmt.Errorf("decode event content: %w", err)
			}
		}
		m.Event = &e
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, raw.Type)
	}
	return nil
}
