// Package binding gives a UI component a stable identity inside a session and
// publishes its state whenever its description changes.
package binding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vultisig/inform-ai/internal/randomid"
	"github.com/vultisig/inform-ai/internal/session"
	"github.com/vultisig/inform-ai/internal/types"
)

// Binding is the adapter one component instance holds for its whole lifetime.
type Binding struct {
	store       *session.Store
	componentID string

	lastKey string
	synced  bool
}

// New binds a component to store. The component id is desc.ComponentID when
// set, otherwise a fresh one; later descriptions never change it.
func New(store *session.Store, desc types.ComponentState) (*Binding, error) {
	if store == nil {
		return nil, session.ErrNoSession
	}
	id := desc.ComponentID
	if id == "" {
		id = randomid.Component()
	}
	return &Binding{store: store, componentID: id}, nil
}

// FromContext binds a component to the session carried by ctx.
func FromContext(ctx context.Context, desc types.ComponentState) (*Binding, error) {
	store, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return New(store, desc)
}

// ComponentID returns the bound component id.
func (b *Binding) ComponentID() string {
	return b.componentID
}

// Sync is called by the UI layer once per update cycle with the component's
// current description. It publishes a state message the first time and after
// every change, and reports whether it did. Components declaring NoState are
// tracked but never published.
func (b *Binding) Sync(desc types.ComponentState) (bool, error) {
	key, err := descriptionKey(desc)
	if err != nil {
		return false, err
	}
	if b.synced && key == b.lastKey {
		return false, nil
	}
	b.synced = true
	b.lastKey = key

	if desc.NoState {
		return false, nil
	}
	b.store.AddState(types.ComponentState{
		ComponentID: b.componentID,
		Name:        desc.Name,
		Prompt:      desc.Prompt,
		Props:       desc.Props,
	})
	return true, nil
}

// AddEvent records an event, attributing it to the bound component unless the
// event names another one.
func (b *Binding) AddEvent(event types.ComponentEvent) types.Message {
	if event.ComponentID == "" {
		event.ComponentID = b.componentID
	}
	return b.store.AddEvent(event)
}

// AddState records a state snapshot, attributing it to the bound component
// unless the state names another one.
func (b *Binding) AddState(state types.ComponentState) types.Message {
	if state.ComponentID == "" {
		state.ComponentID = b.componentID
	}
	return b.store.AddState(state)
}

// UpdateState merges updates over the bound component's latest state.
func (b *Binding) UpdateState(updates types.ComponentState) types.Message {
	return b.store.UpdateState(b.componentID, updates)
}

// AddMessage appends msg unchanged.
func (b *Binding) AddMessage(msg types.Message) error {
	return b.store.AddMessage(msg)
}

// AddEventMessage appends msg unchanged and fires the session's event handler.
func (b *Binding) AddEventMessage(msg types.Message) error {
	return b.store.AddEventMessage(msg)
}

// AddStateMessage appends msg unchanged.
func (b *Binding) AddStateMessage(msg types.Message) error {
	return b.store.AddStateMessage(msg)
}

type trackedDescription struct {
	Name    string         `json:"name,omitempty"`
	Prompt  string         `json:"prompt,omitempty"`
	Props   map[string]any `json:"props,omitempty"`
	NoState bool           `json:"noState,omitempty"`
}

// descriptionKey serializes the tracked fields; encoding/json sorts map keys,
// so structurally equal descriptions produce equal keys.
func descriptionKey(desc types.ComponentState) (string, error) {
	data, err := json.Marshal(trackedDescription{
		Name:    desc.Name,
		Prompt:  desc.Prompt,
		Props:   desc.Props,
		NoState: desc.NoState,
	})
	if err != nil {
		return "", fmt.Errorf("encode component description: %w", err)
	}
	return string(data), nil
}
