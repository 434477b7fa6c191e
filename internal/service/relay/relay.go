package relay

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vultisig/inform-ai/internal/prompt"
	"github.com/vultisig/inform-ai/internal/session"
	"github.com/vultisig/inform-ai/internal/types"
)

// Deliverer hands a batch to the model backend and returns its reply.
type Deliverer interface {
	Deliver(ctx context.Context, messages []types.FormattedMessage) (*types.FormattedMessage, error)
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, messages []types.FormattedMessage) (*types.FormattedMessage, error)

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, messages []types.FormattedMessage) (*types.FormattedMessage, error) {
	return f(ctx, messages)
}

// SubmitResult is the outcome of one flush.
type SubmitResult struct {
	Sent  []types.FormattedMessage `json:"sent"`
	Reply *types.FormattedMessage  `json:"reply,omitempty"`
}

// Service flushes pending component messages out of a session.
type Service struct {
	logger *logrus.Logger
}

// NewService creates a new Service.
func NewService(logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{logger: logger}
}

// Batch pops the unsent messages of store, keeps the latest state per
// component and renders them. A non-empty userContent is appended as the
// final user turn. The send cursor moves even if the batch is never delivered.
func (s *Service) Batch(store *session.Store, userContent string) []types.FormattedMessage {
	popped := store.PopRecentMessages()
	deduped := session.Dedupe(popped)
	batch := prompt.FormatMessages(deduped)
	if userContent != "" {
		batch = append(batch, prompt.UserMessage(userContent))
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id": store.Conversation().ID,
		"popped":          len(popped),
		"deduped":         len(deduped),
	}).Debug("built message batch")
	return batch
}

// Submit builds a batch and delivers it. Delivery is at-most-once: on failure
// the popped messages are not replayed.
func (s *Service) Submit(ctx context.Context, store *session.Store, userContent string, d Deliverer) (*SubmitResult, error) {
	batch := s.Batch(store, userContent)
	if len(batch) == 0 {
		return &SubmitResult{Sent: batch}, nil
	}

	reply, err := d.Deliver(ctx, batch)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"conversation_id": store.Conversation().ID,
			"count":           len(batch),
		}).Warn("delivery failed, messages will not be resent")
		return nil, fmt.Errorf("deliver batch: %w", err)
	}

	if reply != nil && reply.Role == "" {
		reply.Role = types.RoleAssistant
	}
	return &SubmitResult{Sent: batch, Reply: reply}, nil
}
