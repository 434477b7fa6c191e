package api

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vultisig/inform-ai/internal/session"
	"github.com/vultisig/inform-ai/internal/storage/memory"
	"github.com/vultisig/inform-ai/internal/types"
)

const publishTimeout = 2 * time.Second

// EventPublisher fans event messages out to other processes.
type EventPublisher interface {
	PublishEvent(ctx context.Context, conversationID string, msg types.Message) error
}

// EventNotifier returns the per-session event handler factory. Each event
// added through AddEventMessage is logged and, when pub is set, published.
func EventNotifier(pub EventPublisher, logger *logrus.Logger) memory.EventHandlerFactory {
	return func(conversationID string) session.EventHandler {
		return func(msg types.Message) error {
			logger.WithFields(logrus.Fields{
				"conversation_id": conversationID,
				"component_id":    msg.ComponentID(),
				"event_type":      msg.Event.Type,
			}).Info("component event")

			if pub == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			return pub.PublishEvent(ctx, conversationID, msg)
		}
	}
}
