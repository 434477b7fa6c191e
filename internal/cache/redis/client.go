package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vultisig/inform-ai/internal/types"
)

// Client wraps the Redis client.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New creates a new Redis client from a URI. Event notifications are
// published on "<prefix>:<conversation id>".
func New(uri, prefix string) (*Client, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Client{rdb: rdb, prefix: prefix}, nil
}

// Channel returns the pub/sub channel for a conversation.
func (c *Client) Channel(conversationID string) string {
	return c.prefix + ":" + conversationID
}

// PublishEvent publishes an event message to the conversation's channel.
func (c *Client) PublishEvent(ctx context.Context, conversationID string, msg types.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := c.rdb.Publish(ctx, c.Channel(conversationID), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
