package api

import "github.com/vultisig/inform-ai/internal/types"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a generic success response.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// CreateSessionResponse is returned when a session starts.
type CreateSessionResponse struct {
	Conversation types.Conversation `json:"conversation"`
	Token        string             `json:"token"`
}

// SessionResponse is the current state of a session, split around the send cursor.
type SessionResponse struct {
	Conversation types.Conversation `json:"conversation"`
	Sent         []types.Message    `json:"sent"`
	Unsent       []types.Message    `json:"unsent"`
}

// MessagesResponse wraps a list of log messages.
type MessagesResponse struct {
	Messages []types.Message `json:"messages"`
}

// FlushRequest is the request body for flushing a session.
type FlushRequest struct {
	Content string `json:"content"`
}

// FlushResponse carries the rendered batch for the model.
type FlushResponse struct {
	Messages []types.FormattedMessage `json:"messages"`
}
