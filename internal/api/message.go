package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/inform-ai/internal/types"
)

// AddState handles POST /sessions/:id/state
func (s *Server) AddState(c echo.Context) error {
	var state types.ComponentState
	if err := c.Bind(&state); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	msg := GetSessionStore(c).AddState(state)
	return c.JSON(http.StatusCreated, msg)
}

// UpdateState handles POST /sessions/:id/state/:componentId
func (s *Server) UpdateState(c echo.Context) error {
	var updates types.ComponentState
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	msg := GetSessionStore(c).UpdateState(c.Param("componentId"), updates)
	return c.JSON(http.StatusCreated, msg)
}

// GetState handles GET /sessions/:id/state/:componentId
func (s *Server) GetState(c echo.Context) error {
	state, ok := GetSessionStore(c).GetState(c.Param("componentId"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "component state not found"})
	}
	return c.JSON(http.StatusOK, state)
}

// AddEvent handles POST /sessions/:id/events. The session's event handler runs
// before the response is written.
func (s *Server) AddEvent(c echo.Context) error {
	var event types.ComponentEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(event.ComponentID) == "" || strings.TrimSpace(event.Type) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "componentId and type are required"})
	}

	store := GetSessionStore(c)
	msg := types.NewEventMessage("", time.Time{}, event)
	if err := store.AddEventMessage(msg); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"conversation_id": store.Conversation().ID,
			"component_id":    event.ComponentID,
		}).Error("event notification failed")
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "event recorded but notification failed"})
	}

	return c.JSON(http.StatusCreated, SuccessResponse{Success: true})
}

// GetMessages handles GET /sessions/:id/messages. Without ?since it returns
// the unsent messages.
func (s *Server) GetMessages(c echo.Context) error {
	store := GetSessionStore(c)

	sinceStr := c.QueryParam("since")
	if sinceStr == "" {
		return c.JSON(http.StatusOK, MessagesResponse{Messages: store.GetRecentMessages()})
	}

	since, err := time.Parse(time.RFC3339Nano, sinceStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "since must be an RFC 3339 timestamp"})
	}
	return c.JSON(http.StatusOK, MessagesResponse{Messages: store.GetMessagesSince(since)})
}

// Flush handles POST /sessions/:id/flush
func (s *Server) Flush(c echo.Context) error {
	var req FlushRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	batch := s.relay.Batch(GetSessionStore(c), strings.TrimSpace(req.Content))
	return c.JSON(http.StatusOK, FlushResponse{Messages: batch})
}

// Clear handles POST /sessions/:id/clear
func (s *Server) Clear(c echo.Context) error {
	GetSessionStore(c).ClearRecentMessages()
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
