package api

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const streamWriteTimeout = 5 * time.Second

// Stream handles GET /sessions/:id/stream, pushing every message appended to
// the session as a JSON text frame until the client goes away or the session
// ends.
func (s *Server) Stream(c echo.Context) error {
	store := GetSessionStore(c)
	log := s.logger.WithField("conversation_id", store.Conversation().ID)

	ws, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: s.stream.OriginPatterns,
	})
	if err != nil {
		log.WithError(err).Warn("failed to accept websocket")
		return nil
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			log.WithError(closeErr).Debug("failed to close websocket")
		}
	}()

	feed, cancel := store.Subscribe(s.stream.BufferSize)
	defer cancel()

	// Backlog of unsent messages first. A message appended while the backlog is
	// written can arrive twice; clients dedupe on id.
	for _, msg := range store.GetRecentMessages() {
		if err := s.writeJSON(c.Request().Context(), ws, msg); err != nil {
			return nil
		}
	}

	ctx := ws.CloseRead(c.Request().Context())
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-feed:
			if !ok {
				return nil
			}
			if err := s.writeJSON(ctx, ws, msg); err != nil {
				if !errors.Is(err, context.Canceled) {
					log.WithError(err).WithFields(logrus.Fields{"message_id": msg.ID}).Debug("stream write failed")
				}
				return nil
			}
		}
	}
}

func (s *Server) writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, v)
}
