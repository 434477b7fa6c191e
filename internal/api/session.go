package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vultisig/inform-ai/internal/storage/memory"
)

// CreateSession starts a new conversation and returns a token scoped to it.
func (s *Server) CreateSession(c echo.Context) error {
	store := s.sessions.Create()
	conv := store.Conversation()

	token, err := s.authService.IssueToken(conv.ID)
	if err != nil {
		_ = s.sessions.Delete(conv.ID)
		s.logger.WithError(err).Error("failed to issue session token")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create session"})
	}

	return c.JSON(http.StatusCreated, CreateSessionResponse{
		Conversation: conv,
		Token:        token,
	})
}

// GetSession returns the conversation with its log split around the send cursor.
func (s *Server) GetSession(c echo.Context) error {
	store := GetSessionStore(c)
	sent, unsent := store.Split()

	return c.JSON(http.StatusOK, SessionResponse{
		Conversation: store.Conversation(),
		Sent:         sent,
		Unsent:       unsent,
	})
}

// DeleteSession ends a session.
func (s *Server) DeleteSession(c echo.Context) error {
	err := s.sessions.Delete(c.Param("id"))
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		}
		s.logger.WithError(err).Error("failed to delete session")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete session"})
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
