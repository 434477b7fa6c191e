package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vultisig/inform-ai/internal/session"
)

const sessionKey = "session"

// AuthMiddleware validates the session token, checks it is bound to the :id
// path parameter and loads the session.
func (s *Server) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing authorization header"})
		}

		claims, err := s.authService.ValidateToken(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
		}

		id := c.Param("id")
		if claims.ConversationID != id {
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "token not valid for this session"})
		}

		store, err := s.sessions.GetByID(id)
		if err != nil {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		}

		c.Set(sessionKey, store)
		return next(c)
	}
}

// GetSessionStore extracts the session loaded by AuthMiddleware.
func GetSessionStore(c echo.Context) *session.Store {
	store, _ := c.Get(sessionKey).(*session.Store)
	return store
}

// bearerToken reads the Authorization header, falling back to the token query
// parameter for websocket clients that cannot set headers.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		token := c.QueryParam("token")
		return token, token != ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
