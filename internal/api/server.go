package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/inform-ai/internal/service"
	"github.com/vultisig/inform-ai/internal/service/relay"
	"github.com/vultisig/inform-ai/internal/storage/memory"
)

// StreamOptions configures the websocket feed.
type StreamOptions struct {
	BufferSize     int
	OriginPatterns []string
}

// Server holds API dependencies.
type Server struct {
	authService *service.AuthService
	sessions    *memory.SessionRepository
	relay       *relay.Service
	stream      StreamOptions
	logger      *logrus.Logger
}

// NewServer creates a new API server.
func NewServer(authService *service.AuthService, sessions *memory.SessionRepository, relayService *relay.Service, stream StreamOptions, logger *logrus.Logger) *Server {
	if stream.BufferSize <= 0 {
		stream.BufferSize = 64
	}
	return &Server{
		authService: authService,
		sessions:    sessions,
		relay:       relayService,
		stream:      stream,
		logger:      logger,
	}
}

// Routes registers every endpoint on e.
func (s *Server) Routes(e *echo.Echo) {
	// Health check endpoint (public)
	e.GET("/healthz", s.Health)

	e.POST("/sessions", s.CreateSession)

	// Session routes (authenticated, token bound to :id)
	sess := e.Group("/sessions/:id", s.AuthMiddleware)
	sess.GET("", s.GetSession)
	sess.DELETE("", s.DeleteSession)
	sess.POST("/state", s.AddState)
	sess.GET("/state/:componentId", s.GetState)
	sess.POST("/state/:componentId", s.UpdateState)
	sess.POST("/events", s.AddEvent)
	sess.GET("/messages", s.GetMessages)
	sess.POST("/flush", s.Flush)
	sess.POST("/clear", s.Clear)
	sess.GET("/stream", s.Stream)
}

// Health reports liveness and the number of live sessions.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": len(s.sessions.List()),
	})
}
