// Package v1 exposes the JSON HTTP surface of the bot: chat, like and
// correct, mirroring the endpoints the web frontend calls.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/thursday/server/chat"
)

type APIV1Service struct {
	Engine *chat.Engine

	logger *slog.Logger
}

func NewAPIV1Service(engine *chat.Engine, logger *slog.Logger) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIV1Service{Engine: engine, logger: logger}
}

// RegisterRoutes registers the bot routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.POST("/chat", s.Chat)
	echoServer.POST("/like", s.Like)
	echoServer.POST("/correct", s.Correct)
}

// ChatRequest is the inbound chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the reply and the fixed identity tag.
type ChatResponse struct {
	Reply   string `json:"reply"`
	BotName string `json:"bot_name"`
}

// Chat drives the decision engine.
// POST /chat
func (s *APIV1Service) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	reply := s.Engine.Reply(c.Request().Context(), req.Message)
	return c.JSON(http.StatusOK, ChatResponse{Reply: reply, BotName: chat.BotName})
}

// LikeRequest is positive feedback on an answered question.
type LikeRequest struct {
	Question string `json:"question"`
}

// Like acknowledges feedback. Nothing is persisted.
// POST /like
func (s *APIV1Service) Like(c echo.Context) error {
	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	s.Engine.Like(req.Question)
	return c.JSON(http.StatusOK, map[string]string{"status": "liked"})
}

// CorrectRequest teaches the bot a new question/answer pair.
type CorrectRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Correct appends the pair to memory and rebuilds the match index.
// POST /correct
func (s *APIV1Service) Correct(c echo.Context) error {
	var req CorrectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := s.Engine.Correct(c.Request().Context(), req.Question, req.Answer); err != nil {
		s.logger.Error("correction failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "correction failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "correction saved"})
}
