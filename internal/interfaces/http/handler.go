package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"binary_joke_bot/internal/interfaces"
)

const defaultTopic = "technology"

// Handler serves the operator endpoints: health and manual joke generation.
type Handler struct {
	jokes     interfaces.JokeGenerator
	botHandle string
	logger    *slog.Logger
}

func NewHandler(jokes interfaces.JokeGenerator, botHandle string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		jokes:     jokes,
		botHandle: botHandle,
		logger:    logger,
	}
}

// SetupRoutes mounts /healthz, and /api when middleware is non-nil.
func SetupRoutes(r *gin.Engine, h *Handler, middleware *Middleware) {
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20))
	if middleware != nil {
		r.Use(middleware.RequestLogger())
	}

	r.GET("/healthz", h.Health)

	if middleware == nil {
		return
	}
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		api.GET("/joke", h.GenerateJoke)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"bot":    "@" + h.botHandle,
	})
}

// GenerateJoke returns a joke for ?topic=, defaulting to technology.
func (h *Handler) GenerateJoke(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		topic = defaultTopic
	}

	joke, err := h.jokes.GenerateJoke(c.Request.Context(), topic)
	if err != nil {
		h.logger.Error("manual joke generation failed", "topic", topic, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "joke provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topic": topic,
		"joke":  joke,
	})
}
