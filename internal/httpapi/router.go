package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talmo/prompt-canvas/internal/editor"
	"github.com/talmo/prompt-canvas/internal/service"
)

func NewRouter(ed *editor.Editor, index *service.SessionIndex, summarizer *service.SummarizerService, keys *service.APIKeyService) http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	canvasHandler := NewCanvasHandler(ed)
	sessionHandler := NewClaudeSessionHandler(index, summarizer)
	keyHandler := NewAPIKeyHandler(keys)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		canvasHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api.Group("/claude-sessions"))
		keyHandler.RegisterRoutes(api.Group("/api-keys"))
	}

	return r
}
