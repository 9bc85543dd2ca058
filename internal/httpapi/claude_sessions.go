package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talmo/prompt-canvas/internal/service"
	"github.com/talmo/prompt-canvas/internal/sessionlog"
)

type ClaudeSessionHandler struct {
	index      *service.SessionIndex
	summarizer *service.SummarizerService
}

func NewClaudeSessionHandler(index *service.SessionIndex, summarizer *service.SummarizerService) *ClaudeSessionHandler {
	return &ClaudeSessionHandler{index: index, summarizer: summarizer}
}

func (h *ClaudeSessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.listSessions)
	r.GET("/:id", h.getSession)
	r.POST("/:id/summarize", h.summarizeSession)
}

func (h *ClaudeSessionHandler) listSessions(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("refresh") == "true" {
		if _, err := h.index.Refresh(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
			return
		}
	}

	sessions, err := h.index.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *ClaudeSessionHandler) getSession(c *gin.Context) {
	summary, err := h.index.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type summarizePayload struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (h *ClaudeSessionHandler) summarizeSession(c *gin.Context) {
	var payload summarizePayload
	if !decodeJSON(c, &payload) {
		return
	}
	if payload.Provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider is required"})
		return
	}

	summary, err := h.summarizer.Summarize(c.Request.Context(), c.Param("id"), payload.Provider, payload.Model)
	if err != nil {
		handleSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotIndexed),
		errors.Is(err, sessionlog.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrProviderNotSupported),
		errors.Is(err, service.ErrMissingAPIKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
