package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talmo/prompt-canvas/internal/canvas"
	"github.com/talmo/prompt-canvas/internal/editor"
)

type CanvasHandler struct {
	editor *editor.Editor
}

func NewCanvasHandler(ed *editor.Editor) *CanvasHandler {
	return &CanvasHandler{editor: ed}
}

func (h *CanvasHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/canvas", h.getCanvas)
	r.POST("/canvas/reload", h.reloadCanvas)

	prompts := r.Group("/prompts")
	{
		prompts.POST("", h.addPrompt)
		prompts.PATCH("/:id", h.updatePrompt)
		prompts.DELETE("/:id", h.deletePrompt)
		prompts.POST("/:id/move", h.movePrompt)
		prompts.POST("/:id/link-session", h.linkSession)
		prompts.POST("/:id/execution", h.recordExecution)
	}

	sets := r.Group("/sets")
	{
		sets.POST("", h.createSet)
		sets.PATCH("/:id", h.updateSet)
		sets.POST("/:id/activate", h.activateSet)
		sets.DELETE("/:id", h.deleteSet)
	}

	sessions := r.Group("/sessions")
	{
		sessions.POST("", h.addSession)
		sessions.PATCH("/:id", h.updateSession)
	}
}

func (h *CanvasHandler) getCanvas(c *gin.Context) {
	c.JSON(http.StatusOK, h.editor.Document())
}

func (h *CanvasHandler) reloadCanvas(c *gin.Context) {
	if err := h.editor.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}
	c.JSON(http.StatusOK, h.editor.Document())
}

type addPromptPayload struct {
	SetID     string `json:"setId"`
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Content   string `json:"content"`
}

func (h *CanvasHandler) addPrompt(c *gin.Context) {
	var payload addPromptPayload
	if !decodeJSON(c, &payload) {
		return
	}

	prompt, err := h.editor.AddPrompt(editor.AddPromptInput{
		SetID:     payload.SetID,
		SessionID: payload.SessionID,
		Name:      payload.Name,
		Content:   payload.Content,
	})
	if err != nil {
		handleEditorError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prompt)
}

type updatePromptPayload struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

func (h *CanvasHandler) updatePrompt(c *gin.Context) {
	var payload updatePromptPayload
	if !decodeJSON(c, &payload) {
		return
	}

	input := editor.UpdatePromptInput{
		Name:    payload.Name,
		Content: payload.Content,
	}
	if payload.Status != nil {
		status := canvas.Status(*payload.Status)
		if !status.Known() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		input.Status = &status
	}

	prompt, err := h.editor.UpdatePrompt(c.Param("id"), input)
	if err != nil {
		handleEditorError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

func (h *CanvasHandler) deletePrompt(c *gin.Context) {
	if err := h.editor.DeletePrompt(c.Param("id")); err != nil {
		handleEditorError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type movePromptPayload struct {
	SetID     string `json:"setId"`
	SessionID string `json:"sessionId"`
	Index     int    `json:"index"`
}

func (h *CanvasHandler) movePrompt(c *gin.Context) {
	var payload movePromptPayload
	if !decodeJSON(c, &payload) {
		return
	}

	if err := h.editor.MovePrompt(c.Param("id"), payload.SetID, payload.SessionID, payload.Index); err != nil {
		handleEditorError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type linkSessionPayload struct {
	ClaudeSessionID string `json:"claudeSessionId"`
}

func (h *CanvasHandler) linkSession(c *gin.Context) {
	var payload linkSessionPayload
	if !decodeJSON(c, &payload) {
		return
	}

	if err := h.editor.LinkClaudeSession(c.Param("id"), payload.ClaudeSessionID); err != nil {
		handleEditorError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type executionPayload struct {
	ClaudeMessageID string `json:"claudeMessageId"`
	ResponsePreview string `json:"responsePreview"`
}

func (h *CanvasHandler) recordExecution(c *gin.Context) {
	var payload executionPayload
	if !decodeJSON(c, &payload) {
		return
	}

	if err := h.editor.RecordExecution(c.Param("id"), payload.ClaudeMessageID, payload.ResponsePreview); err != nil {
		handleEditorError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setPayload struct {
	Name      *string `json:"name"`
	Collapsed *bool   `json:"collapsed"`
}

func (h *CanvasHandler) createSet(c *gin.Context) {
	var payload setPayload
	if !decodeJSON(c, &payload) {
		return
	}
	if payload.Name == nil || *payload.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	set, err := h.editor.CreateSet(*payload.Name)
	if err != nil {
		handleEditorError(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

func (h *CanvasHandler) updateSet(c *gin.Context) {
	var payload setPayload
	if !decodeJSON(c, &payload) {
		return
	}

	id := c.Param("id")
	if payload.Name != nil {
		if err := h.editor.RenameSet(id, *payload.Name); err != nil {
			handleEditorError(c, err)
			return
		}
	}
	if payload.Collapsed != nil {
		if err := h.editor.SetSetCollapsed(id, *payload.Collapsed); err != nil {
			handleEditorError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *CanvasHandler) activateSet(c *gin.Context) {
	if err := h.editor.ActivateSet(c.Param("id")); err != nil {
		handleEditorError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CanvasHandler) deleteSet(c *gin.Context) {
	if err := h.editor.DeleteSet(c.Param("id")); err != nil {
		handleEditorError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addSessionPayload struct {
	SetID string `json:"setId"`
	Name  string `json:"name"`
}

func (h *CanvasHandler) addSession(c *gin.Context) {
	var payload addSessionPayload
	if !decodeJSON(c, &payload) {
		return
	}

	session, err := h.editor.AddSession(payload.SetID, payload.Name)
	if err != nil {
		handleEditorError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *CanvasHandler) updateSession(c *gin.Context) {
	var payload setPayload
	if !decodeJSON(c, &payload) {
		return
	}

	id := c.Param("id")
	if payload.Name != nil {
		if err := h.editor.RenameSession(id, *payload.Name); err != nil {
			handleEditorError(c, err)
			return
		}
	}
	if payload.Collapsed != nil {
		if err := h.editor.SetSessionCollapsed(id, *payload.Collapsed); err != nil {
			handleEditorError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func decodeJSON(c *gin.Context, dst any) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return false
	}
	return true
}

func handleEditorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, editor.ErrPromptNotFound),
		errors.Is(err, editor.ErrSetNotFound),
		errors.Is(err, editor.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
