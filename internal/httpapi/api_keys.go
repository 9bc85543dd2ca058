package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talmo/prompt-canvas/internal/service"
)

type APIKeyHandler struct {
	keys *service.APIKeyService
}

func NewAPIKeyHandler(keys *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

func (h *APIKeyHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.listKeys)
	r.PUT("/:provider", h.upsertKey)
	r.DELETE("/:provider", h.deleteKey)
}

type apiKeyView struct {
	ID           string `json:"id"`
	ProviderName string `json:"providerName"`
	UpdatedAt    string `json:"updatedAt"`
}

// listKeys never returns key material, encrypted or otherwise.
func (h *APIKeyHandler) listKeys(c *gin.Context) {
	keys, err := h.keys.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	views := make([]apiKeyView, 0, len(keys))
	for _, key := range keys {
		views = append(views, apiKeyView{
			ID:           key.ID,
			ProviderName: key.ProviderName,
			UpdatedAt:    key.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, views)
}

type upsertKeyPayload struct {
	Key string `json:"key"`
}

func (h *APIKeyHandler) upsertKey(c *gin.Context) {
	var payload upsertKeyPayload
	if !decodeJSON(c, &payload) {
		return
	}
	if payload.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	key, err := h.keys.Upsert(c.Request.Context(), c.Param("provider"), payload.Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, apiKeyView{
		ID:           key.ID,
		ProviderName: key.ProviderName,
		UpdatedAt:    key.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *APIKeyHandler) deleteKey(c *gin.Context) {
	if err := h.keys.Delete(c.Request.Context(), c.Param("provider")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}
