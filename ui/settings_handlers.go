package ui

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/domain/chat"
	"datalens/domain/core"
)

// settingsView is what clients see. The stored key never leaves the server.
func settingsView(s *chat.Settings) gin.H {
	return gin.H{
		"provider":    s.Provider,
		"api_key":     s.MaskedKey(),
		"model":       s.Model,
		"temperature": s.Temperature,
		"max_tokens":  s.MaxTokens,
		"configured":  s.Configured(),
		"updated_at":  s.UpdatedAt,
	}
}

func (s *Server) handleGetSettings(c *gin.Context) {
	settings, err := s.settings.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsView(settings))
}

type updateSettingsRequest struct {
	Provider    string   `json:"provider" binding:"required"`
	APIKey      string   `json:"api_key"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

// handleUpdateSettings replaces provider and model. An empty api_key keeps
// the stored one, so clients can switch models without re-entering secrets;
// omitted temperature and max_tokens keep their stored values the same way.
func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !chat.ValidProvider(req.Provider) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown provider %q", req.Provider)})
		return
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "temperature must be between 0 and 2"})
		return
	}
	if req.MaxTokens != nil && *req.MaxTokens < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_tokens must not be negative"})
		return
	}

	current, err := s.settings.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	next := chat.Settings{
		Provider:    req.Provider,
		APIKey:      req.APIKey,
		Model:       req.Model,
		Temperature: current.Temperature,
		MaxTokens:   current.MaxTokens,
		UpdatedAt:   core.Now(),
	}
	if next.APIKey == "" {
		next.APIKey = current.APIKey
	}
	if req.Temperature != nil {
		next.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		next.MaxTokens = *req.MaxTokens
	}

	if err := s.settings.SaveSettings(c.Request.Context(), &next); err != nil {
		respondError(c, err)
		return
	}

	s.logger.Info("Settings updated: provider=%s model=%s", next.Provider, next.Model)
	c.JSON(http.StatusOK, settingsView(&next))
}
