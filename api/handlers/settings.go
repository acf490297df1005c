package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tube-brief/ai"
	"tube-brief/models"
	"tube-brief/repositories"
)

const maskedKeyPrefix = "••••••"

func maskAPIKey(key string) any {
	if key == "" {
		return nil
	}
	suffix := key
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return maskedKeyPrefix + suffix
}

func settingsResponse(s *models.UserSettings) gin.H {
	provider := ai.ProviderGemini
	model := "gemini-2.0-flash"
	apiKey := ""
	baseURL := ""
	if s != nil {
		if s.AIProvider != "" {
			provider = s.AIProvider
		}
		if s.AIModel != "" {
			model = s.AIModel
		}
		apiKey = s.APIKey
		baseURL = s.BaseURL
	}
	return gin.H{
		"aiProvider": provider,
		"aiModel":    model,
		"apiKey":     maskAPIKey(apiKey),
		"hasApiKey":  apiKey != "",
		"baseUrl":    baseURL,
	}
}

// GetSettingsHandler godoc
// @Summary      Get AI settings
// @Description  The caller's AI backend settings; the API key is masked
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /settings [get]
func GetSettingsHandler(settings *repositories.UserSettingsRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := settings.Get(c.Request.Context(), UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, settingsResponse(s))
	}
}

type putSettingsRequest struct {
	AIProvider string `json:"aiProvider"`
	AIModel    string `json:"aiModel"`
	APIKey     string `json:"apiKey"`
	BaseURL    string `json:"baseUrl"`
}

// PutSettingsHandler godoc
// @Summary      Update AI settings
// @Description  Upsert the caller's AI settings; a masked key is ignored
// @Tags         settings
// @Param        body  body  putSettingsRequest  true  "Settings"
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /settings [put]
func PutSettingsHandler(settings *repositories.UserSettingsRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req putSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if req.AIProvider == "" || req.AIModel == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "aiProvider and aiModel are required"})
			return
		}

		userID := UserID(c)
		existing, err := settings.Get(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		next := &models.UserSettings{
			UserID:     userID,
			AIProvider: req.AIProvider,
			AIModel:    req.AIModel,
			BaseURL:    req.BaseURL,
		}
		// keep the stored key unless the client sent a new (unmasked) one
		if existing != nil {
			next.APIKey = existing.APIKey
		}
		if req.APIKey != "" && !strings.HasPrefix(req.APIKey, maskedKeyPrefix) {
			next.APIKey = req.APIKey
		}

		if err := settings.Upsert(c.Request.Context(), next); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, settingsResponse(next))
	}
}
