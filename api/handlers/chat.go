package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"tube-brief/models"
	"tube-brief/services"
)

// GetChatHandler godoc
// @Summary      Chat history
// @Description  Chat history for a video, with suggested questions when empty
// @Tags         chat
// @Param        id   path   string  true  "YouTube video id"
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /videos/{id}/chat [get]
func GetChatHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages, suggestions, err := svc.History(c.Request.Context(), UserID(c), c.Param("id"))
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if messages == nil {
			messages = []models.ChatMessage{}
		}
		if suggestions == nil {
			suggestions = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages, "suggestions": suggestions})
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// PostChatHandler godoc
// @Summary      Send chat message
// @Tags         chat
// @Param        id    path  string       true  "YouTube video id"
// @Param        body  body  chatRequest  true  "Message"
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /videos/{id}/chat [post]
func PostChatHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}

		message, err := svc.Post(c.Request.Context(), UserID(c), c.Param("id"), req.Message)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}
