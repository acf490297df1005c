package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tube-brief/models"
	"tube-brief/repositories"
	"tube-brief/services"
)

// ListSummariesHandler godoc
// @Summary      List summaries
// @Description  All summarization attempts for a video, newest first
// @Tags         summaries
// @Param        id   path   string  true  "YouTube video id"
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /videos/{id}/summary [get]
func ListSummariesHandler(videos *repositories.VideoRepository, summaries *repositories.SummaryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := videos.FindByYouTubeID(c.Request.Context(), UserID(c), c.Param("id"))
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items, err := summaries.ListByVideo(c.Request.Context(), video.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(items) == 0 {
			c.JSON(http.StatusOK, gin.H{"summaries": []models.Summary{}, "status": "none"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"summaries": items})
	}
}

type startSummaryRequest struct {
	TargetLanguage string `json:"targetLanguage"`
}

// StartSummaryHandler godoc
// @Summary      Trigger summarization
// @Description  Starts a new summarization attempt; never overwrites history
// @Tags         summaries
// @Param        id    path  string               true   "YouTube video id"
// @Param        body  body  startSummaryRequest  false  "Options"
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /videos/{id}/summary [post]
func StartSummaryHandler(svc *services.SummaryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startSummaryRequest
		// an empty or invalid body just means default language
		_ = c.ShouldBindJSON(&req)

		summary, err := svc.Start(c.Request.Context(), UserID(c), c.Param("id"), req.TargetLanguage)
		switch {
		case err == mongo.ErrNoDocuments:
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		case errors.Is(err, services.ErrAlreadyProcessing):
			c.JSON(http.StatusConflict, gin.H{"error": "Already processing"})
			return
		case errors.Is(err, services.ErrQuotaExceeded):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Daily summary quota exceeded"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":        models.SummaryStatusProcessing,
			"summaryId":     summary.ID.Hex(),
			"provider":      summary.Provider,
			"providerModel": summary.ProviderModel,
			"message":       "Summarization started",
		})
	}
}

// DeleteSummaryHandler godoc
// @Summary      Delete summary
// @Tags         summaries
// @Param        id         path   string  true  "YouTube video id"
// @Param        summaryId  query  string  true  "Summary ObjectID"
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /videos/{id}/summary [delete]
func DeleteSummaryHandler(videos *repositories.VideoRepository, summaries *repositories.SummaryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaryID, err := primitive.ObjectIDFromHex(c.Query("summaryId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "summaryId required"})
			return
		}

		video, err := videos.FindByYouTubeID(c.Request.Context(), UserID(c), c.Param("id"))
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		summary, err := summaries.FindByID(c.Request.Context(), summaryID)
		if err != nil || summary.VideoID != video.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Summary not found"})
			return
		}

		if err := summaries.Delete(c.Request.Context(), summaryID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Summary deleted"})
	}
}

type translateRequest struct {
	SummaryID      string `json:"summaryId"`
	TargetLanguage string `json:"targetLanguage"`
}

// TranslateSummaryHandler godoc
// @Summary      Translate summary
// @Description  Translate an existing summary on demand; cached per language
// @Tags         summaries
// @Param        id    path  string            true  "YouTube video id"
// @Param        body  body  translateRequest  true  "Target"
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /videos/{id}/summary/translate [post]
func TranslateSummaryHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req translateRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.SummaryID == "" || req.TargetLanguage == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "summaryId and targetLanguage required"})
			return
		}
		summaryID, err := primitive.ObjectIDFromHex(req.SummaryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid summaryId"})
			return
		}

		markdown, cached, err := svc.Translate(c.Request.Context(), UserID(c), summaryID, req.TargetLanguage)
		switch {
		case err == mongo.ErrNoDocuments:
			c.JSON(http.StatusNotFound, gin.H{"error": "Summary not found"})
			return
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
			return
		case errors.Is(err, services.ErrEmptySummary):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Original summary content is empty"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Translation failed", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"markdown": markdown, "cached": cached})
	}
}
