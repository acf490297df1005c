package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"tube-brief/api/handlers"
	"tube-brief/db"
	"tube-brief/repositories"
	"tube-brief/services"
	"tube-brief/transcript"
)

// Deps carries the wired collaborators for the HTTP surface.
type Deps struct {
	Videos      *repositories.VideoRepository
	Summaries   *repositories.SummaryRepository
	Tags        *repositories.TagRepository
	Settings    *repositories.UserSettingsRepository
	Transcripts *transcript.Client
	SummarySvc  *services.SummaryService
	ChatSvc     *services.ChatService
}

func New(deps Deps) *gin.Engine {
	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	api.Use(handlers.RequireUser())
	{
		api.GET("/videos", handlers.ListVideosHandler(deps.Videos))
		api.GET("/videos/:id", handlers.GetVideoHandler(deps.Videos))
		api.PATCH("/videos/:id", handlers.UpdateVideoHandler(deps.Videos))
		api.GET("/videos/:id/transcript", handlers.GetTranscriptHandler(deps.Videos, deps.Transcripts))

		api.GET("/videos/:id/summary", handlers.ListSummariesHandler(deps.Videos, deps.Summaries))
		api.POST("/videos/:id/summary", handlers.StartSummaryHandler(deps.SummarySvc))
		api.DELETE("/videos/:id/summary", handlers.DeleteSummaryHandler(deps.Videos, deps.Summaries))
		api.POST("/videos/:id/summary/translate", handlers.TranslateSummaryHandler(deps.ChatSvc))

		api.GET("/videos/:id/chat", handlers.GetChatHandler(deps.ChatSvc))
		api.POST("/videos/:id/chat", handlers.PostChatHandler(deps.ChatSvc))

		api.GET("/tags", handlers.ListTagsHandler(deps.Tags))
		api.POST("/tags", handlers.CreateTagHandler(deps.Tags))
		api.POST("/videos/:id/tags", handlers.AttachTagHandler(deps.Videos, deps.Tags))
		api.DELETE("/videos/:id/tags", handlers.DetachTagHandler(deps.Videos, deps.Tags))

		api.GET("/settings", handlers.GetSettingsHandler(deps.Settings))
		api.PUT("/settings", handlers.PutSettingsHandler(deps.Settings))
	}

	return r
}
