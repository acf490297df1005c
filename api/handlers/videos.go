package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"tube-brief/models"
	"tube-brief/repositories"
	"tube-brief/transcript"
)

// ListVideosHandler godoc
// @Summary      List videos
// @Description  List the caller's videos with optional filters
// @Tags         videos
// @Param        playlist        query  string  false  "Playlist id filter"
// @Param        read            query  bool    false  "Filter by read flag"
// @Param        include_removed query  bool    false  "Include removed videos"
// @Produce      json
// @Success      200  {array}  models.Video
// @Router       /videos [get]
func ListVideosHandler(videos *repositories.VideoRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := repositories.ListVideosOptions{
			PlaylistID:     c.Query("playlist"),
			IncludeRemoved: c.Query("include_removed") == "true",
		}
		if v, ok := c.GetQuery("read"); ok {
			isRead := v == "true"
			opts.IsRead = &isRead
		}
		items, err := videos.List(c.Request.Context(), UserID(c), opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if items == nil {
			items = []models.Video{}
		}
		c.JSON(http.StatusOK, items)
	}
}

// GetVideoHandler godoc
// @Summary      Get video
// @Tags         videos
// @Param        id   path   string  true  "YouTube video id"
// @Produce      json
// @Success      200  {object}  models.Video
// @Router       /videos/{id} [get]
func GetVideoHandler(videos *repositories.VideoRepository) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, video)
	}
}

type updateVideoRequest struct {
	IsRead    *bool `json:"isRead"`
	IsRemoved *bool `json:"isRemoved"`
}

// UpdateVideoHandler godoc
// @Summary      Update video flags
// @Description  Set the isRead / isRemoved flags on a video
// @Tags         videos
// @Param        id    path  string              true  "YouTube video id"
// @Param        body  body  updateVideoRequest  true  "Flags to change"
// @Produce      json
// @Success      200  {object}  models.Video
// @Router       /videos/{id} [patch]
func UpdateVideoHandler(videos *repositories.VideoRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateVideoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
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

		if err := videos.UpdateFlags(c.Request.Context(), video.ID, req.IsRead, req.IsRemoved); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		updated, err := videos.FindByID(c.Request.Context(), video.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// GetTranscriptHandler godoc
// @Summary      Get transcript
// @Description  Return the cached or freshly fetched transcript segments
// @Tags         videos
// @Param        id    path   string  true   "YouTube video id"
// @Param        lang  query  string  false  "Preferred caption language"
// @Produce      json
// @Success      200  {object}  transcript.Result
// @Router       /videos/{id}/transcript [get]
func GetTranscriptHandler(videos *repositories.VideoRepository, transcripts *transcript.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		youtubeID := c.Param("id")

		if _, err := videos.FindByYouTubeID(c.Request.Context(), UserID(c), youtubeID); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		result, err := transcripts.Fetch(c.Request.Context(), youtubeID, c.DefaultQuery("lang", "en"))
		if err != nil {
			status := http.StatusBadGateway
			if err == transcript.ErrTranscriptsDisabled || err == transcript.ErrNoTranscript {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
