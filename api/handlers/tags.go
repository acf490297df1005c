package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tube-brief/models"
	"tube-brief/repositories"
)

// ListTagsHandler godoc
// @Summary      List tags
// @Tags         tags
// @Produce      json
// @Success      200  {array}  models.Tag
// @Router       /tags [get]
func ListTagsHandler(tags *repositories.TagRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := tags.ListByUser(c.Request.Context(), UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if items == nil {
			items = []models.Tag{}
		}
		c.JSON(http.StatusOK, items)
	}
}

type createTagRequest struct {
	Name string `json:"name"`
}

// CreateTagHandler godoc
// @Summary      Create tag
// @Tags         tags
// @Param        body  body  createTagRequest  true  "Tag name"
// @Produce      json
// @Success      201  {object}  models.Tag
// @Failure      409  {object}  map[string]string
// @Router       /tags [post]
func CreateTagHandler(tags *repositories.TagRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTagRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
			return
		}

		tag, err := tags.Create(c.Request.Context(), UserID(c), req.Name)
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Tag already exists"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, tag)
	}
}

type attachTagRequest struct {
	TagID string `json:"tagId"`
}

// AttachTagHandler godoc
// @Summary      Attach tag to video
// @Tags         tags
// @Param        id    path  string            true  "YouTube video id"
// @Param        body  body  attachTagRequest  true  "Tag to attach"
// @Produce      json
// @Success      201  {object}  map[string]bool
// @Router       /videos/{id}/tags [post]
func AttachTagHandler(videos *repositories.VideoRepository, tags *repositories.TagRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req attachTagRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.TagID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tagId is required"})
			return
		}
		tagID, err := primitive.ObjectIDFromHex(req.TagID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tagId"})
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

		if err := tags.Attach(c.Request.Context(), video.ID, tagID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true})
	}
}

// DetachTagHandler godoc
// @Summary      Detach tag from video
// @Tags         tags
// @Param        id     path   string  true  "YouTube video id"
// @Param        tagId  query  string  true  "Tag ObjectID"
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /videos/{id}/tags [delete]
func DetachTagHandler(videos *repositories.VideoRepository, tags *repositories.TagRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tagID, err := primitive.ObjectIDFromHex(c.Query("tagId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tagId is required"})
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

		if err := tags.Detach(c.Request.Context(), video.ID, tagID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
