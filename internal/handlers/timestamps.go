package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce/internal/models"
	"workforce/internal/service"
)

// CreateTimestamp records an attendance photo. An empty direction reads the
// optional "type" form field instead.
func (h HandlerSet) CreateTimestamp(direction models.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		dir := direction
		if dir == "" {
			dir = models.Direction(c.PostForm("type"))
		}

		picture, closeFn, err := formFile(c, "picture")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		defer closeFn()

		result, err := h.timestamps.Create(c.Request.Context(), service.CreateTimestampInput{
			UserID:    user.ID,
			Email:     user.Email,
			Direction: dir,
			Picture:   picture,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		key := "timestamp"
		if direction == "" {
			key = "timestampDoc"
		}
		c.JSON(http.StatusCreated, gin.H{
			key:          newTimestampResponse(result.Timestamp),
			"pictureUrl": result.PictureURL,
		})
	}
}

func (h HandlerSet) ListTimestamps(direction models.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.timestamps.ListByDirection(c.Request.Context(), direction)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newTimestampResponses(items))
	}
}

func (h HandlerSet) UserTimestamps(c *gin.Context) {
	items, err := h.timestamps.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTimestampResponses(items))
}

func (h HandlerSet) DeleteTimestamp(c *gin.Context) {
	if err := h.timestamps.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "timestamp deleted"})
}

type deleteImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (h HandlerSet) DeleteTimestampImage(c *gin.Context) {
	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ts, err := h.timestamps.DeletePicture(c.Request.Context(), c.Param("id"), req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "image deleted",
		"timestamp": newTimestampResponse(ts),
	})
}
