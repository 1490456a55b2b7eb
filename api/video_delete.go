package api

import (
	"net/http"
	"strconv"

	"vidshare/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) VideoDelete(c *gin.Context) {
	requestID := c.MustGet(middleware.RequestIDKey).(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid video ID",
			"requestID": requestID,
		})
		return
	}

	if err := a.Catalog.DeleteVideo(c.Request.Context(), uint(id)); err != nil {
		abortWithError(c, err, "Failed to delete video")
		return
	}

	zap.L().Debug("Video deleted", zap.Uint64("id", id), zap.String("by", c.GetString(middleware.UserIDKey)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Video deleted successfully",
	})
}
