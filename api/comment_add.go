package api

import (
	"net/http"

	"vidshare/middleware"
	"vidshare/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) CommentAdd(c *gin.Context) {
	requestID := c.MustGet(middleware.RequestIDKey).(string)

	var data service.CommentRequest
	if err := c.ShouldBindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No comment data",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Catalog.CreateComment(c.Request.Context(), middleware.IdentityFrom(c), data); err != nil {
		abortWithError(c, err, "Failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
	})
}
