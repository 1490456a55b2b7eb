package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// VideoList returns every video together with its creator and comments
func (a *API) VideoList(c *gin.Context) {
	videos, err := a.Catalog.ListVideos(c.Request.Context())
	if err != nil {
		abortWithError(c, err, "Failed to list videos")
		return
	}

	c.JSON(http.StatusOK, videos)
}
