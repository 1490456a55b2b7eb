package api

import (
	"net/http"

	"vidshare/middleware"

	"github.com/gin-gonic/gin"
)

func (a *API) UserVideos(c *gin.Context) {
	videos, err := a.Catalog.UserVideos(c.Request.Context(), middleware.IdentityFrom(c).ID)
	if err != nil {
		abortWithError(c, err, "Failed to fetch user videos")
		return
	}

	c.JSON(http.StatusOK, videos)
}
