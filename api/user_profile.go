package api

import (
	"net/http"

	"vidshare/middleware"

	"github.com/gin-gonic/gin"
)

// UserProfile returns the username and email of the caller
func (a *API) UserProfile(c *gin.Context) {
	profile, err := a.Accounts.Profile(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		abortWithError(c, err, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}
