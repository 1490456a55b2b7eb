package api

import (
	"net/http"

	"vidshare/middleware"

	"github.com/gin-gonic/gin"
)

// UserClaims echoes the caller's decoded token claims
func (a *API) UserClaims(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.ClaimsFrom(c))
}
