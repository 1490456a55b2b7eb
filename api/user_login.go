package api

import (
	"net/http"

	"vidshare/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) UserLogin(c *gin.Context) {
	requestID := c.MustGet(middleware.RequestIDKey).(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	token, err := a.Accounts.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		abortWithError(c, err, "Failed to log in user")
		return
	}

	// Browsers get the token as a cookie too, the JWT middleware accepts either
	c.SetCookie("auth_token", token, a.opts.CookieMaxAge, "/", "", a.opts.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
	})
}
