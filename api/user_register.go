package api

import (
	"errors"
	"net/http"

	"vidshare/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// The registration form posts its fields as a JSON document wrapped in a
// string under "body"
type registerEnvelope struct {
	Body string `json:"body" binding:"required"`
}

type registerBody struct {
	Nickname string `json:"nickname" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet(middleware.RequestIDKey).(string)

	var env registerEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid data",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var data registerBody
	if err := binding.JSON.BindBody([]byte(env.Body), &data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid data",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind registration data",
			zap.Error(err),
			zap.Strings("missing", missingFields(err)),
			zap.String("requestID", requestID),
		)
		return
	}

	if err := a.Accounts.Register(c.Request.Context(), data.Nickname, data.Email, data.Password); err != nil {
		abortWithError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
	})
}

// missingFields lists the fields that failed validation, if that's what err is
func missingFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}

	return fields
}
