package api

import (
	"errors"
	"net/http"
	"strings"

	"vidshare/middleware"
	"vidshare/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VideoUpload stores the multipart "video" file under the "title" field
func (a *API) VideoUpload(c *gin.Context) {
	requestID := c.MustGet(middleware.RequestIDKey).(string)
	identity := middleware.IdentityFrom(c)

	req := service.UploadRequest{
		UserID: identity.ID,
	}

	fh, err := c.FormFile("video")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to open uploaded file", zap.Error(err), zap.String("requestID", requestID))
			return
		}
		defer f.Close()

		req.Filename = fh.Filename
		req.Body = f
	case errors.As(err, new(*http.MaxBytesError)):
		abortWithError(c, err, "Upload too large")
		return
	default:
		// A file part sent without a filename is parsed as a plain value
		if form := c.Request.MultipartForm; form != nil {
			if vals, ok := form.Value["video"]; ok && len(vals) > 0 {
				req.Body = strings.NewReader(vals[0])
			}
		}
	}

	req.Title, _ = c.GetPostForm("title")

	res, err := a.Ingestor.Upload(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err, "Failed to upload video")
		return
	}

	c.JSON(http.StatusCreated, res)
}
