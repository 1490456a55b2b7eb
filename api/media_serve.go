package api

import (
	"net/http"

	"vidshare/middleware"

	"github.com/gin-gonic/gin"
)

// mediaServer serves files of one media directory. The requested name gets
// suffix appended before the lookup.
func (a *API) mediaServer(dir, suffix string) gin.HandlerFunc {
	fs := a.Files.Dir(dir)

	return func(c *gin.Context) {
		requestID := c.MustGet(middleware.RequestIDKey).(string)
		name := c.Param("name") + suffix

		f, err := fs.Open(name)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	}
}
