package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers liveness probes. When ffmpeg jobs are processed by this
// instance the amount waiting for a worker is reported in X-Queue-Pending.
func (a *API) Heartbeat(c *gin.Context) {
	if a.JobQueue != nil {
		c.Header("X-Queue-Pending", strconv.Itoa(a.JobQueue.Pending()))
	}

	c.Status(http.StatusOK)
}
