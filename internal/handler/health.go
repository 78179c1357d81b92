package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var started = time.Now()

// Health reports liveness and uptime.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(started).String(),
	})
}
