package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 15 * time.Second

// streamSimulations pushes a summary of every completed simulation to the
// client as server-sent events until it disconnects or the broadcaster
// shuts down.
func (h *Handler) streamSimulations(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates are not available"})
		return
	}

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"subscriber_id": id})
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case s, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("simulation", s)
			return true
		case t := <-keepAlive.C:
			c.SSEvent("ping", t.UTC())
			return true
		}
	})
}
