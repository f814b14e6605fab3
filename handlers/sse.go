package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-friend/api/logger"
	"travel-friend/api/middleware"
	"travel-friend/api/sse"
)

// HandleNotificationStream streams the caller's notifications as
// server-sent events. The token rides in a query parameter because
// EventSource cannot set headers.
func HandleNotificationStream(c *gin.Context) {
	tokenString := c.DefaultQuery("token", "")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Missing or invalid token"})
		return
	}
	claims, err := middleware.ParseClaims(tokenString)
	if err != nil {
		logger.Get().Warn("rejected stream token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized: " + err.Error()})
		return
	}

	stream := sse.Register(claims.Sub)
	defer sse.Unregister(claims.Sub, stream)

	logger.Get().Info("notification stream opened",
		zap.String("user_id", claims.Sub))
	defer logger.Get().Info("notification stream closed",
		zap.String("user_id", claims.Sub))

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "Streaming unsupported!")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-stream.Messages:
			if !ok {
				return false
			}
			c.Writer.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()
			return true
		case <-c.Request.Context().Done():
			return false
		case <-stream.Done:
			return false
		}
	})
}
