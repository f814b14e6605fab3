package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-friend/api/apperr"
	"travel-friend/api/logger"
	"travel-friend/api/models"
)

// currentUser pulls the authenticated claims set by the auth middleware.
func currentUser(c *gin.Context) (*models.AuthClaims, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return nil, false
	}
	claims, ok := user.(*models.AuthClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid user claims"})
		return nil, false
	}
	return claims, true
}

func respond(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError translates a classified error into the response envelope.
// Internal detail is hidden outside of debug mode.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Get().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		if gin.Mode() == gin.ReleaseMode {
			message = "internal server error"
		}
	}
	c.JSON(status, gin.H{"success": false, "message": message})
}
