package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travel-friend/api/apperr"
	"travel-friend/api/mongodb"
)

func GetNotifications(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	notifications, err := mongodb.GetNotifications(c, claims.Sub)
	if err != nil {
		respondError(c, err)
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}
	respond(c, http.StatusOK, "", gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func MarkNotificationRead(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	err := mongodb.MarkNotificationRead(c, claims.Sub, c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(c, apperr.Wrap(err, apperr.NotFound, err.Error()))
			return
		}
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Notification marked read", nil)
}

func MarkAllNotificationsRead(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	if err := mongodb.MarkAllNotificationsRead(c, claims.Sub); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "All notifications marked read", nil)
}
