package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"travel-friend/api/apperr"
	"travel-friend/api/mongodb"
)

type PaymentHandleRequest struct {
	PaymentHandle string `json:"payment_handle" binding:"required"`
}

func GetMe(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	if err := mongodb.EnsureUser(c, claims.Sub, claims.Name, claims.Email, time.Now()); err != nil {
		respondError(c, err)
		return
	}
	user, err := mongodb.GetUser(c, claims.Sub)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": user})
}

// SetPaymentHandle registers the UPI id used to build payment deep links in
// outgoing payment requests.
func SetPaymentHandle(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	var req PaymentHandleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "invalid request body"))
		return
	}
	if !strings.Contains(req.PaymentHandle, "@") {
		respondError(c, apperr.New(apperr.Validation, "payment handle must look like name@bank"))
		return
	}

	now := time.Now()
	if err := mongodb.EnsureUser(c, claims.Sub, claims.Name, claims.Email, now); err != nil {
		respondError(c, err)
		return
	}
	if err := mongodb.SetPaymentHandle(c, claims.Sub, req.PaymentHandle, now); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment handle saved", nil)
}
