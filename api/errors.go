package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"budgetbet/service"
)

// respondError translates a service error into an HTTP response. Domain
// errors map to their kind's status code; anything else is a 500 with a
// generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	if kind, ok := service.KindOf(err); ok {
		c.JSON(statusForKind(kind), gin.H{"error": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"path":      c.Request.URL.Path,
		"requestID": c.GetString("request_id"),
	}).WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func statusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindInvalidState:
		return http.StatusConflict
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
