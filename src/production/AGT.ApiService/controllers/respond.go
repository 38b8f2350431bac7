package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

// statusFor maps the shared error taxonomy onto HTTP statuses. Every
// handler goes through here so the mapping lives in one place.
func statusFor(err error) int {
	switch agtmodels.KindOf(err) {
	case agtmodels.KindUnauthenticated:
		return http.StatusUnauthorized
	case agtmodels.KindPermissionDenied:
		return http.StatusForbidden
	case agtmodels.KindNotFound:
		return http.StatusNotFound
	case agtmodels.KindInvalidInput:
		return http.StatusBadRequest
	case agtmodels.KindUnavailable:
		return http.StatusBadGateway
	case agtmodels.KindConfig:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"kind":  agtmodels.KindOf(err).String(),
	})
}
