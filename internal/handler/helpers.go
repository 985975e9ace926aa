package handler

import (
	"errors"
	"net/http"

	"bazaar-chat/internal/transport/httpdto"
	bazaar_errors "bazaar-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(value)
}

// respondError maps the error taxonomy onto HTTP statuses. Store failures
// come back as 502 so callers can tell a backend blip from a bad request.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bazaar_errors.ErrValidation):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
	case errors.Is(err, bazaar_errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	case errors.Is(err, bazaar_errors.ErrAccessDenied):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("access denied", "ACCESS_DENIED"))
	case errors.Is(err, bazaar_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not found", "NOT_FOUND"))
	case errors.Is(err, bazaar_errors.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(err.Error(), "RATE_LIMITED"))
	case bazaar_errors.IsStore(err):
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse("backing store unavailable", "STORE_ERROR"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
	}
}
