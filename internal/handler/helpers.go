package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"incentix/rewardhub/internal/service"
	"incentix/rewardhub/pkg/response"
)

func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid "+param)
		return 0, false
	}
	return id, true
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Every error kind is terminal for the invocation; nothing is retried here.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaused):
		response.ServiceUnavailable(c, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrAlreadyRegistered):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrAlreadyRedeemed):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotRegistered):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidConfig):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrInsufficientInventory),
		errors.Is(err, service.ErrCouponUnavailable):
		response.UnprocessableEntity(c, err.Error())
	default:
		response.InternalError(c, "internal error")
	}
}
