package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/hashyield/powergrid/internal/catalog/domain"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	orderdomain "github.com/hashyield/powergrid/internal/order/domain"
	positiondomain "github.com/hashyield/powergrid/internal/position/domain"
	configdomain "github.com/hashyield/powergrid/internal/systemconfig/domain"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isBusinessError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	default:
		// ErrBalanceConflict lands here intentionally: the transaction was
		// rolled back and the caller may retry the whole operation.
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrInvalidPaymentRail),
		errors.Is(err, orderdomain.ErrTierNotHigher),
		errors.Is(err, orderdomain.ErrUpgradeDisabled),
		errors.Is(err, ledgerdomain.ErrInvalidType):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, positiondomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, configdomain.ErrKeyNotFound):
		return true
	default:
		return false
	}
}

func isBusinessError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotPending),
		errors.Is(err, orderdomain.ErrPositionNotActive),
		errors.Is(err, ledgerdomain.ErrEntryNotPending):
		return true
	default:
		return false
	}
}
