package handler

import (
	"errors"
	"net/http"

	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// respondServiceError translates the service error taxonomy to HTTP. Race
// losses map to 409 so clients know to refresh and retry.
func respondServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid_transition", err.Error()))
	case errors.Is(err, service.ErrRequestNotOpen):
		return c.JSON(http.StatusConflict, NewErrorResponse("request_not_open", err.Error()))
	case errors.Is(err, service.ErrNegotiationClosed):
		return c.JSON(http.StatusConflict, NewErrorResponse("negotiation_closed", err.Error()))
	case errors.Is(err, service.ErrNotAgreed):
		return c.JSON(http.StatusConflict, NewErrorResponse("not_agreed", err.Error()))
	case errors.Is(err, service.ErrInvalidOffer):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_offer", err.Error()))
	case errors.Is(err, service.ErrInvalidPrice):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_price", err.Error()))
	case errors.Is(err, service.ErrSelfOffer):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("self_offer", err.Error()))
	case errors.Is(err, currency.ErrUnknownCurrency):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_currency", err.Error()))
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
}
