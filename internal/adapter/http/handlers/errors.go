package handlers

import (
	"errors"
	"net/http"

	"bid_pricing/internal/usecase"
	"bid_pricing/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidItemPayload = pkg.NewDomainErrorSimple("INVALID_ITEM_INPUT", "Invalid item payload", http.StatusBadRequest)
)

func mapSyncError(err error) *pkg.AppError {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		return pkg.NewFieldError(ve.Field, ve.Message)
	case errors.Is(err, usecase.ErrInvalidBidID):
		return pkg.NewDomainErrorSimple("INVALID_BID_ID", "Invalid bid id", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrLineItemNotFound):
		return pkg.NewDomainErrorSimple("ITEM_NOT_FOUND", "Line item not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrTotalStoreUnavailable):
		return pkg.NewDomainError("TOTAL_STORE_UNAVAILABLE", "Bid total store unavailable", err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func writeError(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
