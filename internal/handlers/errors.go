// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kon/onlineshop/internal/services"
	"github.com/kon/onlineshop/internal/utils"
)

// handleServiceError maps the service error taxonomy onto HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	var (
		notFound   *services.NotFoundError
		conflict   *services.ConflictError
		stock      *services.InsufficientStockError
		cartItem   *services.CartItemNotFoundError
		badRequest *services.BadRequestError
	)

	switch {
	case errors.Is(err, services.ErrEmptyCart):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.As(err, &notFound):
		utils.NotFoundResponse(c, notFound.Error())
	case errors.As(err, &cartItem):
		utils.NotFoundResponse(c, cartItem.Error())
	case errors.As(err, &conflict):
		utils.ConflictResponse(c, conflict.Error())
	case errors.As(err, &stock):
		utils.ErrorResponse(c, 409, "INSUFFICIENT_STOCK", stock.Error(), gin.H{
			"product":   stock.ProductName,
			"available": stock.Available,
		})
	case errors.As(err, &badRequest):
		utils.BadRequestResponse(c, badRequest.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
