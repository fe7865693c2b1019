package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmarych/web_shop/internal/service/order"
)

type OrderHandler struct {
	Orders *order.Service
}

// ListByUser returns all of a user's orders. Route-level middleware has
// already checked self-or-admin against the userId parameter.
func (h *OrderHandler) ListByUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	orders, err := h.Orders.ByUser(c.Request().Context(), uint(id))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, orders)
}
