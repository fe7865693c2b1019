package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmarych/web_shop/internal/events"
	authmw "github.com/dmarych/web_shop/internal/middleware/auth"
	"github.com/dmarych/web_shop/internal/service/cart"
	"github.com/dmarych/web_shop/internal/service/checkout"
)

type CartHandler struct {
	Carts     *cart.Service
	Checkout  *checkout.Service
	Publisher events.Publisher
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var req struct {
		UserID    uint `json:"userId"`
		ProductID uint `json:"productId"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !authmw.Allow(authmw.CallerFrom(c), req.UserID, authmw.Self) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden. You cannot perform this action !"})
	}

	result, err := h.Carts.AddItem(c.Request().Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return cartError(c, err)
	}

	publish(c, h.Publisher, events.TopicCarts, fmt.Sprint(req.UserID), map[string]interface{}{
		"type":      "cart_item_added",
		"userID":    req.UserID,
		"productID": req.ProductID,
		"quantity":  req.Quantity,
	})

	return c.JSON(http.StatusOK, result)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	var req struct {
		UserID    uint `json:"userId"`
		ProductID uint `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !authmw.Allow(authmw.CallerFrom(c), req.UserID, authmw.Self) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden. You cannot perform this action !"})
	}

	result, err := h.Carts.RemoveItem(c.Request().Context(), req.UserID, req.ProductID)
	if err != nil {
		return cartError(c, err)
	}

	publish(c, h.Publisher, events.TopicCarts, fmt.Sprint(req.UserID), map[string]interface{}{
		"type":      "cart_item_removed",
		"userID":    req.UserID,
		"productID": req.ProductID,
	})

	return c.JSON(http.StatusOK, result)
}

// DoCheckout starts the payment workflow: the response carries the client
// secret the frontend needs to complete the charge; the webhook finishes
// the rest asynchronously.
func (h *CartHandler) DoCheckout(c echo.Context) error {
	var req struct {
		UserID uint `json:"userId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !authmw.Allow(authmw.CallerFrom(c), req.UserID, authmw.Self) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden. You cannot perform this action !"})
	}

	result, clientSecret, err := h.Checkout.Checkout(c.Request().Context(), req.UserID)
	if err != nil {
		return cartError(c, err)
	}

	publish(c, h.Publisher, events.TopicOrders, fmt.Sprint(req.UserID), map[string]interface{}{
		"type":            "checkout_started",
		"userID":          req.UserID,
		"paymentIntentID": result.PaymentIntentID,
		"total":           result.TotalPrice,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"cart":          result,
		"client_secret": clientSecret,
	})
}

func cartError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, checkout.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Your cart is empty !"})
	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}
