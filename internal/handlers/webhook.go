package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmarych/web_shop/internal/events"
	"github.com/dmarych/web_shop/internal/payments"
	"github.com/dmarych/web_shop/internal/service/checkout"
)

type WebhookHandler struct {
	Checkout       *checkout.Service
	Publisher      events.Publisher
	EndpointSecret string
}

// Handle receives the payment gateway's callback. A bad signature is 400
// and nothing is processed. A verified success event runs reconciliation;
// if that does not complete the response is non-2xx so the gateway
// redelivers. Redelivery is safe because both reconciliation steps are
// idempotent.
// Unknown event types are acknowledged without any state transition.
func (h *WebhookHandler) Handle(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read body"})
	}

	event, err := payments.VerifyEvent(payload, c.Request().Header.Get("Stripe-Signature"), h.EndpointSecret)
	if err != nil {
		c.Logger().Errorf("webhook signature verification failed: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	switch event.Type {
	case payments.EventPaymentSucceeded:
		if err := h.Checkout.HandlePaymentSucceeded(c.Request().Context(), event.IntentID); err != nil {
			c.Logger().Errorf("reconciliation incomplete for intent %s: %v", event.IntentID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconciliation incomplete"})
		}
		publish(c, h.Publisher, events.TopicOrders, event.IntentID, map[string]interface{}{
			"type":            "order_paid",
			"paymentIntentID": event.IntentID,
		})
	}

	return c.NoContent(http.StatusOK)
}
