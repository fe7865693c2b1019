package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmarych/web_shop/internal/events"
)

// publish sends a domain event best-effort: failures are logged, never
// surfaced to the client.
func publish(c echo.Context, p events.Publisher, topic, key string, event map[string]interface{}) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.Publish(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("event publish error: %v", err)
	}
}
