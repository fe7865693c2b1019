package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/dmarych/web_shop/internal/handlers"
	authmw "github.com/dmarych/web_shop/internal/middleware/auth"
	"github.com/dmarych/web_shop/internal/middleware/stripeip"
)

type Deps struct {
	Auth           *authmw.Middleware
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	OrderHandler   *handlers.OrderHandler
	SearchHandler  *handlers.SearchHandler
	WebhookHandler *handlers.WebhookHandler
	StripeIPs      []string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	users := e.Group("/users")
	users.POST("/signup", d.AuthHandler.Signup)
	users.POST("/login", d.AuthHandler.Login)
	users.GET("", d.AuthHandler.ListUsers, d.Auth.Authenticate, d.Auth.RequireAdmin)
	users.GET("/:userId", d.AuthHandler.GetUser, d.Auth.Authenticate, d.Auth.RequireSelfOrAdmin("userId"))
	users.DELETE("/:userId", d.AuthHandler.DeleteUser, d.Auth.Authenticate, d.Auth.RequireSelfOrAdmin("userId"))
	users.GET("/:userId/orders", d.OrderHandler.ListByUser, d.Auth.Authenticate, d.Auth.RequireSelfOrAdmin("userId"))

	products := e.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.SearchHandler.Search)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.Auth.Authenticate, d.Auth.RequireAdmin)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, d.Auth.Authenticate, d.Auth.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Auth.Authenticate, d.Auth.RequireAdmin)

	cart := e.Group("/cart", d.Auth.Authenticate)
	cart.POST("/add", d.CartHandler.AddItem)
	cart.POST("/remove", d.CartHandler.RemoveItem)
	cart.POST("/checkout", d.CartHandler.DoCheckout)

	// the payment provider authenticates by source address and payload
	// signature, not by bearer token
	e.POST("/webhook", d.WebhookHandler.Handle, stripeip.Allowlist(d.StripeIPs))
}
