package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmarych/web_shop/internal/config"
	"github.com/dmarych/web_shop/internal/es"
	"github.com/dmarych/web_shop/internal/events"
	"github.com/dmarych/web_shop/internal/handlers"
	"github.com/dmarych/web_shop/internal/logging"
	authmw "github.com/dmarych/web_shop/internal/middleware/auth"
	"github.com/dmarych/web_shop/internal/payments"
	"github.com/dmarych/web_shop/internal/service/cart"
	"github.com/dmarych/web_shop/internal/service/checkout"
	"github.com/dmarych/web_shop/internal/service/order"
	"github.com/dmarych/web_shop/internal/service/search"
	httpserver "github.com/dmarych/web_shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{configuration.KAFKA_ADDRESS})
		publisher = producer
	} else {
		logger.Warn("KAFKA_ADDRESS not set, domain events disabled")
	}

	var searchSvc *search.Service
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchSvc = search.New(esClient, "products")
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	gateway := payments.NewStripeGateway(configuration.STRIPE_SECRET_KEY)
	tokenSecret := []byte(configuration.TOKEN_SECRET)

	cartSvc := cart.NewService(db)
	orderSvc := order.NewService(db)
	checkoutSvc := checkout.NewService(db, gateway, configuration.CURRENCY)

	var allowedIPs []string
	if configuration.STRIPE_ALLOWED_IPS != "" {
		for _, ip := range strings.Split(configuration.STRIPE_ALLOWED_IPS, ",") {
			allowedIPs = append(allowedIPs, strings.TrimSpace(ip))
		}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))

	deps := httpserver.Deps{
		Auth:           &authmw.Middleware{DB: db, TokenSecret: tokenSecret},
		AuthHandler:    &handlers.AuthHandler{DB: db, TokenSecret: tokenSecret, Publisher: publisher},
		ProductHandler: &handlers.ProductHandler{DB: db, Publisher: publisher, Search: searchSvc},
		CartHandler:    &handlers.CartHandler{Carts: cartSvc, Checkout: checkoutSvc, Publisher: publisher},
		OrderHandler:   &handlers.OrderHandler{Orders: orderSvc},
		SearchHandler:  &handlers.SearchHandler{Service: searchSvc},
		WebhookHandler: &handlers.WebhookHandler{Checkout: checkoutSvc, Publisher: publisher, EndpointSecret: configuration.STRIPE_ENDPOINT_SECRET},
		StripeIPs:      allowedIPs,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()
	logger.Info("server started", "port", configuration.PORT)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "err", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "err", err)
		}
	}

	logger.Info("shutdown complete")
}
