package checkout

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dmarych/web_shop/internal/models"
	"github.com/dmarych/web_shop/internal/payments"
	"github.com/dmarych/web_shop/internal/service/cart"
	"github.com/dmarych/web_shop/internal/service/order"
)

var ErrEmptyCart = errors.New("your cart is empty")

// Service orchestrates the payment lifecycle: checkout creates a gateway
// intent, stamps the cart and snapshots it into a Pending order; the
// webhook's success event later marks the order Paid and empties the cart.
type Service struct {
	db       *gorm.DB
	gateway  payments.Gateway
	carts    *cart.Service
	orders   *order.Service
	currency string
}

func NewService(db *gorm.DB, gateway payments.Gateway, currency string) *Service {
	return &Service{
		db:       db,
		gateway:  gateway,
		carts:    cart.NewService(db),
		orders:   order.NewService(db),
		currency: currency,
	}
}

// Checkout creates a payment intent for the cart total and returns the cart
// together with the intent's client secret; the client completes the charge
// out-of-band and the webhook finishes the workflow. The cart stamp and the
// order snapshot share one transaction.
func (s *Service) Checkout(ctx context.Context, userID uint) (*models.Cart, string, error) {
	userCart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return nil, "", ErrEmptyCart
	}
	if err != nil {
		return nil, "", err
	}
	if len(userCart.Items) == 0 {
		return nil, "", ErrEmptyCart
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.MinorUnits(userCart.TotalPrice), s.currency)
	if err != nil {
		return nil, "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cart.NewService(tx).StampPaymentIntent(ctx, userCart, intent.ID); err != nil {
			return err
		}
		_, err := order.NewService(tx).Create(ctx, userID, userCart, intent.ID)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	return userCart, intent.ClientSecret, nil
}

// HandlePaymentSucceeded reconciles local state with a completed payment.
// Both steps run even when the first fails, and each is idempotent, so the
// gateway redelivering the event retries whatever did not complete.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, intentID string) error {
	orderErr := s.orders.MarkPaidByPaymentIntent(ctx, intentID)
	cartErr := s.carts.EmptyByPaymentIntent(ctx, intentID)
	return errors.Join(orderErr, cartErr)
}
