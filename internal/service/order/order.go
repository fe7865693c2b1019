package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dmarych/web_shop/internal/models"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrAmbiguousIntent = errors.New("payment intent matches more than one order")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create snapshots the cart into a new Pending order. Item rows carry the
// product reference and quantity only; the total is copied from the cart as
// it stands at this instant.
func (s *Service) Create(ctx context.Context, userID uint, cart *models.Cart, intentID string) (*models.Order, error) {
	o := models.Order{
		UserID:          userID,
		TotalPrice:      cart.TotalPrice,
		Status:          models.OrderPending,
		PaymentIntentID: intentID,
		CreatedAt:       time.Now(),
	}
	for _, it := range cart.Items {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	if err := s.db.WithContext(ctx).Create(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkPaidByPaymentIntent transitions the single order carrying the intent
// id from Pending to Paid. Exactly one order must match: zero is
// ErrNotFound, more than one is ErrAmbiguousIntent. An order already past
// Pending is a no-op, so a redelivered gateway event succeeds.
func (s *Service) MarkPaidByPaymentIntent(ctx context.Context, intentID string) error {
	var matches []models.Order
	if err := s.db.WithContext(ctx).Where("payment_intent_id = ?", intentID).Find(&matches).Error; err != nil {
		return err
	}

	switch {
	case len(matches) == 0:
		return ErrNotFound
	case len(matches) > 1:
		return fmt.Errorf("%w: %q matches %d orders", ErrAmbiguousIntent, intentID, len(matches))
	}

	o := matches[0]
	if o.Status != models.OrderPending {
		return nil
	}
	return s.db.WithContext(ctx).Model(&o).Update("status", models.OrderPaid).Error
}

// ByUser returns every order of a user, oldest first. No pagination.
func (s *Service) ByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}
