package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dmarych/web_shop/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("product not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrConflict        = errors.New("cart was modified concurrently")
)

// maxAttempts bounds the optimistic-concurrency retry loop.
const maxAttempts = 3

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get returns the user's cart with its items, or ErrCartNotFound.
func (s *Service) Get(ctx context.Context, userID uint) (*models.Cart, error) {
	var c models.Cart
	err := s.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddItem puts quantity units of a product into the user's cart, creating
// the cart if the user has none. An item already in the cart has its
// quantity incremented; a new item snapshots the product's current name and
// price.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", productID, false).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	var out *models.Cart
	err = retry(func() error {
		c, err := s.loadOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		merged := false
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity += uint(quantity)
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, models.CartItem{
				CartID:    c.ID,
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  uint(quantity),
			})
		}
		recomputeTotal(c)

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := bumpVersion(tx, c); err != nil {
				return err
			}
			for i := range c.Items {
				if err := tx.Save(&c.Items[i]).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveItem drops a product's line item from the user's cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	var out *models.Cart
	err := retry(func() error {
		c, err := s.Get(ctx, userID)
		if err != nil {
			return err
		}

		idx := -1
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrItemNotFound
		}

		removed := c.Items[idx]
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		recomputeTotal(c)

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := bumpVersion(tx, c); err != nil {
				return err
			}
			return tx.Delete(&models.CartItem{}, removed.ID).Error
		})
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StampPaymentIntent records the gateway intent id on the cart. Runs on the
// service's own db handle, so callers can scope it to a transaction via
// NewService(tx).
func (s *Service) StampPaymentIntent(ctx context.Context, c *models.Cart, intentID string) error {
	c.PaymentIntentID = intentID
	return bumpVersion(s.db.WithContext(ctx), c)
}

// EmptyByPaymentIntent clears the cart stamped with the given intent id.
// An already-empty cart is a no-op so redelivered gateway events succeed.
// The intent id stays on the cart to keep that correlation possible.
func (s *Service) EmptyByPaymentIntent(ctx context.Context, intentID string) error {
	return retry(func() error {
		var c models.Cart
		err := s.db.WithContext(ctx).Preload("Items").
			Where("payment_intent_id = ?", intentID).
			First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		if err != nil {
			return err
		}

		if len(c.Items) == 0 && c.TotalPrice == 0 {
			return nil
		}

		c.TotalPrice = 0
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := bumpVersion(tx, &c); err != nil {
				return err
			}
			return tx.Where("cart_id = ?", c.ID).Delete(&models.CartItem{}).Error
		})
	})
}

func (s *Service) loadOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	c, err := s.Get(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}

	fresh := models.Cart{UserID: userID}
	if err := s.db.WithContext(ctx).Create(&fresh).Error; err != nil {
		// another request created the cart first; the unique index on
		// user_id rejects the duplicate, so load the winner
		if existing, loadErr := s.Get(ctx, userID); loadErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return &fresh, nil
}

func recomputeTotal(c *models.Cart) {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	c.TotalPrice = total
}

// bumpVersion persists the cart's scalar fields guarded by its version
// column. Zero rows affected means a concurrent writer won; the caller
// reloads and retries.
func bumpVersion(tx *gorm.DB, c *models.Cart) error {
	prev := c.Version
	c.Version++
	res := tx.Model(&models.Cart{}).
		Where("id = ? AND version = ?", c.ID, prev).
		Updates(map[string]interface{}{
			"total_price":       c.TotalPrice,
			"payment_intent_id": c.PaymentIntentID,
			"version":           c.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func retry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}
