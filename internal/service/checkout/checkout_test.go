package checkout

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmarych/web_shop/internal/models"
	"github.com/dmarych/web_shop/internal/payments"
	"github.com/dmarych/web_shop/internal/service/cart"
	"github.com/dmarych/web_shop/internal/service/order"
)

type fakeGateway struct {
	lastAmount   int64
	lastCurrency string
	calls        int
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency string) (*payments.Intent, error) {
	g.calls++
	g.lastAmount = amountMinor
	g.lastCurrency = currency
	return &payments.Intent{ID: "pi_test_123", ClientSecret: "cs_test_secret"}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func fillCart(t *testing.T, db *gorm.DB, userID uint) {
	p := models.Product{Name: "Widget", Price: 10}
	require.NoError(t, db.Create(&p).Error)
	_, err := cart.NewService(db).AddItem(context.Background(), userID, p.ID, 2)
	require.NoError(t, err)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := NewService(db, gw, "usd")

	_, _, err := svc.Checkout(context.Background(), 1)
	require.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, db.Create(&models.Cart{UserID: 1}).Error)
	_, _, err = svc.Checkout(context.Background(), 1)
	require.ErrorIs(t, err, ErrEmptyCart)

	// the gateway must never be reached for an empty cart
	require.Equal(t, 0, gw.calls)
}

func TestCheckoutStampsCartAndCreatesOrder(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := NewService(db, gw, "usd")
	fillCart(t, db, 1)

	c, clientSecret, err := svc.Checkout(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "cs_test_secret", clientSecret)
	require.Equal(t, "pi_test_123", c.PaymentIntentID)

	// 20.00 in minor units
	require.Equal(t, int64(2000), gw.lastAmount)
	require.Equal(t, "usd", gw.lastCurrency)

	var stored models.Cart
	require.NoError(t, db.Where("user_id = ?", 1).First(&stored).Error)
	require.Equal(t, "pi_test_123", stored.PaymentIntentID)

	var o models.Order
	require.NoError(t, db.Preload("Items").Where("payment_intent_id = ?", "pi_test_123").First(&o).Error)
	require.Equal(t, models.OrderPending, o.Status)
	require.Equal(t, float64(20), o.TotalPrice)
	require.Len(t, o.Items, 1)
}

func TestHandlePaymentSucceededIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeGateway{}, "usd")
	fillCart(t, db, 1)

	_, _, err := svc.Checkout(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.HandlePaymentSucceeded(context.Background(), "pi_test_123"))
	require.NoError(t, svc.HandlePaymentSucceeded(context.Background(), "pi_test_123"))

	var o models.Order
	require.NoError(t, db.Where("payment_intent_id = ?", "pi_test_123").First(&o).Error)
	require.Equal(t, models.OrderPaid, o.Status)

	var c models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", 1).First(&c).Error)
	require.Empty(t, c.Items)
	require.Equal(t, float64(0), c.TotalPrice)
}

func TestHandlePaymentSucceededAttemptsBothSteps(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeGateway{}, "usd")

	// cart stamped with the intent, but no matching order: the cart must
	// still be emptied and the overall result must be an error so the
	// gateway redelivers
	fillCart(t, db, 1)
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", 1).
		Update("payment_intent_id", "pi_orphan").Error)

	err := svc.HandlePaymentSucceeded(context.Background(), "pi_orphan")
	require.ErrorIs(t, err, order.ErrNotFound)

	var c models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", 1).First(&c).Error)
	require.Empty(t, c.Items)
}

func TestHandlePaymentSucceededUnknownIntent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeGateway{}, "usd")

	err := svc.HandlePaymentSucceeded(context.Background(), "pi_unknown")
	require.ErrorIs(t, err, order.ErrNotFound)
	require.ErrorIs(t, err, cart.ErrCartNotFound)
}
