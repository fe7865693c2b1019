package order

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmarych/web_shop/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}))
	return db
}

func sampleCart() *models.Cart {
	return &models.Cart{
		UserID:     1,
		TotalPrice: 20,
		Items: []models.CartItem{
			{ProductID: 7, Name: "Widget", Price: 10, Quantity: 2},
		},
	}
}

func TestCreateSnapshotsCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	o, err := svc.Create(context.Background(), 1, sampleCart(), "pi_123")
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, o.Status)
	require.Equal(t, float64(20), o.TotalPrice)
	require.Equal(t, "pi_123", o.PaymentIntentID)
	require.Len(t, o.Items, 1)
	require.Equal(t, uint(7), o.Items[0].ProductID)
	require.Equal(t, uint(2), o.Items[0].Quantity)
	require.False(t, o.CreatedAt.IsZero())
}

func TestMarkPaidByPaymentIntent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	o, err := svc.Create(context.Background(), 1, sampleCart(), "pi_123")
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaidByPaymentIntent(context.Background(), "pi_123"))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, o.ID).Error)
	require.Equal(t, models.OrderPaid, reloaded.Status)

	// redelivered event is a no-op
	require.NoError(t, svc.MarkPaidByPaymentIntent(context.Background(), "pi_123"))
	require.NoError(t, db.First(&reloaded, o.ID).Error)
	require.Equal(t, models.OrderPaid, reloaded.Status)
}

func TestMarkPaidUnknownIntent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	require.ErrorIs(t, svc.MarkPaidByPaymentIntent(context.Background(), "pi_unknown"), ErrNotFound)
}

func TestMarkPaidAmbiguousIntent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.Create(context.Background(), 1, sampleCart(), "pi_dup")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 2, sampleCart(), "pi_dup")
	require.NoError(t, err)

	err = svc.MarkPaidByPaymentIntent(context.Background(), "pi_dup")
	require.ErrorIs(t, err, ErrAmbiguousIntent)

	// neither order was mutated
	var paid int64
	require.NoError(t, db.Model(&models.Order{}).Where("status = ?", models.OrderPaid).Count(&paid).Error)
	require.Equal(t, int64(0), paid)
}

func TestByUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.Create(context.Background(), 1, sampleCart(), "pi_1")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 1, sampleCart(), "pi_2")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 2, sampleCart(), "pi_3")
	require.NoError(t, err)

	orders, err := svc.ByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "pi_1", orders[0].PaymentIntentID)
	require.Equal(t, "pi_2", orders[1].PaymentIntentID)
	require.Len(t, orders[0].Items, 1)
}
