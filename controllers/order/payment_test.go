package orderControllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/testutil"
)

func TestMarkPaidConfirmsPendingOnce(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "asha@test.dev", models.RoleUser)
	chips := testutil.CreateProduct(t, db, "Masala Chips", "Chips", testutil.Tier{Size: "100g", Price: "60", Stock: 10})
	order, err := PlaceOrder(ctx, db, user, request("", line(chips, "100g", 1)))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := MarkPaid(ctx, db, order.ID, "pi_1")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
		assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	}

	var stored models.Order
	require.NoError(t, db.Preload("StatusHistory").First(&stored, order.ID).Error)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
	require.Len(t, stored.StatusHistory, 2)
	assert.Equal(t, "Payment received", stored.StatusHistory[1].Note)
}

func TestMarkPaidLeavesAdvancedOrders(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "asha@test.dev", models.RoleUser)
	chips := testutil.CreateProduct(t, db, "Masala Chips", "Chips", testutil.Tier{Size: "100g", Price: "60", Stock: 10})
	order, err := PlaceOrder(ctx, db, user, request("", line(chips, "100g", 1)))
	require.NoError(t, err)
	_, err = UpdateStatus(ctx, db, order.ID, UpdateStatusRequest{Status: models.OrderStatusCancelled})
	require.NoError(t, err)

	got, err := MarkPaid(ctx, db, order.ID, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := MarkPaid(context.Background(), db, 404, "pi_1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMarkPaymentFailed(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "asha@test.dev", models.RoleUser)
	chips := testutil.CreateProduct(t, db, "Masala Chips", "Chips", testutil.Tier{Size: "100g", Price: "60", Stock: 10})
	order, err := PlaceOrder(ctx, db, user, request("", line(chips, "100g", 1)))
	require.NoError(t, err)

	require.NoError(t, MarkPaymentFailed(ctx, db, order.ID))
	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, stored.PaymentStatus)

	// A late failure never downgrades a paid order.
	_, err = MarkPaid(ctx, db, order.ID, "pi_2")
	require.NoError(t, err)
	require.NoError(t, MarkPaymentFailed(ctx, db, order.ID))
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)

	assert.ErrorIs(t, MarkPaymentFailed(ctx, db, 404), ErrOrderNotFound)
}
