package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/testutil"
)

func TestDefaultSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	f, err := parseSeed(defaultSeed)
	require.NoError(t, err)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := seed(context.Background(), db, f, now, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, first.Admin)
	assert.Equal(t, 5, first.Categories)
	assert.Equal(t, 3, first.Coupons)
	assert.Equal(t, 6, first.Products)

	second, err := seed(context.Background(), db, f, now, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, report{}, second)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@vibebites.com").First(&admin).Error)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsEmailVerified)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "Admin123"))

	var makhana models.Coupon
	require.NoError(t, db.Where("code = ?", "MAKHANA20").First(&makhana).Error)
	assert.Equal(t, "Makhana", makhana.Category)
	require.True(t, makhana.MaxDiscount.Valid)
	assert.Equal(t, "100", makhana.MaxDiscount.Decimal.String())
	assert.True(t, makhana.ValidFrom.Equal(now))

	var p models.Product
	require.NoError(t, db.Preload("Sizes").Where("name = ?", "Peri Peri Makhana").First(&p).Error)
	require.Len(t, p.Sizes, 2)
	assert.Equal(t, "149", p.Sizes[0].Price.String())
	assert.Equal(t, "347", p.Nutrition.Calories)
}

func TestSeedRejectsBadRows(t *testing.T) {
	tests := map[string]string{
		"weak admin password": `
admin: {email: a@b.co, password: weak, firstName: A, lastName: B}`,
		"unknown category": `
products:
  - {name: Mystery, category: Candy, image: x, sizes: [{size: 1kg, price: "10", stock: 1}]}`,
		"no sizes": `
products:
  - {name: Empty, category: Chips, image: x}`,
		"bad price": `
products:
  - {name: Odd, category: Chips, image: x, sizes: [{size: 1kg, price: "ten", stock: 1}]}`,
		"bad coupon type": `
coupons:
  - {code: bogus, type: bogo, discount: "5", validUntil: 2030-01-01T00:00:00Z}`,
		"expired before start": `
coupons:
  - {code: past, type: fixed, discount: "5", validFrom: 2030-01-01T00:00:00Z, validUntil: 2029-01-01T00:00:00Z}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			db := testutil.NewDB(t)
			f, err := parseSeed([]byte(doc))
			require.NoError(t, err)

			_, err = seed(context.Background(), db, f, time.Now(), zap.NewNop())
			assert.Error(t, err)

			var n int64
			require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
			assert.Zero(t, n)
		})
	}
}

func TestParseSeedSyntaxError(t *testing.T) {
	_, err := parseSeed([]byte("admin: [unterminated"))
	assert.ErrorContains(t, err, "parse seed")
}
