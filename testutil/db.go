// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Ashish5180/vibe-bites/models"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9]+`)

// NewDB opens a private in-memory sqlite database migrated with every model.
// A single connection keeps the shared-cache database alive and serializes
// writers the way row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(t.Name(), "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateUser inserts an active user with the given role.
func CreateUser(t testing.TB, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Tier is a shorthand size tier for CreateProduct.
type Tier struct {
	Size  string
	Price string
	Stock int
}

// CreateProduct inserts an active product with the given tiers.
func CreateProduct(t testing.TB, db *gorm.DB, name, category string, tiers ...Tier) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: "A crunchy test snack",
		Category:    category,
		Image:       "https://cdn.test/" + name + ".png",
		IsActive:    true,
	}
	for _, tr := range tiers {
		p.Sizes = append(p.Sizes, models.ProductSize{
			Size:  tr.Size,
			Price: decimal.RequireFromString(tr.Price),
			Stock: tr.Stock,
		})
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Stock reads the current stock of one tier.
func Stock(t testing.TB, db *gorm.DB, productID uint, size string) int {
	t.Helper()
	var s models.ProductSize
	require.NoError(t, db.Where("product_id = ? AND size = ?", productID, size).First(&s).Error)
	return s.Stock
}
