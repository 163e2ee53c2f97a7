package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/pricing"
	"github.com/Ashish5180/vibe-bites/validation"
)

type seedFile struct {
	Admin      adminSeed      `yaml:"admin"`
	Categories []categorySeed `yaml:"categories"`
	Coupons    []couponSeed   `yaml:"coupons"`
	Products   []productSeed  `yaml:"products"`
}

type adminSeed struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
}

type categorySeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type couponSeed struct {
	Code           string    `yaml:"code"`
	Description    string    `yaml:"description"`
	Type           string    `yaml:"type"`
	Discount       string    `yaml:"discount"`
	Category       string    `yaml:"category"`
	MinOrderAmount string    `yaml:"minOrderAmount"`
	MaxDiscount    string    `yaml:"maxDiscount"`
	UsageLimit     int       `yaml:"usageLimit"`
	ValidFrom      time.Time `yaml:"validFrom"`
	ValidUntil     time.Time `yaml:"validUntil"`
	FirstTimeOnly  bool      `yaml:"firstTimeOnly"`
}

type productSeed struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Category    string           `yaml:"category"`
	Image       string           `yaml:"image"`
	Ingredients string           `yaml:"ingredients"`
	Nutrition   models.Nutrition `yaml:"nutrition"`
	Sizes       []struct {
		Size  string `yaml:"size"`
		Price string `yaml:"price"`
		Stock int    `yaml:"stock"`
	} `yaml:"sizes"`
}

// report counts what a run created; existing rows are left alone.
type report struct {
	Admin      bool
	Categories int
	Coupons    int
	Products   int
}

func parseSeed(data []byte) (*seedFile, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

func money(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", field, s, err)
	}
	return d, nil
}

func exists(tx *gorm.DB, model any, column, value string) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// seed inserts everything in f that is not present yet, in one transaction.
func seed(ctx context.Context, db *gorm.DB, f *seedFile, now time.Time, log *zap.Logger) (report, error) {
	var r report
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if r.Admin, err = seedAdmin(tx, f.Admin); err != nil {
			return err
		}
		for _, c := range f.Categories {
			created, err := seedCategory(tx, c)
			if err != nil {
				return err
			}
			if created {
				r.Categories++
			}
		}
		for _, c := range f.Coupons {
			created, err := seedCoupon(tx, c, now)
			if err != nil {
				return err
			}
			if created {
				r.Coupons++
			}
		}
		for _, p := range f.Products {
			created, err := seedProduct(tx, p)
			if err != nil {
				return err
			}
			if created {
				r.Products++
			}
		}
		return nil
	})
	if err != nil {
		return report{}, err
	}
	log.Info("seed complete",
		zap.Bool("admin_created", r.Admin),
		zap.Int("categories", r.Categories),
		zap.Int("coupons", r.Coupons),
		zap.Int("products", r.Products))
	return r, nil
}

func seedAdmin(tx *gorm.DB, a adminSeed) (bool, error) {
	if a.Email == "" {
		return false, nil
	}
	email := strings.ToLower(strings.TrimSpace(a.Email))
	found, err := exists(tx, &models.User{}, "email", email)
	if err != nil || found {
		return false, err
	}
	if !validation.StrongPassword(a.Password) {
		return false, errors.New("admin password must be at least 6 characters with an upper, a lower and a digit")
	}
	hash, err := auth.HashPassword(a.Password)
	if err != nil {
		return false, err
	}
	user := models.User{
		Email:           email,
		PasswordHash:    hash,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Role:            models.RoleAdmin,
		IsActive:        true,
		IsEmailVerified: true,
	}
	return true, tx.Create(&user).Error
}

func seedCategory(tx *gorm.DB, c categorySeed) (bool, error) {
	found, err := exists(tx, &models.Category{}, "name", c.Name)
	if err != nil || found {
		return false, err
	}
	return true, tx.Create(&models.Category{
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		IsActive:    true,
	}).Error
}

func seedCoupon(tx *gorm.DB, c couponSeed, now time.Time) (bool, error) {
	code := pricing.NormalizeCode(c.Code)
	found, err := exists(tx, &models.Coupon{}, "code", code)
	if err != nil || found {
		return false, err
	}

	typ := pricing.CouponType(c.Type)
	if !typ.Valid() {
		return false, fmt.Errorf("coupon %s: type %q", code, c.Type)
	}
	value, err := money("discount", c.Discount)
	if err != nil {
		return false, fmt.Errorf("coupon %s: %w", code, err)
	}
	minOrder, err := money("minOrderAmount", c.MinOrderAmount)
	if err != nil {
		return false, fmt.Errorf("coupon %s: %w", code, err)
	}
	var maxDiscount decimal.NullDecimal
	if c.MaxDiscount != "" {
		d, err := money("maxDiscount", c.MaxDiscount)
		if err != nil {
			return false, fmt.Errorf("coupon %s: %w", code, err)
		}
		maxDiscount = decimal.NewNullDecimal(d)
	}
	from := c.ValidFrom
	if from.IsZero() {
		from = now
	}
	if !c.ValidUntil.After(from) {
		return false, fmt.Errorf("coupon %s: validUntil must be after validFrom", code)
	}
	limit := c.UsageLimit
	if limit == 0 {
		limit = pricing.UnlimitedUses
	}

	return true, tx.Create(&models.Coupon{
		Code:            code,
		Description:     c.Description,
		Discount:        value,
		Type:            typ,
		Category:        c.Category,
		MinOrderAmount:  minOrder,
		MaxDiscount:     maxDiscount,
		UsageLimit:      limit,
		ValidFrom:       from,
		ValidUntil:      c.ValidUntil,
		IsFirstTimeOnly: c.FirstTimeOnly,
		IsActive:        true,
	}).Error
}

func seedProduct(tx *gorm.DB, p productSeed) (bool, error) {
	found, err := exists(tx, &models.Product{}, "name", p.Name)
	if err != nil || found {
		return false, err
	}
	if !pricing.IsCategory(p.Category) {
		return false, fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
	}
	if len(p.Sizes) == 0 {
		return false, fmt.Errorf("product %q: at least one size is required", p.Name)
	}

	product := models.Product{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Ingredients: p.Ingredients,
		Nutrition:   p.Nutrition,
		IsActive:    true,
	}
	for _, s := range p.Sizes {
		price, err := money("price", s.Price)
		if err != nil {
			return false, fmt.Errorf("product %q: %w", p.Name, err)
		}
		if price.IsNegative() || s.Stock < 0 {
			return false, fmt.Errorf("product %q size %s: price and stock must not be negative", p.Name, s.Size)
		}
		product.Sizes = append(product.Sizes, models.ProductSize{Size: s.Size, Price: price, Stock: s.Stock})
	}
	return true, tx.Create(&product).Error
}
