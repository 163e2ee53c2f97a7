package productcontroller

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Ashish5180/vibe-bites/models"
)

type SizeInput struct {
	Size  string          `json:"size" binding:"required,max=20"`
	Price decimal.Decimal `json:"price" binding:"gte=0"`
	Stock int             `json:"stock" binding:"gte=0"`
}

type NutritionInput struct {
	Calories string `json:"calories" binding:"required"`
	Protein  string `json:"protein" binding:"required"`
	Carbs    string `json:"carbs" binding:"required"`
	Fat      string `json:"fat" binding:"required"`
	Fiber    string `json:"fiber" binding:"required"`
}

// ProductInput is the admin create/replace body.
type ProductInput struct {
	Name        string         `json:"name" binding:"required,min=2,max=100"`
	Description string         `json:"description" binding:"required,min=10,max=1000"`
	Category    string         `json:"category" binding:"required,category"`
	Image       string         `json:"image" binding:"required"`
	Ingredients string         `json:"ingredients" binding:"required"`
	Nutrition   NutritionInput `json:"nutrition" binding:"required"`
	Sizes       []SizeInput    `json:"sizes" binding:"required,min=1,dive"`
	IsActive    *bool          `json:"isActive"`
}

// duplicateSize returns the first size label that appears twice.
func (in ProductInput) duplicateSize() string {
	seen := make(map[string]bool, len(in.Sizes))
	for _, s := range in.Sizes {
		label := strings.TrimSpace(s.Size)
		if seen[label] {
			return label
		}
		seen[label] = true
	}
	return ""
}

func (in ProductInput) sizes() []models.ProductSize {
	out := make([]models.ProductSize, len(in.Sizes))
	for i, s := range in.Sizes {
		out[i] = models.ProductSize{Size: strings.TrimSpace(s.Size), Price: s.Price.Round(2), Stock: s.Stock}
	}
	return out
}

// apply copies every scalar field onto p. Sizes are handled by the caller.
func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Category = in.Category
	p.Image = in.Image
	p.Ingredients = in.Ingredients
	p.Nutrition = models.Nutrition(in.Nutrition)
	p.IsActive = in.IsActive == nil || *in.IsActive
}
