package productcontroller

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/pricing"
	"github.com/Ashish5180/vibe-bites/response"
)

// Sheet layout shared by import and export: one row per size tier, product
// fields repeated on every row of the product.
var excelHeaders = []string{
	"ID", "Name", "Description", "Category", "Image", "Ingredients",
	"Calories", "Protein", "Carbs", "Fat", "Fiber",
	"Size", "Price", "Stock", "IsActive",
}

const (
	colID = iota
	colName
	colDescription
	colCategory
	colImage
	colIngredients
	colCalories
	colProtein
	colCarbs
	colFat
	colFiber
	colSize
	colPrice
	colStock
	colActive
)

func ExportProductsToExcel(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Preload("Sizes").Order("id ASC").Find(&products).Error; err != nil {
			log.Error("export products failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch products")
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			log.Error("create sheet failed", zap.Error(err))
			response.ServerError(c, "Failed to create Excel sheet")
			return
		}

		header := sheet.AddRow()
		for _, h := range excelHeaders {
			header.AddCell().SetValue(h)
		}

		for _, p := range products {
			for _, s := range p.Sizes {
				row := sheet.AddRow()
				row.AddCell().SetValue(p.ID)
				row.AddCell().SetValue(p.Name)
				row.AddCell().SetValue(p.Description)
				row.AddCell().SetValue(p.Category)
				row.AddCell().SetValue(p.Image)
				row.AddCell().SetValue(p.Ingredients)
				row.AddCell().SetValue(p.Nutrition.Calories)
				row.AddCell().SetValue(p.Nutrition.Protein)
				row.AddCell().SetValue(p.Nutrition.Carbs)
				row.AddCell().SetValue(p.Nutrition.Fat)
				row.AddCell().SetValue(p.Nutrition.Fiber)
				row.AddCell().SetValue(s.Size)
				row.AddCell().SetValue(s.Price.StringFixed(2))
				row.AddCell().SetValue(s.Stock)
				row.AddCell().SetValue(strconv.FormatBool(p.IsActive))
			}
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			log.Error("write excel failed", zap.Error(err))
		}
	}
}

// importGroup is every row that belongs to one product.
type importGroup struct {
	id      uint
	product models.Product
	sizes   []models.ProductSize
	bad     bool
}

// ImportProductsFromExcel upserts products from a sheet in the export layout.
// Rows with an ID update that product and upsert its listed tiers; rows
// without one create a product per distinct name. A product with any
// invalid row is skipped entirely.
func ImportProductsFromExcel(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			response.BadRequest(c, "Excel file is required")
			return
		}
		f, err := header.Open()
		if err != nil {
			response.ServerError(c, "Failed to open Excel file")
			return
		}
		defer f.Close()

		book, err := xlsx.OpenReaderAt(f, header.Size)
		if err != nil {
			response.BadRequest(c, "Failed to parse Excel file")
			return
		}
		if len(book.Sheets) == 0 || book.Sheets[0].MaxRow < 2 {
			response.BadRequest(c, "Excel file is empty or missing header row")
			return
		}

		groups := groupRows(book.Sheets[0])
		created, updated, skipped := 0, 0, 0
		for _, g := range groups {
			if g.bad {
				skipped++
				continue
			}
			var err error
			if g.id != 0 {
				err = db.Transaction(func(tx *gorm.DB) error { return upsertImported(tx, g) })
				if err == nil {
					updated++
				}
			} else {
				g.product.Sizes = g.sizes
				err = db.Create(&g.product).Error
				if err == nil {
					created++
				}
			}
			if err != nil {
				log.Warn("import row skipped", zap.String("product", g.product.Name), zap.Error(err))
				skipped++
			}
		}

		response.OKMessage(c, "Import completed", gin.H{
			"createdCount": created,
			"updatedCount": updated,
			"skippedCount": skipped,
		})
	}
}

func groupRows(sheet *xlsx.Sheet) []*importGroup {
	var order []*importGroup
	byKey := map[string]*importGroup{}

	for i := 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}
		if get(colName) == "" && get(colID) == "" {
			continue
		}

		key := "name:" + get(colName)
		var id uint64
		if raw := get(colID); raw != "" {
			id, _ = strconv.ParseUint(raw, 10, 64)
			key = "id:" + raw
		}

		g, ok := byKey[key]
		if !ok {
			g = &importGroup{id: uint(id)}
			g.product = models.Product{
				Name:        get(colName),
				Description: get(colDescription),
				Category:    get(colCategory),
				Image:       get(colImage),
				Ingredients: get(colIngredients),
				Nutrition: models.Nutrition{
					Calories: get(colCalories),
					Protein:  get(colProtein),
					Carbs:    get(colCarbs),
					Fat:      get(colFat),
					Fiber:    get(colFiber),
				},
				IsActive: get(colActive) != "false",
			}
			if get(colID) != "" && id == 0 {
				g.bad = true
			}
			if g.product.Name == "" || !pricing.IsCategory(g.product.Category) {
				g.bad = true
			}
			byKey[key] = g
			order = append(order, g)
		}

		price, perr := decimal.NewFromString(get(colPrice))
		stock, serr := strconv.Atoi(get(colStock))
		size := get(colSize)
		if size == "" || perr != nil || serr != nil || price.IsNegative() || stock < 0 {
			g.bad = true
			continue
		}
		g.sizes = append(g.sizes, models.ProductSize{Size: size, Price: price.Round(2), Stock: stock})
	}

	for _, g := range order {
		if len(g.sizes) == 0 {
			g.bad = true
		}
	}
	return order
}

func upsertImported(tx *gorm.DB, g *importGroup) error {
	var existing models.Product
	if err := tx.Preload("Sizes").First(&existing, g.id).Error; err != nil {
		return err
	}
	existing.Name = g.product.Name
	existing.Description = g.product.Description
	existing.Category = g.product.Category
	existing.Image = g.product.Image
	existing.Ingredients = g.product.Ingredients
	existing.Nutrition = g.product.Nutrition
	existing.IsActive = g.product.IsActive
	if err := tx.Omit("Sizes").Save(&existing).Error; err != nil {
		return err
	}

	for _, s := range g.sizes {
		s.ProductID = existing.ID
		if cur := existing.SizeFor(s.Size); cur != nil {
			s.ID = cur.ID
		}
		if err := tx.Save(&s).Error; err != nil {
			return err
		}
	}
	return nil
}
