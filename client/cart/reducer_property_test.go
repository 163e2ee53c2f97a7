package cart

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestAddMergeProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("adds never produce two lines for the same (product, size)", prop.ForAll(
		func(products, sizes, qtys []int) bool {
			n := min(len(products), len(sizes), len(qtys))

			s := State{}
			want := map[string]int{}
			for i := 0; i < n; i++ {
				id := fmt.Sprintf("p%d", products[i])
				size := fmt.Sprintf("%dg", 100*(sizes[i]+1))
				s = Reduce(s, Add(LineItem{
					ProductID: id,
					Size:      size,
					Category:  "Chips",
					Price:     decimal.NewFromInt(10),
					Quantity:  qtys[i],
				}))
				want[id+"/"+size] += qtys[i]
			}

			if len(s.Items) != len(want) {
				return false
			}
			seen := map[string]bool{}
			for _, it := range s.Items {
				key := it.ProductID + "/" + it.Size
				if seen[key] || want[key] != it.Quantity {
					return false
				}
				seen[key] = true
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.IntRange(1, 5)),
	))

	properties.TestingRun(t)
}
