// Command vibecart drives the shopper cart from a terminal. The cart lives
// in a JSON file under VIBECART_DIR and, when VIBECART_TOKEN is set, every
// change is mirrored to the API at VIBECART_API.
//
// Usage:
//
//	vibecart add -id 12 -name "Peri Peri Makhana" -category Makhana -size 100g -price 149 -qty 2
//	vibecart qty -id 12 -size 100g -n 3
//	vibecart remove -id 12 -size 100g
//	vibecart apply-coupon -code MAKHANA20 -type percentage -discount 20 -category Makhana -max 100
//	vibecart remove-coupon
//	vibecart clear
//	vibecart show
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Ashish5180/vibe-bites/client/cart"
	"github.com/Ashish5180/vibe-bites/pricing"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr, os.Getenv))
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage: vibecart <add|qty|remove|apply-coupon|remove-coupon|clear|show> [flags]")
}

// Run is the entrypoint for testing.
func Run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	store, err := openStore(getenv)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Wait()

	var action cart.Action
	switch args[1] {
	case "show":
		printCart(stdout, store.State())
		return 0
	case "add":
		action, err = addAction(args[2:], stderr)
	case "qty":
		action, err = quantityAction(args[2:], stderr)
	case "remove":
		action, err = removeAction(args[2:], stderr)
	case "apply-coupon":
		action, err = couponAction(args[2:], stderr)
	case "remove-coupon":
		action = cart.RemoveCoupon()
	case "clear":
		action = cart.Clear()
	default:
		usage(stderr)
		return 2
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	s, err := store.Dispatch(action)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	printCart(stdout, s)
	return 0
}

func openStore(getenv func(string) string) (*cart.Store, error) {
	dir := getenv("VIBECART_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".vibecart")
	}
	storage, err := cart.NewFileStorage(dir)
	if err != nil {
		return nil, err
	}

	opts := []cart.Option{}
	if getenv("VIBECART_DEBUG") != "" {
		logger, err := zap.NewDevelopment()
		if err == nil {
			opts = append(opts, cart.WithLogger(logger))
		}
	}
	if token := getenv("VIBECART_TOKEN"); token != "" {
		api := getenv("VIBECART_API")
		if api == "" {
			api = "http://localhost:8080/api"
		}
		opts = append(opts, cart.WithSyncer(cart.NewHTTPSyncer(api), func() string { return token }))
	}

	store := cart.NewStore(storage, opts...)
	if err := store.Restore(); err != nil {
		return nil, fmt.Errorf("restore cart: %w", err)
	}
	return store, nil
}

func parseMoney(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("-%s: %q is not an amount", name, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("-%s must not be negative", name)
	}
	return d, nil
}

func addAction(args []string, stderr io.Writer) (cart.Action, error) {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "product id")
	name := fs.String("name", "", "product name")
	category := fs.String("category", "", "product category")
	image := fs.String("image", "", "image URL")
	size := fs.String("size", "", "size label, e.g. 100g")
	price := fs.String("price", "", "unit price")
	qty := fs.Int("qty", 1, "quantity")
	if err := fs.Parse(args); err != nil {
		return cart.Action{}, err
	}

	if *id == "" || *size == "" {
		return cart.Action{}, fmt.Errorf("-id and -size are required")
	}
	if !pricing.IsCategory(*category) {
		return cart.Action{}, fmt.Errorf("-category must be one of %s", strings.Join(pricing.Categories, ", "))
	}
	if *qty < 1 {
		return cart.Action{}, fmt.Errorf("-qty must be at least 1")
	}
	p, err := parseMoney("price", *price)
	if err != nil {
		return cart.Action{}, err
	}
	return cart.Add(cart.LineItem{
		ProductID: *id,
		Size:      *size,
		Name:      *name,
		Image:     *image,
		Category:  *category,
		Price:     p,
		Quantity:  *qty,
	}), nil
}

func quantityAction(args []string, stderr io.Writer) (cart.Action, error) {
	fs := flag.NewFlagSet("qty", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "product id")
	size := fs.String("size", "", "size label")
	n := fs.Int("n", 1, "new quantity; 0 removes the line")
	if err := fs.Parse(args); err != nil {
		return cart.Action{}, err
	}
	if *id == "" || *size == "" {
		return cart.Action{}, fmt.Errorf("-id and -size are required")
	}
	return cart.UpdateQuantity(*id, *size, *n), nil
}

func removeAction(args []string, stderr io.Writer) (cart.Action, error) {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "product id")
	size := fs.String("size", "", "size label")
	if err := fs.Parse(args); err != nil {
		return cart.Action{}, err
	}
	if *id == "" || *size == "" {
		return cart.Action{}, fmt.Errorf("-id and -size are required")
	}
	return cart.Remove(*id, *size), nil
}

func couponAction(args []string, stderr io.Writer) (cart.Action, error) {
	fs := flag.NewFlagSet("apply-coupon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	code := fs.String("code", "", "coupon code")
	typ := fs.String("type", string(pricing.Percentage), "percentage or fixed")
	discount := fs.String("discount", "", "percent or fixed amount")
	category := fs.String("category", "", "restrict to one category")
	maxDiscount := fs.String("max", "", "discount cap")
	if err := fs.Parse(args); err != nil {
		return cart.Action{}, err
	}

	if *code == "" {
		return cart.Action{}, fmt.Errorf("-code is required")
	}
	t := pricing.CouponType(*typ)
	if !t.Valid() {
		return cart.Action{}, fmt.Errorf("-type must be percentage or fixed")
	}
	value, err := parseMoney("discount", *discount)
	if err != nil {
		return cart.Action{}, err
	}
	c := cart.AppliedCoupon{
		Code:     pricing.NormalizeCode(*code),
		Type:     t,
		Discount: value,
		Category: *category,
	}
	if *maxDiscount != "" {
		m, err := parseMoney("max", *maxDiscount)
		if err != nil {
			return cart.Action{}, err
		}
		c.MaxDiscount = decimal.NewNullDecimal(m)
	}
	return cart.ApplyCoupon(c), nil
}

func printCart(w io.Writer, s cart.State) {
	if len(s.Items) == 0 {
		_, _ = fmt.Fprintln(w, "Cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSIZE\tQTY\tPRICE\tLINE")
	for _, it := range s.Items {
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			it.ProductID, it.Name, it.Size, it.Quantity, it.Price.StringFixed(2), line.StringFixed(2))
	}
	_ = tw.Flush()

	t := s.Totals()
	_, _ = fmt.Fprintf(w, "Items:    %d\n", s.Count())
	_, _ = fmt.Fprintf(w, "Subtotal: %s\n", t.Subtotal.StringFixed(2))
	if s.AppliedCoupon != nil {
		_, _ = fmt.Fprintf(w, "Coupon:   %s (-%s)\n", s.AppliedCoupon.Code, t.Discount.StringFixed(2))
	}
	_, _ = fmt.Fprintf(w, "Total:    %s\n", t.Total.StringFixed(2))
}
