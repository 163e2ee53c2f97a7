// Package validation registers the storefront's custom binding rules on
// gin's validator.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Ashish5180/vibe-bites/pricing"
)

var (
	pincodeRe = regexp.MustCompile(`^[0-9]{6}$`)
	phoneRe   = regexp.MustCompile(`^[0-9]{10}$`)

	once    sync.Once
	onceErr error
)

// Register installs the custom rules once per process. Safe to call from
// main and from every test.
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		onceErr = register(v)
	})
	return onceErr
}

func register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})

	rules := map[string]validator.Func{
		"pincode":        matches(pincodeRe),
		"phone10":        matches(phoneRe),
		"strongpassword": strongPassword,
		"category":       category,
		"coupontype":     couponType,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// decimalValue lets the numeric rules (gte, lte, ...) run against money fields.
func decimalValue(field reflect.Value) any {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := d.Float64()
		return f
	case decimal.NullDecimal:
		if !d.Valid {
			return nil
		}
		f, _ := d.Decimal.Float64()
		return f
	}
	return nil
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// StrongPassword is at least six characters with an upper, a lower and a digit.
func StrongPassword(s string) bool {
	if len(s) < 6 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func strongPassword(fl validator.FieldLevel) bool {
	return StrongPassword(fl.Field().String())
}

func category(fl validator.FieldLevel) bool {
	return pricing.IsCategory(fl.Field().String())
}

func couponType(fl validator.FieldLevel) bool {
	return pricing.CouponType(fl.Field().String()).Valid()
}
