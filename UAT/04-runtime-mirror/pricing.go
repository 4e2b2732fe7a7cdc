// Package pricing totals orders. Its helpers are reached through runtime shims, so tests can substitute them
// without generated code.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/toejough/shimtest"
)

// Exported variables.
var (
	ErrUnknownRegion = errors.New("unknown tax region")
)

// Checkout applies a percentage discount to subtotal, adds the region's tax, and rounds to cents.
func Checkout(subtotal float64, region string, percent float64) (float64, error) {
	total := subtotal
	applyDiscount(&total, percent)

	rate, err := taxRate(region)
	if err != nil {
		return 0, fmt.Errorf("checkout: %w", err)
	}

	return Round(total*(1+rate), nil), nil
}

// Round rounds value half away from zero to precision decimal places, or to cents when precision is nil.
func Round(value float64, precision *int) float64 {
	rounded, _ := round(value, shimtest.OrOmitted(precision)).(float64)

	return rounded
}

// unexported constants.
const (
	defaultPrecision = 2
	scope            = "github.com/toejough/shimtest/UAT/04-runtime-mirror"
)

// unexported variables.
var (
	//nolint:gochecknoglobals // Runtime shim
	applyDiscount = shimtest.DefineFunc(scope, "applyDiscount", discount,
		shimtest.Reference("total"), shimtest.Required("percent"))
	//nolint:gochecknoglobals // Runtime shim
	round = shimtest.DefineFunc(scope, "round", roundHalfAway,
		shimtest.Required("value"), shimtest.Optional("precision"))
	//nolint:gochecknoglobals // Runtime shim
	taxRate = shimtest.Define(scope, "taxRate", lookupTaxRate)
	//nolint:gochecknoglobals // Lookup table
	taxRates = map[string]float64{"or": 0, "wa": 0.1}
)

// discount takes percent off *total in place.
func discount(args ...any) any {
	total, _ := args[0].(*float64)
	percent, _ := args[1].(float64)

	*total -= *total * percent / 100 //nolint:mnd // percentage

	return nil
}

func lookupTaxRate(region string) (float64, error) {
	rate, ok := taxRates[region]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}

	return rate, nil
}

func roundHalfAway(args ...any) any {
	value, _ := args[0].(float64)

	precision := defaultPrecision
	if len(args) > 1 {
		precision, _ = args[1].(int)
	}

	scale := math.Pow10(precision)

	return math.Round(value*scale) / scale
}
