// Package money formats ledger amounts in the application's single
// fixed currency. The ledger has no locale or multi-currency support;
// every amount is displayed as euros.
package money

import (
	"math"

	gomoney "github.com/Rhymond/go-money"
)

// Format renders a signed amount as a euro display string, e.g.
// "€25.00" or "-€5.00".
func Format(amount float64) string {
	cents := int64(math.Round(amount * 100))
	return gomoney.New(cents, gomoney.EUR).Display()
}
