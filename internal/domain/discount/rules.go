package discount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Table maps lower-cased discount codes to their policies.
type Table map[string]Policy

// DefaultTable holds the promotions offered by the restaurant.
var DefaultTable = Table{
	"save20":  PercentageOff("save20", decimal.RequireFromString("0.20")),
	"loyalty": FlatAmount("loyalty", decimal.NewFromInt(50)),
}

// Resolve maps a customer-supplied code onto a policy. Matching is
// case-insensitive and ignores surrounding whitespace. Empty, "none" and
// unknown codes resolve to None; they are never an error.
func (t Table) Resolve(code string) Policy {
	key := strings.ToLower(strings.TrimSpace(code))
	if key == "" || key == NoneCode {
		return None()
	}
	p, ok := t[key]
	if !ok {
		return None()
	}
	return p
}
