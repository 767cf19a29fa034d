// Package discount models the closed set of discount policies an order can
// carry and the fixed table that maps customer-facing codes onto them.
package discount

import (
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind uint8

const (
	// KindNone applies no discount.
	KindNone Kind = iota
	// KindPercentageOff takes a fraction of the subtotal.
	KindPercentageOff
	// KindFlatAmount takes a fixed amount, capped at the subtotal.
	KindFlatAmount
)

// NoneCode is the code recorded for orders placed without a discount.
const NoneCode = "none"

func (k Kind) String() string {
	switch k {
	case KindPercentageOff:
		return "percentage_off"
	case KindFlatAmount:
		return "flat_amount"
	default:
		return "none"
	}
}

// Policy is a resolved discount directive. The zero value is the None policy.
type Policy struct {
	Code string
	Kind Kind
	// Rate is the fraction of the subtotal taken off (0.20 for 20%).
	Rate decimal.Decimal
	// Amount is the flat deduction.
	Amount decimal.Decimal
}

// None returns the policy that applies no discount.
func None() Policy {
	return Policy{Code: NoneCode, Kind: KindNone}
}

// PercentageOff returns a policy taking rate (a fraction) off the subtotal.
func PercentageOff(code string, rate decimal.Decimal) Policy {
	return Policy{Code: code, Kind: KindPercentageOff, Rate: rate}
}

// FlatAmount returns a policy deducting a fixed amount from the subtotal.
func FlatAmount(code string, amount decimal.Decimal) Policy {
	return Policy{Code: code, Kind: KindFlatAmount, Amount: amount}
}

// IsNone reports whether the policy applies no discount.
func (p Policy) IsNone() bool {
	return p.Kind == KindNone
}

// CodeOrNone returns the policy code, or NoneCode for the None policy.
func (p Policy) CodeOrNone() string {
	if p.IsNone() || p.Code == "" {
		return NoneCode
	}
	return p.Code
}

// Apply computes the discount for the given subtotal. The result is rounded
// to two decimal places and always lies within [0, subtotal].
func (p Policy) Apply(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch p.Kind {
	case KindPercentageOff:
		amount = subtotal.Mul(p.Rate)
	case KindFlatAmount:
		amount = p.Amount
	default:
		return decimal.Zero
	}

	amount = amount.Round(2)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, subtotal)
}
