package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestTable_Resolve(t *testing.T) {
	tests := []struct {
		code     string
		wantKind Kind
		wantCode string
	}{
		{code: "", wantKind: KindNone, wantCode: NoneCode},
		{code: "none", wantKind: KindNone, wantCode: NoneCode},
		{code: "NONE", wantKind: KindNone, wantCode: NoneCode},
		{code: "save20", wantKind: KindPercentageOff, wantCode: "save20"},
		{code: "  SAVE20 ", wantKind: KindPercentageOff, wantCode: "save20"},
		{code: "Loyalty", wantKind: KindFlatAmount, wantCode: "loyalty"},
		{code: "BOGUS", wantKind: KindNone, wantCode: NoneCode},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			p := DefaultTable.Resolve(tt.code)
			assert.Equal(t, tt.wantKind, p.Kind)
			assert.Equal(t, tt.wantCode, p.CodeOrNone())
		})
	}
}

func TestPolicy_Apply(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		subtotal decimal.Decimal
		want     decimal.Decimal
	}{
		{
			name:     "none",
			policy:   None(),
			subtotal: d("200"),
			want:     decimal.Zero,
		},
		{
			name:     "zero value policy is none",
			policy:   Policy{},
			subtotal: d("200"),
			want:     decimal.Zero,
		},
		{
			name:     "20 percent of 200",
			policy:   PercentageOff("save20", d("0.20")),
			subtotal: d("200"),
			want:     d("40"),
		},
		{
			name:     "percentage rounds half up to cents",
			policy:   PercentageOff("save20", d("0.20")),
			subtotal: d("10.33"),
			want:     d("2.07"),
		},
		{
			name:     "flat below subtotal",
			policy:   FlatAmount("loyalty", d("50")),
			subtotal: d("200"),
			want:     d("50"),
		},
		{
			name:     "flat capped at subtotal",
			policy:   FlatAmount("loyalty", d("50")),
			subtotal: d("35"),
			want:     d("35"),
		},
		{
			name:     "rate above one capped at subtotal",
			policy:   PercentageOff("weird", d("1.5")),
			subtotal: d("80"),
			want:     d("80"),
		},
		{
			name:     "negative flat floored at zero",
			policy:   FlatAmount("neg", d("-5")),
			subtotal: d("80"),
			want:     decimal.Zero,
		},
		{
			name:     "zero subtotal",
			policy:   FlatAmount("loyalty", d("50")),
			subtotal: decimal.Zero,
			want:     decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Apply(tt.subtotal)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}
