// Package format maps raw amounts and timestamps to display strings.
// Every function is pure: the same input always yields the same output.
package format

import (
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/marti-dashboard/internal/domain"
)

// DefaultCurrency used when a currency code is unknown.
const DefaultCurrency = money.USD

const (
	// ClassPositive marks non-negative amounts.
	ClassPositive = "positive"
	// ClassNegative marks negative amounts.
	ClassNegative = "negative"
	// ClassBuy marks buy trades.
	ClassBuy = "buy"
	// ClassSell marks sell trades.
	ClassSell = "sell"
)

const (
	dateTimeLayout  = "1/2/2006, 3:04:05 PM"
	timeLabelLayout = "3:04:05 PM"
)

// Currency formats v in the given ISO currency, e.g. $10,250.50 or -$25.50.
// Values are rounded half away from zero to the currency's minor unit.
func Currency(v decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().GreaterThan(maxMinor) {
		return formatLarge(minor, cur.Formatter())
	}
	return money.New(minor.IntPart(), cur.Code).Display()
}

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// formatLarge applies the currency layout of f to minor units beyond int64.
func formatLarge(minor decimal.Decimal, f *money.Formatter) string {
	sa := minor.Abs().String()
	if len(sa) <= f.Fraction {
		sa = strings.Repeat("0", f.Fraction-len(sa)+1) + sa
	}
	if f.Thousand != "" {
		for i := len(sa) - f.Fraction - 3; i > 0; i -= 3 {
			sa = sa[:i] + f.Thousand + sa[i:]
		}
	}
	if f.Fraction > 0 {
		sa = sa[:len(sa)-f.Fraction] + f.Decimal + sa[len(sa)-f.Fraction:]
	}
	sa = strings.Replace(f.Template, "1", sa, 1)
	sa = strings.Replace(sa, "$", f.Grapheme, 1)
	if minor.IsNegative() {
		sa = "-" + sa
	}
	return sa
}

// KnownCurrency reports whether code can be used with Currency.
func KnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// Quantity formats a trade quantity in its shortest exact form.
func Quantity(v decimal.Decimal) string {
	return v.String()
}

// DateTime formats t in loc as a full locale date and time.
func DateTime(t time.Time, loc *time.Location) string {
	return t.In(orUTC(loc)).Format(dateTimeLayout)
}

// TimeLabel formats t in loc as a locale time of day, used as chart label.
func TimeLabel(t time.Time, loc *time.Location) string {
	return t.In(orUTC(loc)).Format(timeLabelLayout)
}

// SignClass returns ClassPositive iff v >= 0.
func SignClass(v decimal.Decimal) string {
	if v.IsNegative() {
		return ClassNegative
	}
	return ClassPositive
}

// SideClass returns the display class of a trade side.
func SideClass(side domain.Side) string {
	if side == domain.SideBuy {
		return ClassBuy
	}
	return ClassSell
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
