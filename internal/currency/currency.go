// Package currency converts catalogue prices to whole FCFA amounts and
// renders them for display.
package currency

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const symbol = "FCFA"

var half = decimal.New(5, -1)

// ToMinorInteger rounds value to the nearest whole FCFA. Ties go toward
// positive infinity, so 2.5 becomes 3 and -2.5 becomes -2. NaN and
// infinities map to 0.
func ToMinorInteger(value float64) int64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return decimal.NewFromFloat(value).Add(half).Floor().IntPart()
}

// Format renders value as "1 234 567 FCFA".
func Format(value float64) string {
	return FormatAmount(ToMinorInteger(value))
}

// FormatAmount renders an amount that is already a whole number of FCFA.
func FormatAmount(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(' ')
		b.WriteString(digits[i : i+3])
	}
	b.WriteByte(' ')
	b.WriteString(symbol)
	return b.String()
}
