package boxes

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatNumber renders a number the way it is written back into a literal
// input: "NaN", "Infinity", "-Infinity", or the shortest decimal that
// round-trips. Exponents are never used, so the output of a finite number is
// always accepted by package mathexp.
//
// The output for NaN and infinities is not: a slot that receives "Infinity"
// from a push or an unbind evaluates to NaN with a parse error, the same as
// any other malformed input.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		// Also normalizes -0.
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var ukPrinter = message.NewPrinter(language.BritishEnglish)

// FormatGrouped renders a number rounded to an integer, half away from zero,
// with thousands separators: 1234567.5 becomes "1,234,568".
func FormatGrouped(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	v = math.Round(v)
	if math.Abs(v) < 1<<62 {
		return ukPrinter.Sprintf("%d", int64(v))
	}
	return ukPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}
