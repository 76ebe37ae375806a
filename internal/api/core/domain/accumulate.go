package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TotalPlaces is the number of decimal places kept in an order total.
const TotalPlaces = 2

// Accumulation is the validated sum of an order's lines.
type Accumulation struct {
	ItemCount  float64
	OrderTotal float64
}

// Accumulate coerces every line to numbers and sums quantity and
// quantity*price. The total is rounded to TotalPlaces, half away from zero
// on the decimal value of the operands. The first line that does not coerce
// to finite numbers, or that pushes the count or total past the float64
// range, aborts with a *ValidationError and nothing is returned.
func Accumulate(items []LineItem) (Accumulation, error) {
	var (
		count float64
		total = decimal.Zero
	)

	for i, item := range items {
		qty, okQty := ToNumber(item.Qty)
		price, okPrice := ToNumber(item.Price)
		if !okQty || !okPrice {
			return Accumulation{}, &ValidationError{Line: i, Message: MsgInvalidItem}
		}

		count += qty
		total = total.Add(decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price)))
		if math.IsInf(count, 0) || math.IsInf(total.InexactFloat64(), 0) {
			return Accumulation{}, &ValidationError{Line: i, Message: MsgInvalidItem}
		}
	}

	return Accumulation{
		ItemCount:  count,
		OrderTotal: total.Round(TotalPlaces).InexactFloat64(),
	}, nil
}

// ToNumber converts a raw JSON value to a finite float64 using the loose
// rules of a JavaScript Number() call: null and false are 0, true is 1,
// strings are trimmed and parsed (empty is 0, 0x/0o/0b prefixes allowed).
// Absent values, arrays, objects and anything non-finite report false.
func ToNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var n float64
	switch raw[0] {
	case 'n':
		return 0, string(raw) == "null"
	case 't':
		return 1, string(raw) == "true"
	case 'f':
		return 0, string(raw) == "false"
	case '[', '{':
		return 0, false
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, ok := parseNumericString(s)
		if !ok {
			return 0, false
		}
		n = v
	default:
		v, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return 0, false
		}
		n = v
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.Contains(s, "_") {
				return 0, false
			}
			return float64(u), true
		}
	}

	// strconv spells infinity and NaN differently from JSON clients; only
	// plain decimal and exponent forms are numbers here.
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
