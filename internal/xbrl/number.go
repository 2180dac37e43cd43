package xbrl

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned by ParseNumber for text values.
var ErrNotNumeric = errors.New("xbrl: value is not numeric")

// normalizeNumber drops thousands separators and moves a trailing minus sign
// ("1200-") to the front.
func normalizeNumber(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if strings.HasSuffix(s, "-") && !strings.HasPrefix(s, "-") {
		s = "-" + strings.TrimSuffix(s, "-")
	}
	return s
}

// ParseNumber converts a filed value to a float. Thousands separators are
// dropped and a trailing minus sign ("1200-") is moved to the front.
func ParseNumber(s string) (float64, error) {
	s = normalizeNumber(s)
	if s == "" {
		return 0, ErrNotNumeric
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrNotNumeric
	}
	return f, nil
}

// ParseDecimal is the exact counterpart of ParseNumber.
func ParseDecimal(s string) (*big.Rat, error) {
	s = normalizeNumber(s)
	if s == "" || strings.Contains(s, "/") {
		return nil, ErrNotNumeric
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, ErrNotNumeric
	}
	return r, nil
}

// maxDecimalPlaces bounds FormatDecimal for values with no finite expansion.
const maxDecimalPlaces = 32

// FormatDecimal renders r in plain decimal notation with as many fraction
// digits as it needs.
func FormatDecimal(r *big.Rat) string {
	ten := big.NewInt(10)
	scaled := new(big.Rat).Set(r)
	places := 0
	for !scaled.IsInt() && places < maxDecimalPlaces {
		scaled.Mul(scaled, new(big.Rat).SetInt(ten))
		places++
	}
	return r.FloatString(places)
}

// FormatNumber renders f without exponent and without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
