package quant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents represents a price in integer minor currency units.
// E.g., $12.34 = 1234 Cents. All internal price math is int64.
type Cents int64

// Shares represents a whole-share quantity.
type Shares int64

func (c Cents) String() string {
	return fmt.Sprintf("$%d.%02d", int64(c)/100, abs64(int64(c))%100)
}

func (s Shares) String() string {
	return strconv.FormatInt(int64(s), 10)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// ApplyFactor multiplies a price by a decimal factor and rounds half-up
// back to integer cents. E.g., ApplyFactor(950, 0.95) = 903 (902.5 rounds up).
// This is the single rounding rule for all ceiling arithmetic.
func ApplyFactor(c Cents, factor decimal.Decimal) Cents {
	scaled := decimal.NewFromInt(int64(c)).Mul(factor)
	// decimal.Round rounds half away from zero; prices are non-negative,
	// so this is round-half-up.
	return Cents(scaled.Round(0).IntPart())
}

// ParseFactor parses a config-supplied multiplier like "0.95" or "1.01".
// Kept as a decimal string end to end so no float64 touches price math.
func ParseFactor(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid factor %q: %w", s, err)
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("factor %q must be positive", s)
	}
	return d, nil
}

// ParseCentsStr converts a dollar string like "250.00" or "$250.00" to Cents
// without using float64. Fraction digits beyond cents are truncated.
func ParseCentsStr(s string) (Cents, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, fmt.Errorf("empty price string")
	}

	intStr, fracStr := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intStr, fracStr = s[:i], s[i+1:]
	}

	intPart, err := strconv.ParseInt(intStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}

	if len(fracStr) > 2 {
		fracStr = fracStr[:2]
	}
	for len(fracStr) < 2 {
		fracStr += "0"
	}
	fracPart, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}

	if strings.HasPrefix(intStr, "-") {
		return Cents(intPart*100 - fracPart), nil
	}
	return Cents(intPart*100 + fracPart), nil
}

// MinShares returns the smaller of two share quantities.
func MinShares(a, b Shares) Shares {
	if a < b {
		return a
	}
	return b
}
