package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// zentsPerZLD is the number of indivisible units in one ZLD.
const zentsPerZLD = int64(1) << 24

// Amount is a signed quantity of zents. All arithmetic is exact.
type Amount int64

// Zero is the additive identity.
const Zero Amount = 0

// NewAmount wraps a raw zent count.
func NewAmount(zents int64) Amount {
	return Amount(zents)
}

// ParseZLD converts a decimal ZLD string such as "39.99" or "-5" into zents.
// Fractions below one zent are truncated toward zero.
func ParseZLD(s string) (Amount, error) {
	raw := strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(raw, "-"):
		neg = true
		raw = raw[1:]
	case strings.HasPrefix(raw, "+"):
		raw = raw[1:]
	}
	if raw == "" {
		return Zero, fmt.Errorf("invalid amount %q", s)
	}

	whole, frac, _ := strings.Cut(raw, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return Zero, fmt.Errorf("invalid amount %q", s)
	}
	if w > (1<<62)/zentsPerZLD {
		return Zero, fmt.Errorf("amount %q out of range", s)
	}
	zents := w * zentsPerZLD

	if frac != "" {
		if len(frac) > 9 {
			return Zero, fmt.Errorf("invalid amount %q: too many decimals", s)
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return Zero, fmt.Errorf("invalid amount %q", s)
		}
		scale := int64(1)
		for range frac {
			scale *= 10
		}
		zents += f * zentsPerZLD / scale
	}

	if neg {
		zents = -zents
	}
	return Amount(zents), nil
}

// MustParseZLD is ParseZLD for constants and tests.
func MustParseZLD(s string) Amount {
	a, err := ParseZLD(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Zents() int64        { return int64(a) }
func (a Amount) Add(b Amount) Amount { return a + b }
func (a Amount) Sub(b Amount) Amount { return a - b }
func (a Amount) Neg() Amount         { return -a }
func (a Amount) IsZero() bool        { return a == 0 }
func (a Amount) IsNegative() bool    { return a < 0 }
func (a Amount) IsPositive() bool    { return a > 0 }

// CheckedAdd returns a+b and false when the sum leaves the range a ledger can
// hold. math.MinInt64 counts as out of range since it has no negation.
func (a Amount) CheckedAdd(b Amount) (Amount, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) || sum == math.MinInt64 {
		return a, false
	}
	return sum, true
}

// Abs returns the magnitude of a.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ZLD renders the amount in ZLD with two decimals, rounding half up.
func (a Amount) ZLD() string {
	mag := uint64(a)
	if a < 0 {
		mag = -mag
	}
	whole := mag / uint64(zentsPerZLD)
	cents := (mag%uint64(zentsPerZLD)*100 + uint64(zentsPerZLD)/2) / uint64(zentsPerZLD)
	if cents == 100 {
		whole++
		cents = 0
	}
	sign := ""
	if a < 0 && (whole != 0 || cents != 0) {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%02d", sign, whole, cents)
}

func (a Amount) String() string {
	return a.ZLD() + "ZLD"
}
