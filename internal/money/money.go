// Package money provides fixed-point currency amounts in minor units (cents).
//
// All split arithmetic happens on integer cents so that shares reconcile
// exactly: dividing an Amount never loses or invents a cent. Conversion to
// two-decimal strings happens only at the presentation/JSON boundary.
package money

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Amount is a currency amount in minor units (cents).
type Amount int64

// currencyPattern matches a currency-shaped number: digits with optional
// thousands separators and exactly two decimal places, e.g. "1,234.56".
var currencyPattern = regexp.MustCompile(`^\$?\s*(\d{1,3}(?:,\d{3})*|\d+)\.(\d{2})$`)

// Parse converts a two-decimal currency string (optionally prefixed with "$"
// and containing thousands separators) into an Amount.
func Parse(s string) (Amount, error) {
	m := currencyPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("not a currency amount: %q", s)
	}

	whole, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a currency amount: %q", s)
	}
	cents, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a currency amount: %q", s)
	}

	return Amount(whole*100 + cents), nil
}

// FromFloat converts a float64 dollar value to an Amount, rounding
// half-away-from-zero to the nearest cent.
func FromFloat(f float64) Amount {
	if f < 0 {
		return Amount(-math.Floor(-f*100 + 0.5))
	}
	return Amount(math.Floor(f*100 + 0.5))
}

// Float64 returns the amount as a float64 dollar value. Intended for
// derived display values (e.g. tax percentage), not for arithmetic.
func (a Amount) Float64() float64 {
	return float64(a) / 100
}

// Percent returns pct percent of the amount, rounded to the nearest cent.
// Used for tip-from-percentage derivation.
func (a Amount) Percent(pct float64) Amount {
	return FromFloat(a.Float64() * pct / 100)
}

// Split divides the amount into n shares that sum to the amount exactly.
// Each of the first (a mod n) shares carries one extra cent, so the largest
// and smallest shares differ by at most one cent.
func (a Amount) Split(n int) []Amount {
	if n <= 0 {
		return nil
	}

	base := a / Amount(n)
	rem := a % Amount(n)
	if rem < 0 {
		// Keep remainder non-negative for negative amounts.
		base--
		rem += Amount(n)
	}

	shares := make([]Amount, n)
	for i := range shares {
		shares[i] = base
		if Amount(i) < rem {
			shares[i]++
		}
	}
	return shares
}

// SplitWithRemainderTo divides the amount into n shares that sum to the
// amount exactly, assigning the entire rounding residual (at most n-1 cents)
// to the share at index idx. Used when a designated participant, typically
// the payer, absorbs the discrepancy.
func (a Amount) SplitWithRemainderTo(n, idx int) []Amount {
	if n <= 0 {
		return nil
	}
	if idx < 0 || idx >= n {
		idx = 0
	}

	base := a / Amount(n)
	rem := a % Amount(n)
	if rem < 0 {
		base--
		rem += Amount(n)
	}

	shares := make([]Amount, n)
	for i := range shares {
		shares[i] = base
	}
	shares[idx] += rem
	return shares
}

// String formats the amount as a plain two-decimal string, e.g. "12.34"
// or "-0.50".
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a two-decimal string so boundary
// consumers never see binary floating-point artifacts.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a two-decimal string ("12.34") or a bare
// JSON number (12.34); clients send both shapes.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var parsed Amount
	if v, err := Parse(s); err == nil {
		parsed = v
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", s)
		}
		parsed = FromFloat(f)
	}

	if neg {
		parsed = -parsed
	}
	*a = parsed
	return nil
}
