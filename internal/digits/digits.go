// Package digits counts significant and fractional digits of decimal
// literals without rounding them through binary floats.
package digits

import (
	"errors"
	"strconv"
	"strings"
)

// Counts describes the digit layout of a decimal literal.
type Counts struct {
	// Digits is the number of significant digits, spanning both sides of
	// the point.
	Digits int
	// Decimals is the number of digits to the right of the point after the
	// exponent is applied.
	Decimals int
	// Whole is Digits - Decimals, never negative.
	Whole int
}

var errMalformed = errors.New("digits: malformed decimal literal")

// Count parses a decimal literal such as "12.345", "-0.001" or "1.5e3" and
// reports its digit layout.
func Count(s string) (Counts, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Counts{}, errMalformed
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}

	mant := s
	exp := 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant = s[:i]
		e, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return Counts{}, errMalformed
		}
		exp = e
	}

	intPart := mant
	fracPart := ""
	if i := strings.IndexByte(mant, '.'); i >= 0 {
		intPart, fracPart = mant[:i], mant[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return Counts{}, errMalformed
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return Counts{}, errMalformed
	}

	// Significant digits drop leading zeros; "0.001" has one.
	sig := strings.TrimLeft(intPart+fracPart, "0")
	nsig := len(sig)
	if nsig == 0 {
		nsig = 1
	}
	exponent := exp - len(fracPart)

	var c Counts
	if exponent >= 0 {
		c.Digits = nsig + exponent
		c.Decimals = 0
	} else {
		c.Decimals = -exponent
		c.Digits = nsig
		if c.Digits < c.Decimals {
			c.Digits = c.Decimals
		}
	}
	c.Whole = c.Digits - c.Decimals
	return c, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
