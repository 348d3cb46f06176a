package constrain

import "github.com/reoring/constrain/internal/digits"

// decimalAssertion layers digit-count rules on top of the numeric bound
// checks. Digit counting reads the literal text of the value so trailing
// fractional digits survive intact.
func decimalAssertion(c *DecimalConstraints) (Assertion, error) {
	if c.MaxDigits != nil && *c.MaxDigits < 0 {
		return nil, syntaxErrorf("decimal: maxDigits must be non-negative")
	}
	if c.DecimalPlaces != nil && *c.DecimalPlaces < 0 {
		return nil, syntaxErrorf("decimal: decimalPlaces must be non-negative")
	}
	if c.MaxDigits != nil && c.DecimalPlaces != nil && *c.MaxDigits < *c.DecimalPlaces {
		return nil, syntaxErrorf("decimal: maxDigits %d is smaller than decimalPlaces %d", *c.MaxDigits, *c.DecimalPlaces)
	}

	bounds, err := numberChecks(c.GT, c.GE, c.LT, c.LE, c.MultipleOf)
	if err != nil {
		return nil, err
	}

	maxDigits, places := c.MaxDigits, c.DecimalPlaces
	hasDigitRules := maxDigits != nil || places != nil
	if len(bounds) == 0 && !hasDigitRules {
		return nil, nil
	}

	return func(v any) bool {
		if len(bounds) > 0 {
			f, ok := asFloat(v)
			if !ok {
				return false
			}
			for _, check := range bounds {
				if !check(f) {
					return false
				}
			}
		}
		if !hasDigitRules {
			return true
		}
		text, ok := numberText(v)
		if !ok {
			return false
		}
		c, err := digits.Count(text)
		if err != nil {
			return false
		}
		if maxDigits != nil && c.Digits > *maxDigits {
			return false
		}
		if places != nil && c.Decimals > *places {
			return false
		}
		if maxDigits != nil && places != nil && c.Whole > *maxDigits-*places {
			return false
		}
		return true
	}, nil
}
