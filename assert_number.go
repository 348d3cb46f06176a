package constrain

import "math"

// numberAssertion composes the active bound checks. GT/GE and LT/LE are
// mutually exclusive; declaring both members of a pair is a syntax error
// because no value could ever need two lower (or upper) bounds.
func numberAssertion(c *NumberConstraints) (Assertion, error) {
	checks, err := numberChecks(c.GT, c.GE, c.LT, c.LE, c.MultipleOf)
	if err != nil {
		return nil, err
	}
	if len(checks) == 0 {
		return nil, nil
	}
	return func(v any) bool {
		f, ok := asFloat(v)
		if !ok {
			return false
		}
		for _, check := range checks {
			if !check(f) {
				return false
			}
		}
		return true
	}, nil
}

func numberChecks(gt, ge, lt, le, mul *float64) ([]func(float64) bool, error) {
	if gt != nil && ge != nil {
		return nil, syntaxErrorf("number: gt and ge are mutually exclusive")
	}
	if lt != nil && le != nil {
		return nil, syntaxErrorf("number: lt and le are mutually exclusive")
	}
	var checks []func(float64) bool
	if gt != nil {
		bound := *gt
		checks = append(checks, func(f float64) bool { return f > bound })
	}
	if ge != nil {
		bound := *ge
		checks = append(checks, func(f float64) bool { return f >= bound })
	}
	if lt != nil {
		bound := *lt
		checks = append(checks, func(f float64) bool { return f < bound })
	}
	if le != nil {
		bound := *le
		checks = append(checks, func(f float64) bool { return f <= bound })
	}
	if mul != nil {
		m := *mul
		if m == 0 {
			return nil, syntaxErrorf("number: multipleOf must be non-zero")
		}
		checks = append(checks, func(f float64) bool { return math.Mod(f, m) == 0 })
	}
	return checks, nil
}
