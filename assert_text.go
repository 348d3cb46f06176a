package constrain

import "regexp"

// An Assertion is a pure predicate over a candidate value. A nil Assertion
// means the constraint declares no value rules.
type Assertion func(any) bool

// textAssertion selects over (hasMin, hasMax, hasPattern). Patterns match
// from the start of the value; a value with trailing garbage after the match
// still passes, mirroring prefix-match semantics.
func textAssertion(c *TextConstraints) (Assertion, error) {
	var re *regexp.Regexp
	if c.Pattern != "" {
		compiled, err := regexp.Compile(anchorStart(c.Pattern))
		if err != nil {
			return nil, syntaxErrorf("text: invalid pattern %q: %v", c.Pattern, err)
		}
		re = compiled
	}
	if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
		return nil, syntaxErrorf("text: minLength %d exceeds maxLength %d", *c.MinLength, *c.MaxLength)
	}

	idx := 0
	if c.MinLength != nil {
		idx |= 1
	}
	if c.MaxLength != nil {
		idx |= 2
	}
	if re != nil {
		idx |= 4
	}

	min, max := c.MinLength, c.MaxLength
	matches := func(v any) bool {
		s, ok := asString(v)
		return ok && re.MatchString(s)
	}
	minOK := func(v any) bool {
		n, ok := textLen(v)
		return ok && n >= *min
	}
	maxOK := func(v any) bool {
		n, ok := textLen(v)
		return ok && n <= *max
	}
	rangeOK := func(v any) bool {
		n, ok := textLen(v)
		return ok && n >= *min && n <= *max
	}

	switch idx {
	case 0:
		return nil, nil
	case 1:
		return minOK, nil
	case 2:
		return maxOK, nil
	case 3:
		return rangeOK, nil
	case 4:
		return matches, nil
	case 5:
		return both(minOK, matches), nil
	case 6:
		return both(maxOK, matches), nil
	default:
		return both(rangeOK, matches), nil
	}
}

func both(a, b Assertion) Assertion {
	return func(v any) bool { return a(v) && b(v) }
}

// anchorStart pins a pattern to the start of its input unless the author
// already did.
func anchorStart(pattern string) string {
	if len(pattern) > 0 && pattern[0] == '^' {
		return pattern
	}
	return "^(?:" + pattern + ")"
}
