package constrain

import "regexp"

// mappingAssertion selects over (hasMin, hasMax, hasKeyPattern). The key
// pattern must match every key from its start.
func mappingAssertion(c *MappingConstraints) (Assertion, error) {
	if c.MinItems != nil && c.MaxItems != nil && *c.MinItems > *c.MaxItems {
		return nil, syntaxErrorf("mapping: minItems %d exceeds maxItems %d", *c.MinItems, *c.MaxItems)
	}
	var re *regexp.Regexp
	if c.KeyPattern != "" {
		compiled, err := regexp.Compile(anchorStart(c.KeyPattern))
		if err != nil {
			return nil, syntaxErrorf("mapping: invalid keyPattern %q: %v", c.KeyPattern, err)
		}
		re = compiled
	}

	idx := 0
	if c.MinItems != nil {
		idx |= 1
	}
	if c.MaxItems != nil {
		idx |= 2
	}
	if re != nil {
		idx |= 4
	}

	min, max := c.MinItems, c.MaxItems
	minOK := func(m map[string]any) bool { return len(m) >= *min }
	maxOK := func(m map[string]any) bool { return len(m) <= *max }
	keysOK := func(m map[string]any) bool {
		for k := range m {
			if !re.MatchString(k) {
				return false
			}
		}
		return true
	}

	var checks []func(map[string]any) bool
	switch idx {
	case 0:
		return nil, nil
	case 1:
		checks = []func(map[string]any) bool{minOK}
	case 2:
		checks = []func(map[string]any) bool{maxOK}
	case 3:
		checks = []func(map[string]any) bool{minOK, maxOK}
	case 4:
		checks = []func(map[string]any) bool{keysOK}
	case 5:
		checks = []func(map[string]any) bool{minOK, keysOK}
	case 6:
		checks = []func(map[string]any) bool{maxOK, keysOK}
	default:
		checks = []func(map[string]any) bool{minOK, maxOK, keysOK}
	}

	return func(v any) bool {
		m, ok := asStringMap(v)
		if !ok {
			return false
		}
		for _, check := range checks {
			if !check(m) {
				return false
			}
		}
		return true
	}, nil
}
