package constrain

// arrayAssertion selects over (hasMin, hasMax). Size is measured after the
// uniqueness precheck, so deduplication can push a slice under its minimum.
func arrayAssertion(c *ArrayConstraints) (Assertion, error) {
	if c.MinItems != nil && c.MaxItems != nil && *c.MinItems > *c.MaxItems {
		return nil, syntaxErrorf("array: minItems %d exceeds maxItems %d", *c.MinItems, *c.MaxItems)
	}

	idx := 0
	if c.MinItems != nil {
		idx |= 1
	}
	if c.MaxItems != nil {
		idx |= 2
	}

	min, max := c.MinItems, c.MaxItems
	size := func(v any) (int, bool) {
		items, ok := asSlice(v)
		if !ok {
			return 0, false
		}
		return len(items), true
	}

	switch idx {
	case 0:
		return nil, nil
	case 1:
		return func(v any) bool { n, ok := size(v); return ok && n >= *min }, nil
	case 2:
		return func(v any) bool { n, ok := size(v); return ok && n <= *max }, nil
	default:
		return func(v any) bool { n, ok := size(v); return ok && n >= *min && n <= *max }, nil
	}
}
