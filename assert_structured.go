package constrain

// structuredAssertion validates the shape of a structured value before its
// fields are walked. Objects require every listed field to be present and
// tolerate undeclared keys; tuples require the exact declared arity.
func structuredAssertion(c *StructuredConstraints) (Assertion, error) {
	if c.Tuple {
		if len(c.Required) > 0 {
			return nil, syntaxErrorf("structured: tuples cannot declare required fields")
		}
		arity := len(c.Fields)
		return func(v any) bool {
			items, ok := asSlice(v)
			return ok && len(items) == arity
		}, nil
	}

	declared := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		declared[f.Name] = struct{}{}
	}
	for _, name := range c.Required {
		if _, ok := declared[name]; !ok {
			return nil, syntaxErrorf("structured: required field %q is not declared", name)
		}
	}

	required := append([]string(nil), c.Required...)
	return func(v any) bool {
		m, ok := asStringMap(v)
		if !ok {
			return instanceOf(v, c.Type)
		}
		for _, name := range required {
			if _, present := m[name]; !present {
				return false
			}
		}
		return true
	}, nil
}
