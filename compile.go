package constrain

import "reflect"

// Compile selects assertions, prechecks and walking strategies for every
// node of a constraint tree and returns a reusable validator. Declarations
// that can never hold surface here as *SyntaxError; constraint values
// Compile does not understand surface as *TypeError. Nodes are compiled
// once per identity, so shared and self-referential subtrees are handled.
func Compile(c Constraint) (ConstraintValidator, error) {
	if c == nil {
		return nil, typeErrorf("constrain: cannot compile a nil constraint")
	}
	tree, err := newCompiler().compile(c)
	if err != nil {
		return nil, err
	}
	return &rootValidator{c: c, tree: tree}, nil
}

// MustCompile is Compile that panics on error, for declarations known good
// at program start.
func MustCompile(c Constraint) ConstraintValidator {
	v, err := Compile(c)
	if err != nil {
		panic(err)
	}
	return v
}

type compiler struct {
	done       map[Constraint]treeValidator
	inProgress map[Constraint]*lazyValidator
}

func newCompiler() *compiler {
	return &compiler{
		done:       make(map[Constraint]treeValidator),
		inProgress: make(map[Constraint]*lazyValidator),
	}
}

func (cp *compiler) compile(c Constraint) (treeValidator, error) {
	if v, ok := cp.done[c]; ok {
		return v, nil
	}
	if lz, ok := cp.inProgress[c]; ok {
		return lz, nil
	}
	lz := &lazyValidator{c: c}
	cp.inProgress[c] = lz
	v, err := cp.compileNode(c)
	delete(cp.inProgress, c)
	if err != nil {
		return nil, err
	}
	lz.tree = v
	cp.done[c] = v
	return v, nil
}

func (cp *compiler) compileNode(c Constraint) (treeValidator, error) {
	m := c.Metadata()
	switch c := c.(type) {
	case *UndeclaredConstraints:
		return &simpleValidator{c: c, check: newNoOpChecker(nil)}, nil

	case *TypeConstraints:
		if m.Type == nil {
			return nil, typeErrorf("type constraint %q has no target type", m.DisplayName())
		}
		return &simpleValidator{c: c, check: newChecker(typeInstance(m.Type), m.Nullable, true, nil, nil)}, nil

	case *TextConstraints:
		assert, err := textAssertion(c)
		if err != nil {
			return nil, err
		}
		return &simpleValidator{c: c, check: newChecker(textInstance(m.Type), m.Nullable, false, textPrecheck(c), assert)}, nil

	case *NumberConstraints:
		assert, err := numberAssertion(c)
		if err != nil {
			return nil, err
		}
		return &simpleValidator{c: c, check: newChecker(numberInstance(m.Type), m.Nullable, false, nil, assert)}, nil

	case *DecimalConstraints:
		assert, err := decimalAssertion(c)
		if err != nil {
			return nil, err
		}
		return &simpleValidator{c: c, check: newChecker(numberInstance(m.Type), m.Nullable, false, nil, assert)}, nil

	case *EnumerationConstraints:
		if len(c.Items) == 0 {
			return nil, syntaxErrorf("enum: at least one item is required")
		}
		return &simpleValidator{c: c, check: newOneOfCheck(c.Items, m.Nullable)}, nil

	case *ArrayConstraints:
		return cp.compileArray(c)

	case *MappingConstraints:
		return cp.compileMapping(c)

	case *StructuredConstraints:
		return cp.compileStructured(c)

	case *MultiConstraints:
		return cp.compileMulti(c)

	case *DeferredConstraints:
		if c.Resolve == nil {
			return nil, typeErrorf("deferred constraint %q has no resolver", m.DisplayName())
		}
		return &delayedValidator{c: c}, nil
	}
	return nil, typeErrorf("unsupported constraint %T", c)
}

func (cp *compiler) compileArray(c *ArrayConstraints) (treeValidator, error) {
	assert, err := arrayAssertion(c)
	if err != nil {
		return nil, err
	}
	var pre Precheck
	if c.Unique {
		pre = uniquePrecheck
	}
	av := &arrayValidator{c: c, check: newChecker(sliceInstance(c.Type), c.Nullable, false, pre, assert)}
	if c.Values != nil {
		av.items, err = cp.compile(c.Values)
		if err != nil {
			return nil, err
		}
	}
	return av, nil
}

func (cp *compiler) compileMapping(c *MappingConstraints) (treeValidator, error) {
	assert, err := mappingAssertion(c)
	if err != nil {
		return nil, err
	}
	mv := &mappingValidator{c: c, check: newChecker(mapInstance(c.Type), c.Nullable, false, nil, assert)}
	var keys, values treeValidator
	if c.Keys != nil {
		if keys, err = cp.compile(c.Keys); err != nil {
			return nil, err
		}
	}
	if c.Values != nil {
		if values, err = cp.compile(c.Values); err != nil {
			return nil, err
		}
	}
	switch {
	case keys != nil && values != nil:
		mv.entry = &compoundEntryValidator{
			field: fieldEntryValidator{keys: keys},
			value: valueEntryValidator{values: values},
		}
	case keys != nil:
		mv.entry = &fieldEntryValidator{keys: keys}
	case values != nil:
		mv.entry = &valueEntryValidator{values: values}
	}
	return mv, nil
}

func (cp *compiler) compileStructured(c *StructuredConstraints) (treeValidator, error) {
	assert, err := structuredAssertion(c)
	if err != nil {
		return nil, err
	}
	// Only genuine struct instances are trusted as-is; map- and
	// slice-shaped targets must still pass the shape assertions.
	check := newChecker(typeInstance(c.Type), c.Nullable, isStructType(c.Type), nil, assert)
	fields := make([]fieldValidator, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Constraints == nil {
			return nil, typeErrorf("structured: field %q has no constraints", f.Name)
		}
		fv, err := cp.compile(f.Constraints)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fieldValidator{name: f.Name, tree: fv})
	}
	if c.Tuple {
		return &tupleValidator{c: c, check: check, fields: fields}, nil
	}
	return &objectValidator{c: c, check: check, fields: fields}, nil
}

func (cp *compiler) compileMulti(c *MultiConstraints) (treeValidator, error) {
	if c.TagField != "" {
		if len(c.TagMapping) == 0 {
			return nil, syntaxErrorf("union: tag field %q declared without a tag mapping", c.TagField)
		}
		byTag := make(map[string]treeValidator, len(c.TagMapping))
		for tag, alt := range c.TagMapping {
			tv, err := cp.compile(alt)
			if err != nil {
				return nil, err
			}
			byTag[tag] = tv
		}
		return &taggedMultiValidator{c: c, byTag: byTag}, nil
	}

	if len(c.Alternatives) == 0 {
		return nil, syntaxErrorf("union: at least one alternative is required")
	}
	alts := make([]treeValidator, len(c.Alternatives))
	types := make([]reflect.Type, len(c.Alternatives))
	for i, alt := range c.Alternatives {
		tv, err := cp.compile(alt)
		if err != nil {
			return nil, err
		}
		alts[i] = tv
		types[i] = alt.Metadata().Type
	}
	return &multiValidator{c: c, alts: alts, tm: newTypeMap(types)}, nil
}
