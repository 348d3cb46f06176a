package constrain

import "reflect"

// A valueCheck decides a single value without recursing. The returned value
// may differ from the input when a precheck transformed it.
type valueCheck interface {
	Check(v any) (bool, any)
}

// An instanceCheck reports whether a value already has the shape the
// constraint targets. It is the terminal condition when no assertions are
// declared.
type instanceCheck func(any) bool

// strategy bit layout for the checker table.
const (
	flagAssertion = 1 << iota
	flagInstance
	flagNullable
)

// checker pairs a selected strategy with the pieces it needs. The strategy
// is fixed at compile time by a total lookup over the three flags.
type checker struct {
	strategy func(*checker, any) (bool, any)
	instance instanceCheck
	precheck Precheck
	assert   Assertion
}

// checkerTable maps every (nullable, returnIfInstance, hasAssertion)
// combination to a strategy. All eight entries are populated. Without
// assertions the instance check is the terminal condition; it is never
// skipped just because no bounds were declared.
var checkerTable = [8]func(*checker, any) (bool, any){
	0:                             (*checker).checkInstance,
	flagAssertion:                 (*checker).checkAssert,
	flagInstance:                  (*checker).checkInstance,
	flagInstance | flagAssertion:  (*checker).checkInstanceAssert,
	flagNullable:                  (*checker).checkNullableInstance,
	flagNullable | flagAssertion:  (*checker).checkNullableAssert,
	flagNullable | flagInstance:   (*checker).checkNullableInstance,
	flagNullable | flagInstance | flagAssertion: (*checker).checkNullableInstanceAssert,
}

// newChecker selects the strategy for the given flags. assert may be nil,
// which drops the assertion bit and makes instance the terminal check.
func newChecker(instance instanceCheck, nullable, returnIfInstance bool, precheck Precheck, assert Assertion) *checker {
	idx := 0
	if assert != nil {
		idx |= flagAssertion
	}
	if returnIfInstance {
		idx |= flagInstance
	}
	if nullable {
		idx |= flagNullable
	}
	return &checker{strategy: checkerTable[idx], instance: instance, precheck: precheck, assert: assert}
}

// newNoOpChecker accepts every value, including nil. Only undeclared
// constraints select it.
func newNoOpChecker(precheck Precheck) *checker {
	return &checker{strategy: (*checker).checkNoOp, precheck: precheck}
}

func (c *checker) Check(v any) (bool, any) { return c.strategy(c, v) }

func (c *checker) apply(v any) any {
	if c.precheck != nil {
		return c.precheck(v)
	}
	return v
}

func (c *checker) checkNoOp(v any) (bool, any) { return true, c.apply(v) }

func (c *checker) checkAssert(v any) (bool, any) {
	v = c.apply(v)
	return c.assert(v), v
}

func (c *checker) checkInstance(v any) (bool, any) {
	if !c.instance(v) {
		return false, v
	}
	return true, c.apply(v)
}

func (c *checker) checkInstanceAssert(v any) (bool, any) {
	if c.instance(v) {
		return true, v
	}
	v = c.apply(v)
	return c.assert(v), v
}

func (c *checker) checkNullableAssert(v any) (bool, any) {
	if v == nil {
		return true, nil
	}
	return c.checkAssert(v)
}

func (c *checker) checkNullableInstance(v any) (bool, any) {
	if v == nil {
		return true, nil
	}
	return c.checkInstance(v)
}

func (c *checker) checkNullableInstanceAssert(v any) (bool, any) {
	if v == nil {
		return true, nil
	}
	return c.checkInstanceAssert(v)
}

// oneOfCheck matches enumeration members. Comparable items live in a set;
// numeric items are additionally matched by value so 1, 1.0 and
// json.Number("1") find each other. Non-comparable items fall back to deep
// equality.
type oneOfCheck struct {
	nullable bool
	fast     map[any]struct{}
	numeric  map[float64]struct{}
	slow     []any
}

func newOneOfCheck(items []any, nullable bool) *oneOfCheck {
	oc := &oneOfCheck{
		nullable: nullable,
		fast:     make(map[any]struct{}, len(items)),
	}
	for _, item := range items {
		if f, ok := asFloat(item); ok {
			if oc.numeric == nil {
				oc.numeric = make(map[float64]struct{})
			}
			oc.numeric[f] = struct{}{}
		}
		if comparableValue(item) {
			oc.fast[item] = struct{}{}
		} else {
			oc.slow = append(oc.slow, item)
		}
	}
	return oc
}

func (oc *oneOfCheck) Check(v any) (bool, any) {
	if v == nil {
		if oc.nullable {
			return true, nil
		}
		_, ok := oc.fast[nil]
		return ok, v
	}
	if comparableValue(v) {
		if _, ok := oc.fast[v]; ok {
			return true, v
		}
	}
	if oc.numeric != nil {
		if f, ok := asFloat(v); ok {
			if _, ok := oc.numeric[f]; ok {
				return true, v
			}
		}
	}
	for _, item := range oc.slow {
		if reflect.DeepEqual(item, v) {
			return true, v
		}
	}
	return false, v
}
