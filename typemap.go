package constrain

import (
	"reflect"
	"sync"
)

// typeMap resolves the alternative of an untagged union by value type. Exact
// hits come from a map; otherwise alternatives are scanned in declaration
// order for an assignable target, and the answer is memoized. Declaration
// order breaks ties when several alternatives could accept the type.
type typeMap struct {
	mu    sync.RWMutex
	memo  map[reflect.Type]int
	types []reflect.Type
}

func newTypeMap(types []reflect.Type) *typeMap {
	tm := &typeMap{memo: make(map[reflect.Type]int, len(types)), types: types}
	for i, t := range types {
		if t == nil {
			continue
		}
		if _, taken := tm.memo[t]; !taken {
			tm.memo[t] = i
		}
	}
	return tm
}

// match returns the index of the alternative for t, or -1.
func (tm *typeMap) match(t reflect.Type) int {
	if t == nil {
		return -1
	}
	tm.mu.RLock()
	idx, ok := tm.memo[t]
	tm.mu.RUnlock()
	if ok {
		return idx
	}

	idx = -1
	for i, alt := range tm.types {
		if alt == nil {
			continue
		}
		if t.AssignableTo(alt) || (alt.Kind() == reflect.Interface && t.Implements(alt)) {
			idx = i
			break
		}
	}
	tm.mu.Lock()
	tm.memo[t] = idx
	tm.mu.Unlock()
	return idx
}
