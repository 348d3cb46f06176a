package constrain

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// ConstraintValidator walks a value against a compiled constraint tree.
// Validate stops at the first violation; ValidateExhaustive keeps walking
// sibling elements and reports container violations with their nested
// failures attached. Both return the validated (possibly transformed) value
// on success. Compiled validators are safe for concurrent use.
type ConstraintValidator interface {
	Constraints() Constraint
	Validate(v any) (any, error)
	ValidateExhaustive(v any) (any, error)
}

// treeValidator is the internal recursion contract. path is "" at the root;
// exhaustive selects error collection over fail-fast.
type treeValidator interface {
	constraints() Constraint
	validate(v any, path string, exhaustive bool) (any, *ValueError)
}

// rootValidator adapts a treeValidator to the public surface.
type rootValidator struct {
	c    Constraint
	tree treeValidator
}

func (r *rootValidator) Constraints() Constraint { return r.c }

func (r *rootValidator) Validate(v any) (any, error) {
	out, err := r.tree.validate(v, "", false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *rootValidator) ValidateExhaustive(v any) (any, error) {
	out, err := r.tree.validate(v, "", true)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---- scalar ----

type simpleValidator struct {
	c     Constraint
	check valueCheck
}

func (s *simpleValidator) constraints() Constraint { return s.c }

func (s *simpleValidator) validate(v any, path string, _ bool) (any, *ValueError) {
	ok, out := s.check.Check(v)
	if !ok {
		return nil, newValueError(v, path, s.c, nil)
	}
	return out, nil
}

// ---- array ----

type arrayValidator struct {
	c     *ArrayConstraints
	check valueCheck
	items treeValidator
}

func (a *arrayValidator) constraints() Constraint { return a.c }

func (a *arrayValidator) validate(v any, path string, exhaustive bool) (any, *ValueError) {
	ok, v2 := a.check.Check(v)
	if !ok {
		return nil, newValueError(v, path, a.c, nil)
	}
	if v2 == nil {
		return nil, nil
	}
	items, ok := asSlice(v2)
	if !ok {
		return nil, newValueError(v, path, a.c, nil)
	}
	if a.items == nil {
		if _, reshaped := v2.([]any); reshaped {
			return rebuildSlice(v, items), nil
		}
		return v2, nil
	}

	base := basePath(path, a.c)
	out := make([]any, 0, len(items))
	var nested []*ValueError
	for i, item := range items {
		iv, ierr := a.items.validate(item, ElementPath(base, i), exhaustive)
		if ierr != nil {
			if !exhaustive {
				return nil, ierr
			}
			nested = append(nested, ierr)
			continue
		}
		out = append(out, iv)
	}
	if len(nested) > 0 {
		return nil, newValueError(v, path, a.c, nested)
	}
	return rebuildSlice(v, out), nil
}

// ---- mapping ----

// entryValidator checks one mapping entry and returns the validated key and
// value.
type entryValidator interface {
	validateEntry(key string, val any, path string, exhaustive bool) (string, any, *ValueError)
}

type fieldEntryValidator struct {
	keys treeValidator
}

func (f *fieldEntryValidator) validateEntry(key string, val any, path string, exhaustive bool) (string, any, *ValueError) {
	kv, err := f.keys.validate(key, path, exhaustive)
	if err != nil {
		return key, val, err
	}
	if ks, ok := asString(kv); ok {
		key = ks
	}
	return key, val, nil
}

type valueEntryValidator struct {
	values treeValidator
}

func (v *valueEntryValidator) validateEntry(key string, val any, path string, exhaustive bool) (string, any, *ValueError) {
	out, err := v.values.validate(val, path, exhaustive)
	if err != nil {
		return key, val, err
	}
	return key, out, nil
}

type compoundEntryValidator struct {
	field fieldEntryValidator
	value valueEntryValidator
}

func (c *compoundEntryValidator) validateEntry(key string, val any, path string, exhaustive bool) (string, any, *ValueError) {
	key, val, err := c.field.validateEntry(key, val, path, exhaustive)
	if err != nil {
		return key, val, err
	}
	return c.value.validateEntry(key, val, path, exhaustive)
}

type mappingValidator struct {
	c     *MappingConstraints
	check valueCheck
	entry entryValidator
}

func (m *mappingValidator) constraints() Constraint { return m.c }

func (m *mappingValidator) validate(v any, path string, exhaustive bool) (any, *ValueError) {
	ok, v2 := m.check.Check(v)
	if !ok {
		return nil, newValueError(v, path, m.c, nil)
	}
	if v2 == nil {
		return nil, nil
	}
	entries, ok := asStringMap(v2)
	if !ok {
		return nil, newValueError(v, path, m.c, nil)
	}
	if m.entry == nil {
		return v2, nil
	}

	// Deterministic order keeps exhaustive reports stable.
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	base := basePath(path, m.c)
	out := make(map[string]any, len(entries))
	var nested []*ValueError
	for _, k := range keys {
		nk, nv, err := m.entry.validateEntry(k, entries[k], ElementPath(base, k), exhaustive)
		if err != nil {
			if !exhaustive {
				return nil, err
			}
			nested = append(nested, err)
			continue
		}
		out[nk] = nv
	}
	if len(nested) > 0 {
		return nil, newValueError(v, path, m.c, nested)
	}
	return rebuildMap(v, out), nil
}

// ---- structured ----

type fieldValidator struct {
	name string
	tree treeValidator
}

type objectValidator struct {
	c      *StructuredConstraints
	check  valueCheck
	fields []fieldValidator
}

func (o *objectValidator) constraints() Constraint { return o.c }

func (o *objectValidator) validate(v any, path string, exhaustive bool) (any, *ValueError) {
	ok, v2 := o.check.Check(v)
	if !ok {
		return nil, newValueError(v, path, o.c, nil)
	}
	if v2 == nil {
		return nil, nil
	}
	m, isMap := asStringMap(v2)
	if !isMap {
		// Already an instance of the target type; trusted as-is.
		return v2, nil
	}

	base := basePath(path, o.c)
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	var nested []*ValueError
	for _, f := range o.fields {
		val, present := m[f.name]
		if !present {
			continue
		}
		fv, ferr := f.tree.validate(val, FieldPath(base, f.name), exhaustive)
		if ferr != nil {
			if !exhaustive {
				return nil, ferr
			}
			nested = append(nested, ferr)
			continue
		}
		out[f.name] = fv
	}
	if len(nested) > 0 {
		return nil, newValueError(v, path, o.c, nested)
	}
	return rebuildMap(v, out), nil
}

type tupleValidator struct {
	c      *StructuredConstraints
	check  valueCheck
	fields []fieldValidator
}

func (t *tupleValidator) constraints() Constraint { return t.c }

func (t *tupleValidator) validate(v any, path string, exhaustive bool) (any, *ValueError) {
	ok, v2 := t.check.Check(v)
	if !ok {
		return nil, newValueError(v, path, t.c, nil)
	}
	if v2 == nil {
		return nil, nil
	}
	items, ok := asSlice(v2)
	if !ok {
		return nil, newValueError(v, path, t.c, nil)
	}

	base := basePath(path, t.c)
	out := make([]any, len(items))
	var nested []*ValueError
	for i, f := range t.fields {
		fv, ferr := f.tree.validate(items[i], ElementPath(base, i), exhaustive)
		if ferr != nil {
			if !exhaustive {
				return nil, ferr
			}
			nested = append(nested, ferr)
			continue
		}
		out[i] = fv
	}
	if len(nested) > 0 {
		return nil, newValueError(v, path, t.c, nested)
	}
	return rebuildSlice(v, out), nil
}

// ---- union ----

type multiValidator struct {
	c    *MultiConstraints
	alts []treeValidator
	tm   *typeMap
}

func (m *multiValidator) constraints() Constraint { return m.c }

func (m *multiValidator) validate(v any, path string, exhaustive bool) (any, *ValueError) {
	if v == nil {
		if m.c.Nullable {
			return nil, nil
		}
		return nil, newValueError(v, path, m.c, nil)
	}
	if idx := m.tm.match(reflect.TypeOf(v)); idx >= 0 {
		return m.alts[idx].validate(v, path, exhaustive)
	}
	// No declared type claims the value; try alternatives structurally in
	// declaration order.
	for _, alt := range m.alts {
		if out, err := alt.validate(v, path, false); err == nil {
			return out, nil
		}
	}
	return nil, newValueError(v, path, m.c, nil)
}

type taggedMultiValidator struct {
	c     *MultiConstraints
	byTag map[string]treeValidator
}

func (t *taggedMultiValidator) constraints() Constraint { return t.c }

func (t *taggedMultiValidator) validate(v any, path string, exhaustive bool) (any, *ValueError) {
	if v == nil {
		if t.c.Nullable {
			return nil, nil
		}
		return nil, newValueError(v, path, t.c, nil)
	}
	tag, ok := discriminator(v, t.c.TagField)
	if !ok {
		return nil, newValueError(v, path, t.c, nil)
	}
	sub, ok := t.byTag[tag]
	if !ok {
		return nil, newValueError(v, path, t.c, nil)
	}
	return sub.validate(v, path, exhaustive)
}

// discriminator reads the tag field from a map or from a struct instance.
func discriminator(v any, field string) (string, bool) {
	if m, ok := asStringMap(v); ok {
		raw, present := m[field]
		if !present {
			return "", false
		}
		if s, ok := asString(raw); ok {
			return s, true
		}
		return fmt.Sprintf("%v", raw), true
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return "", false
	}
	fv := structTagField(rv, field)
	if !fv.IsValid() {
		return "", false
	}
	if s, ok := asString(fv.Interface()); ok {
		return s, true
	}
	return fmt.Sprintf("%v", fv.Interface()), true
}

// structTagField resolves the tag field on a struct instance. Exact Go
// names win, then json tag names, then a case-insensitive name match, so a
// document-style tag like "kind" finds the exported Kind field.
func structTagField(rv reflect.Value, field string) reflect.Value {
	if fv := rv.FieldByName(field); fv.IsValid() {
		return fv
	}
	rt := rv.Type()
	fold := -1
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("json"); ok {
			if name, _, _ := strings.Cut(tag, ","); name == field {
				return rv.Field(i)
			}
		}
		if fold < 0 && strings.EqualFold(f.Name, field) {
			fold = i
		}
	}
	if fold >= 0 {
		return rv.Field(fold)
	}
	return reflect.Value{}
}

// ---- indirection ----

// lazyValidator breaks compile-time cycles: it is handed out while its
// target is still being compiled and filled in immediately after.
type lazyValidator struct {
	c    Constraint
	tree treeValidator
}

func (l *lazyValidator) constraints() Constraint { return l.c }

func (l *lazyValidator) validate(v any, path string, exhaustive bool) (any, *ValueError) {
	return l.tree.validate(v, path, exhaustive)
}

// delayedValidator compiles a deferred constraint on first use.
type delayedValidator struct {
	c    *DeferredConstraints
	once sync.Once
	tree treeValidator
	err  error
}

func (d *delayedValidator) constraints() Constraint { return d.c }

func (d *delayedValidator) validate(v any, path string, exhaustive bool) (any, *ValueError) {
	d.once.Do(func() {
		target := d.c.Resolve()
		if target == nil {
			d.err = typeErrorf("deferred constraint %q resolved to nil", d.c.DisplayName())
			return
		}
		d.tree, d.err = newCompiler().compile(target)
	})
	if d.err != nil {
		return nil, newValueError(v, path, d.c, nil)
	}
	return d.tree.validate(v, path, exhaustive)
}
