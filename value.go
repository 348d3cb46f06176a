package constrain

import (
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// Validated values are JSON-shaped: nil, bool, string, []byte, numbers
// (json.Number included), []any and map[string]any, plus already-decoded
// instances of a constraint's target type. The helpers below normalize the
// numeric and textual spellings.

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case json.Number:
		return s.String(), true
	}
	return "", false
}

// textLen counts code points for strings and bytes for byte slices.
func textLen(v any) (int, bool) {
	switch s := v.(type) {
	case string:
		return utf8.RuneCountInString(s), true
	case []byte:
		return len(s), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// numberText returns the exact textual spelling of a numeric value when one
// is available, so digit counting does not go through float rounding.
func numberText(v any) (string, bool) {
	if n, ok := v.(json.Number); ok {
		return n.String(), true
	}
	if f, ok := asFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

func asStringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out[it.Key().String()] = it.Value().Interface()
	}
	return out, true
}

// The shape checks below back the terminal instance condition of the
// strategy table, one per constraint kind. Each accepts the kind's natural
// value spellings and otherwise defers to the declared target type.

func typeInstance(t reflect.Type) instanceCheck {
	return func(v any) bool { return instanceOf(v, t) }
}

func textInstance(t reflect.Type) instanceCheck {
	return func(v any) bool {
		switch v.(type) {
		case string, []byte:
			return true
		}
		return instanceOf(v, t)
	}
}

func numberInstance(t reflect.Type) instanceCheck {
	return func(v any) bool {
		if _, ok := asFloat(v); ok {
			return true
		}
		return instanceOf(v, t)
	}
}

func sliceInstance(t reflect.Type) instanceCheck {
	return func(v any) bool {
		if _, ok := asSlice(v); ok {
			return true
		}
		return instanceOf(v, t)
	}
}

func mapInstance(t reflect.Type) instanceCheck {
	return func(v any) bool {
		if _, ok := asStringMap(v); ok {
			return true
		}
		return instanceOf(v, t)
	}
}

// instanceOf reports whether v is usable as an instance of t.
func instanceOf(v any, t reflect.Type) bool {
	if t == nil || v == nil {
		return false
	}
	vt := reflect.TypeOf(v)
	if vt.AssignableTo(t) {
		return true
	}
	if t.Kind() == reflect.Interface && vt.Implements(t) {
		return true
	}
	return false
}

func isStructType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// comparableValue reports whether v can key a Go map.
func comparableValue(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

var (
	anySliceType = reflect.TypeOf([]any(nil))
	anyMapType   = reflect.TypeOf(map[string]any(nil))
)

// rebuildSlice reassembles validated elements into the input's slice type,
// so a typed slice survives validation as the same type. Falls back to
// []any when an element no longer fits the original element type.
func rebuildSlice(src any, items []any) any {
	st := reflect.TypeOf(src)
	if st == nil || st.Kind() != reflect.Slice || st == anySliceType {
		return items
	}
	out := reflect.MakeSlice(st, len(items), len(items))
	for i, item := range items {
		ev, ok := coerceTo(item, st.Elem())
		if !ok {
			return items
		}
		out.Index(i).Set(ev)
	}
	return out.Interface()
}

// rebuildMap is rebuildSlice for string-keyed maps.
func rebuildMap(src any, entries map[string]any) any {
	st := reflect.TypeOf(src)
	if st == nil || st.Kind() != reflect.Map || st == anyMapType {
		return entries
	}
	out := reflect.MakeMapWithSize(st, len(entries))
	for k, val := range entries {
		kv, ok := coerceTo(k, st.Key())
		if !ok {
			return entries
		}
		vv, ok := coerceTo(val, st.Elem())
		if !ok {
			return entries
		}
		out.SetMapIndex(kv, vv)
	}
	return out.Interface()
}

func coerceTo(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}
