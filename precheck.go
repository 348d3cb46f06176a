package constrain

import (
	"reflect"
	"strings"
)

// A Precheck transforms a value before its assertions run. Prechecks never
// fail; values they cannot act on pass through untouched.
type Precheck func(any) any

// textPrecheckTable is indexed by (strip | curtail<<1). Strip runs before
// curtail so truncation applies to the trimmed value.
var textPrecheckTable = [4]func(max *int) Precheck{
	0: func(*int) Precheck { return nil },
	1: func(*int) Precheck { return stripText },
	2: func(max *int) Precheck { return curtailText(max) },
	3: func(max *int) Precheck {
		curtail := curtailText(max)
		return func(v any) any { return curtail(stripText(v)) }
	},
}

func textPrecheck(c *TextConstraints) Precheck {
	idx := 0
	if c.Strip {
		idx |= 1
	}
	if c.Curtail && c.MaxLength != nil {
		idx |= 2
	}
	return textPrecheckTable[idx](c.MaxLength)
}

func stripText(v any) any {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return []byte(strings.TrimSpace(string(s)))
	}
	return v
}

func curtailText(max *int) Precheck {
	return func(v any) any {
		switch s := v.(type) {
		case string:
			r := []rune(s)
			if len(r) > *max {
				return string(r[:*max])
			}
		case []byte:
			if len(s) > *max {
				return s[:*max]
			}
		}
		return v
	}
}

// uniquePrecheck deduplicates slices preserving first-seen order. Comparable
// elements are tracked in a set; the rest fall back to pairwise deep
// equality.
func uniquePrecheck(v any) any {
	items, ok := asSlice(v)
	if !ok {
		return v
	}
	seen := make(map[any]struct{}, len(items))
	var slow []any
	out := make([]any, 0, len(items))
	for _, item := range items {
		if comparableValue(item) {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
		} else {
			dup := false
			for _, prev := range slow {
				if reflect.DeepEqual(prev, item) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			slow = append(slow, item)
		}
		out = append(out, item)
	}
	return out
}
