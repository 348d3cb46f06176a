package constrain_test

import (
	"strings"
	"testing"

	"github.com/reoring/constrain"
)

func TestValueError_MessageFormat(t *testing.T) {
	v := mustCompile(t, &constrain.TextConstraints{MinLength: intp(3)})
	_, err := v.Validate("ab")
	if err == nil {
		t.Fatalf("expected failure")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "Given: ") {
		t.Fatalf("root errors must be located at Given, got %q", msg)
	}
	if !strings.Contains(msg, `value <"ab"> fails constraints`) {
		t.Fatalf("message must carry the offending value, got %q", msg)
	}
	if !strings.Contains(msg, "minLength=3") {
		t.Fatalf("message must carry the active rules, got %q", msg)
	}
}

func TestValueError_DumpIsRootFirst(t *testing.T) {
	v := mustCompile(t, &constrain.StructuredConstraints{
		Meta: constrain.Meta{Name: "Doc"},
		Fields: []constrain.Field{
			{Name: "a", Constraints: &constrain.NumberConstraints{GE: floatp(0)}},
			{Name: "items", Constraints: &constrain.ArrayConstraints{
				Values: &constrain.NumberConstraints{GE: floatp(0)},
			}},
		},
	})

	_, err := v.ValidateExhaustive(map[string]any{
		"a":     -1,
		"items": []any{-2, 3, -4},
	})
	ve, ok := constrain.AsValueError(err)
	if !ok {
		t.Fatalf("expected *ValueError, got %T", err)
	}

	reports := ve.Dump()
	if len(reports) < 4 {
		t.Fatalf("expected root, field, container and element reports, got %d", len(reports))
	}
	if reports[0].Location != "Given" {
		t.Fatalf("first report must be the root, got %q", reports[0].Location)
	}
	for _, r := range reports {
		if r.ErrorClass != "ValueError" {
			t.Fatalf("unexpected error class %q", r.ErrorClass)
		}
		if r.Detail == "" {
			t.Fatalf("report detail must not be empty")
		}
	}
	// Breadth-first: both direct children come before any grandchild.
	locs := make([]string, len(reports))
	for i, r := range reports {
		locs[i] = r.Location
	}
	if idx(locs, "Doc.a") > idx(locs, "Doc.items[0]") || idx(locs, "Doc.items") > idx(locs, "Doc.items[0]") {
		t.Fatalf("expected breadth-first ordering, got %v", locs)
	}
}

func TestValueError_ErrorAt(t *testing.T) {
	v := mustCompile(t, &constrain.ArrayConstraints{
		Meta:   constrain.Meta{Name: "xs"},
		Values: &constrain.NumberConstraints{GE: floatp(0)},
	})
	_, err := v.ValidateExhaustive([]any{-1, 2})
	ve, _ := constrain.AsValueError(err)
	if ve == nil {
		t.Fatalf("expected *ValueError")
	}
	if ve.ErrorAt("xs[0]") == nil {
		t.Fatalf("expected nested error at xs[0]")
	}
	if ve.ErrorAt("xs[1]") != nil {
		t.Fatalf("expected no error at xs[1]")
	}
}

func idx(xs []string, want string) int {
	for i, x := range xs {
		if x == want {
			return i
		}
	}
	return len(xs)
}
