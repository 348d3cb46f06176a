package constrain_test

import (
	"errors"
	"testing"

	"github.com/reoring/constrain"
)

func TestCompile_SyntaxErrors(t *testing.T) {
	cases := []struct {
		name string
		c    constrain.Constraint
	}{
		{"gt and ge", &constrain.NumberConstraints{GT: floatp(1), GE: floatp(1)}},
		{"lt and le", &constrain.NumberConstraints{LT: floatp(1), LE: floatp(1)}},
		{"zero multipleOf", &constrain.NumberConstraints{MultipleOf: floatp(0)}},
		{"decimal bounds conflict", &constrain.DecimalConstraints{GT: floatp(1), GE: floatp(1)}},
		{"maxDigits below decimalPlaces", &constrain.DecimalConstraints{MaxDigits: intp(2), DecimalPlaces: intp(3)}},
		{"minLength above maxLength", &constrain.TextConstraints{MinLength: intp(5), MaxLength: intp(2)}},
		{"bad pattern", &constrain.TextConstraints{Pattern: `[`}},
		{"minItems above maxItems", &constrain.ArrayConstraints{MinItems: intp(5), MaxItems: intp(2)}},
		{"bad key pattern", &constrain.MappingConstraints{KeyPattern: `(`}},
		{"empty enum", &constrain.EnumerationConstraints{}},
		{"undeclared required field", &constrain.StructuredConstraints{Required: []string{"ghost"}}},
		{"tuple with required", &constrain.StructuredConstraints{
			Tuple:    true,
			Fields:   []constrain.Field{{Name: "0", Constraints: &constrain.UndeclaredConstraints{}}},
			Required: []string{"0"},
		}},
		{"empty union", &constrain.MultiConstraints{}},
		{"tag without mapping", &constrain.MultiConstraints{TagField: "kind"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := constrain.Compile(tc.c)
			var se *constrain.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %v", err)
			}
		})
	}
}

func TestCompile_TypeErrors(t *testing.T) {
	cases := []struct {
		name string
		c    constrain.Constraint
	}{
		{"nil constraint", nil},
		{"typeless type constraint", &constrain.TypeConstraints{}},
		{"field without constraints", &constrain.StructuredConstraints{
			Fields: []constrain.Field{{Name: "a"}},
		}},
		{"resolverless deferred", &constrain.DeferredConstraints{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := constrain.Compile(tc.c)
			var te *constrain.TypeError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TypeError, got %v", err)
			}
		})
	}
}

// Every combination of (nullable, assertions declared) must compile into a
// working strategy; nothing may fall through the selection table, and nil
// passes exactly when the constraint is nullable.
func TestCompile_StrategyTotality(t *testing.T) {
	for _, nullable := range []bool{false, true} {
		for _, withRules := range []bool{false, true} {
			c := &constrain.TextConstraints{Meta: constrain.Meta{Nullable: nullable}}
			if withRules {
				c.MinLength = intp(1)
			}
			v, err := constrain.Compile(c)
			if err != nil {
				t.Fatalf("nullable=%v rules=%v: %v", nullable, withRules, err)
			}
			if _, err := v.Validate("x"); err != nil {
				t.Fatalf("nullable=%v rules=%v: %q must pass, got %v", nullable, withRules, "x", err)
			}
			if _, err := v.Validate(nil); nullable != (err == nil) {
				t.Fatalf("nullable=%v rules=%v: nil handling wrong, err=%v", nullable, withRules, err)
			}
		}
	}

	for _, nullable := range []bool{false, true} {
		c := &constrain.TypeConstraints{Meta: constrain.Meta{Nullable: nullable, Type: typeOf("")}}
		v, err := constrain.Compile(c)
		if err != nil {
			t.Fatalf("type constraint nullable=%v: %v", nullable, err)
		}
		if _, err := v.Validate("x"); err != nil {
			t.Fatalf("instance must pass, got %v", err)
		}
		if _, err := v.Validate(nil); nullable != (err == nil) {
			t.Fatalf("nullable=%v: nil handling wrong, err=%v", nullable, err)
		}
	}
}

func TestMustCompile_PanicsOnBadConstraint(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	constrain.MustCompile(&constrain.NumberConstraints{GT: floatp(1), GE: floatp(2)})
}

func TestValidator_ReportsItsConstraints(t *testing.T) {
	c := &constrain.TextConstraints{MinLength: intp(1)}
	v := mustCompile(t, c)
	if v.Constraints() != c {
		t.Fatalf("expected the compiled constraint back")
	}
}
