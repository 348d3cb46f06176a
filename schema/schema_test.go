package schema_test

import (
	"errors"
	"testing"

	"github.com/reoring/constrain"
	js "github.com/reoring/constrain/jsonschema"
	"github.com/reoring/constrain/schema"
)

type stubBuilder struct{}

func (stubBuilder) Build(c constrain.Constraint) (any, error) { return "stub", nil }
func (stubBuilder) Attach(c constrain.Constraint)             {}
func (stubBuilder) All() (any, error)                         { return "stub", nil }

func TestRegistry_BuiltinJSONSchema(t *testing.T) {
	r := schema.NewRegistry()
	doc, err := r.Build(&constrain.TextConstraints{}, schema.JSONSchema)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s, ok := doc.(*js.Schema)
	if !ok {
		t.Fatalf("expected *jsonschema.Schema, got %T", doc)
	}
	if s.Type != "string" {
		t.Fatalf("unexpected schema %+v", s)
	}
}

func TestRegistry_UnknownFormat(t *testing.T) {
	r := schema.NewRegistry()
	_, err := r.Build(&constrain.TextConstraints{}, "protobuf")
	var unknown *schema.UnknownFormatError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownFormatError, got %v", err)
	}
	if unknown.Format != "protobuf" {
		t.Fatalf("unexpected format %q", unknown.Format)
	}
}

func TestRegistry_RegisterConflict(t *testing.T) {
	r := schema.NewRegistry()
	if err := r.Register("custom", stubBuilder{}, false); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register("custom", stubBuilder{}, false)
	var conflict *schema.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if err := r.Register("custom", stubBuilder{}, true); err != nil {
		t.Fatalf("forced register must succeed, got %v", err)
	}
}

func TestRegistry_AttachAll(t *testing.T) {
	r := schema.NewRegistry()
	c := &constrain.StructuredConstraints{
		Meta: constrain.Meta{Name: "Thing"},
		Fields: []constrain.Field{
			{Name: "id", Constraints: &constrain.TextConstraints{}},
		},
	}
	if err := r.Attach(c, schema.JSONSchema); err != nil {
		t.Fatalf("attach: %v", err)
	}
	doc, err := r.All(schema.JSONSchema)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	pkg, ok := doc.(*js.Package)
	if !ok {
		t.Fatalf("expected *jsonschema.Package, got %T", doc)
	}
	if _, ok := pkg.Definitions["Thing"]; !ok {
		t.Fatalf("expected Thing in definitions, got %+v", pkg.Definitions)
	}
}
