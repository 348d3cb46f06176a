// Package schema routes constraint trees to schema builders by format name.
// The "jsonschema" format is registered out of the box; additional formats
// plug in through Register.
package schema

import (
	"fmt"
	"sync"

	"github.com/reoring/constrain"
	"github.com/reoring/constrain/jsonschema"
)

// Builder produces schema documents of one format. The concrete document
// type is format-specific.
type Builder interface {
	Build(c constrain.Constraint) (any, error)
	Attach(c constrain.Constraint)
	All() (any, error)
}

// UnknownFormatError reports a lookup for a format nobody registered.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("schema: unknown format %q", e.Format)
}

// ConflictError reports a Register call that would silently replace an
// existing format without force.
type ConflictError struct {
	Format string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schema: format %q is already registered", e.Format)
}

// Registry maps format names to builders. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// JSONSchema is the name of the built-in format.
const JSONSchema = "jsonschema"

// NewRegistry returns a registry with the built-in jsonschema format.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	r.builders[JSONSchema] = &jsonSchemaBuilder{b: jsonschema.NewBuilder()}
	return r
}

// Register adds a builder under the given format name. Replacing an existing
// registration requires force.
func (r *Registry) Register(format string, b Builder, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.builders[format]; taken && !force {
		return &ConflictError{Format: format}
	}
	r.builders[format] = b
	return nil
}

// Builder looks up the builder for a format.
func (r *Registry) Builder(format string) (Builder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builders[format]
	if !ok {
		return nil, &UnknownFormatError{Format: format}
	}
	return b, nil
}

// Build renders a constraint in the given format.
func (r *Registry) Build(c constrain.Constraint, format string) (any, error) {
	b, err := r.Builder(format)
	if err != nil {
		return nil, err
	}
	return b.Build(c)
}

// Attach queues a constraint for bulk emission in the given format.
func (r *Registry) Attach(c constrain.Constraint, format string) error {
	b, err := r.Builder(format)
	if err != nil {
		return err
	}
	b.Attach(c)
	return nil
}

// All emits every attached constraint of the given format.
func (r *Registry) All(format string) (any, error) {
	b, err := r.Builder(format)
	if err != nil {
		return nil, err
	}
	return b.All()
}

type jsonSchemaBuilder struct {
	b *jsonschema.Builder
}

func (j *jsonSchemaBuilder) Build(c constrain.Constraint) (any, error) { return j.b.Build(c) }
func (j *jsonSchemaBuilder) Attach(c constrain.Constraint)            { j.b.Attach(c) }
func (j *jsonSchemaBuilder) All() (any, error)                        { return j.b.All() }

// DefaultRegistry backs the package-level helpers.
var DefaultRegistry = NewRegistry()

// Build renders a constraint in the given format using DefaultRegistry.
func Build(c constrain.Constraint, format string) (any, error) {
	return DefaultRegistry.Build(c, format)
}

// Attach queues a constraint on DefaultRegistry.
func Attach(c constrain.Constraint, format string) error {
	return DefaultRegistry.Attach(c, format)
}

// All emits every attached constraint from DefaultRegistry.
func All(format string) (any, error) {
	return DefaultRegistry.All(format)
}

// Register adds a builder to DefaultRegistry.
func Register(format string, b Builder, force bool) error {
	return DefaultRegistry.Register(format, b, force)
}
