// Package constrain validates loosely typed values against declarative
// constraint trees.
//
// A Constraint describes what a value must look like: bounds and patterns for
// scalars, size and uniqueness rules for containers, field layouts for
// structured objects, and tagged or untagged unions. Compile turns a
// Constraint into a ConstraintValidator that walks values recursively,
// either failing fast on the first violation or collecting every nested
// failure with a path pointing at the offending element.
//
// Validation may also transform: text constraints can strip and curtail,
// array constraints can deduplicate, and containers are rebuilt from their
// validated elements. The jsonschema subpackage renders the same constraint
// trees as JSON Schema documents.
package constrain
