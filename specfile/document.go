// Package specfile loads constraint declarations from YAML or JSON
// documents and builds the corresponding constraint trees. Documents may
// carry shared definitions under $defs and reference them (including
// self-references) with $ref.
package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/constrain"
)

// node is the raw document form of one constraint declaration. Which keys
// are meaningful depends on type.
type node struct {
	Type      string `yaml:"type" json:"type"`
	Nullable  bool   `yaml:"nullable" json:"nullable"`
	ReadOnly  bool   `yaml:"readOnly" json:"readOnly"`
	WriteOnly bool   `yaml:"writeOnly" json:"writeOnly"`
	Default   *any   `yaml:"default" json:"default"`

	// Reference to a $defs entry, either by bare name or "#/$defs/Name".
	Ref string `yaml:"$ref" json:"$ref"`

	// Text
	MinLength *int   `yaml:"minLength" json:"minLength"`
	MaxLength *int   `yaml:"maxLength" json:"maxLength"`
	Pattern   string `yaml:"pattern" json:"pattern"`
	Strip     bool   `yaml:"strip" json:"strip"`
	Curtail   bool   `yaml:"curtail" json:"curtail"`

	// Number and decimal
	GT            *float64 `yaml:"gt" json:"gt"`
	GE            *float64 `yaml:"ge" json:"ge"`
	LT            *float64 `yaml:"lt" json:"lt"`
	LE            *float64 `yaml:"le" json:"le"`
	MultipleOf    *float64 `yaml:"multipleOf" json:"multipleOf"`
	MaxDigits     *int     `yaml:"maxDigits" json:"maxDigits"`
	DecimalPlaces *int     `yaml:"decimalPlaces" json:"decimalPlaces"`

	// Enumeration
	Enum []any `yaml:"enum" json:"enum"`

	// Array
	MinItems *int  `yaml:"minItems" json:"minItems"`
	MaxItems *int  `yaml:"maxItems" json:"maxItems"`
	Unique   bool  `yaml:"unique" json:"unique"`
	Values   *node `yaml:"values" json:"values"`

	// Mapping
	KeyPattern string `yaml:"keyPattern" json:"keyPattern"`
	Keys       *node  `yaml:"keys" json:"keys"`

	// Structured
	Fields   []*fieldNode `yaml:"fields" json:"fields"`
	Required []string     `yaml:"required" json:"required"`

	// Union
	OneOf   []*node          `yaml:"oneOf" json:"oneOf"`
	Tag     string           `yaml:"tag" json:"tag"`
	Mapping map[string]*node `yaml:"mapping" json:"mapping"`
}

// fieldNode is one ordered member of an object or tuple declaration.
type fieldNode struct {
	node `yaml:",inline"`

	Name string `yaml:"name" json:"name"`
}

// document is the top level of a constraint file.
type document struct {
	node `yaml:",inline"`

	Name string           `yaml:"name" json:"name"`
	Defs map[string]*node `yaml:"$defs" json:"$defs"`
}

// Load builds the constraint tree declared by a YAML document.
func Load(data []byte) (constrain.Constraint, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	return buildDocument(&doc)
}

// LoadJSON builds the constraint tree declared by a JSON document.
func LoadJSON(data []byte) (constrain.Constraint, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	return buildDocument(&doc)
}

// LoadFile loads a constraint document, picking the decoder by extension;
// anything that is not .json is treated as YAML.
func LoadFile(path string) (constrain.Constraint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(data)
	}
	return Load(data)
}

// LoadAll scans a multi-document YAML stream and builds every declared
// constraint in order.
func LoadAll(data []byte) ([]constrain.Constraint, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []constrain.Constraint
	for {
		var doc document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("specfile: %w", err)
		}
		c, err := buildDocument(&doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, errors.New("specfile: no documents found")
	}
	return out, nil
}
