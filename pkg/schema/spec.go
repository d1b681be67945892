package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// FieldSpec is the immutable metadata of one logical field.
type FieldSpec struct {
	Name     string         `json:"name" yaml:"name"`
	Carrier  string         `json:"carrier" yaml:"carrier"`
	DataType types.DataType `json:"data_type" yaml:"data_type"`
	StoreKey string         `json:"store_key" yaml:"store_key"`
}

// Definition declares a field for Define. An empty DataType means string;
// an empty StoreKey means the field name.
type Definition struct {
	Name     string
	DataType types.DataType
	StoreKey string
}

// TypeSpec is the right-hand side of a field declaration in a schema file:
// either a bare type tag ("integer") or a structured form
// ({data_type: integer, store_key: p}).
type TypeSpec struct {
	DataType types.DataType `json:"data_type" yaml:"data_type"`
	StoreKey string         `json:"store_key,omitempty" yaml:"store_key,omitempty"`
}

// Definition returns the field definition for name.
func (ts TypeSpec) Definition(name string) Definition {
	return Definition{Name: name, DataType: ts.DataType, StoreKey: ts.StoreKey}
}

// UnmarshalYAML accepts a scalar tag or a mapping.
func (ts *TypeSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		ts.DataType = types.DataType(strings.TrimSpace(node.Value))
		ts.StoreKey = ""
		return nil
	}
	type plain TypeSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("decoding type spec: %w", err)
	}
	*ts = TypeSpec(p)
	if ts.DataType == "" {
		ts.DataType = types.TypeString
	}
	return nil
}

// UnmarshalJSON accepts a string tag or an object.
func (ts *TypeSpec) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err == nil {
		*ts = TypeSpec{DataType: types.DataType(strings.TrimSpace(tag))}
		return nil
	}
	type plain TypeSpec
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("decoding type spec: %w", err)
	}
	*ts = TypeSpec(p)
	if ts.DataType == "" {
		ts.DataType = types.TypeString
	}
	return nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent reports whether s can name a field or a carrier.
func validIdent(s string) bool {
	return identPattern.MatchString(s)
}
