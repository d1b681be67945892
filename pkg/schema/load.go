package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/satchel/pkg/registry"
)

// File is the YAML layout of a schema file:
//
//	carriers:
//	  options:
//	    color: string
//	    price: integer
//	    tags:
//	      data_type: array
//	      store_key: t
//
// Carriers and their fields are defined in file order.
type File struct {
	Carriers yaml.Node `yaml:"carriers"`
}

// LoadFile reads and parses the schema file at path.
func LoadFile(reg *registry.Registry, path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	s, err := Parse(reg, data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a schema from YAML data in the File layout.
func Parse(reg *registry.Registry, data []byte) (*Schema, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if reg == nil {
		reg = registry.Default
	}
	s := &Schema{reg: reg}
	if file.Carriers.Kind == 0 || file.Carriers.ShortTag() == "!!null" {
		return s, nil
	}
	if file.Carriers.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing schema: line %d: carriers must be a mapping", file.Carriers.Line)
	}
	for i := 0; i+1 < len(file.Carriers.Content); i += 2 {
		carrier := file.Carriers.Content[i].Value
		defs, err := decodeFields(file.Carriers.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("parsing carrier %s: %w", carrier, err)
		}
		if s, err = s.Define(carrier, defs...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func decodeFields(node *yaml.Node) ([]Definition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: fields must be a mapping", node.Line)
	}
	defs := make([]Definition, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var ts TypeSpec
		if err := node.Content[i+1].Decode(&ts); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Content[i+1].Line, err)
		}
		defs = append(defs, ts.Definition(node.Content[i].Value))
	}
	return defs, nil
}
