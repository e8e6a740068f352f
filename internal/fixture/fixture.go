// Package fixture provides the demo EDM schema shared by tests, examples, and
// the odataparse command.
package fixture

import (
	"bytes"
	_ "embed"

	"github.com/theory/odatauri/uri/edm"
)

//go:embed demo.yaml
var demoYAML []byte

// DemoYAML returns the YAML source of the demo schema.
func DemoYAML() []byte {
	return bytes.Clone(demoYAML)
}

// Demo builds a fresh copy of the demo schema. Panics if the embedded
// fixture is invalid.
func Demo() *edm.Schema {
	schema, err := edm.LoadYAML(bytes.NewReader(demoYAML))
	if err != nil {
		panic(err)
	}
	return schema
}
