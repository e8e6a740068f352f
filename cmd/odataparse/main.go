// Command odataparse parses OData request URLs against an EDM model and
// prints their canonical form.
//
// Usage:
//
//	# Parse against the built-in demo model
//	odataparse 'People(1)/Orders?$top=5&$filter=Amount gt 100'
//
//	# Parse against a YAML model, with debug tracing
//	odataparse --model schema.yaml --verbose 'Products?$apply=aggregate($count as N)'
//
//	# Print a YAML summary of each request
//	odataparse --format yaml 'People?$select=Name'
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
