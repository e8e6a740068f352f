// Package main parses an OData request in order to test WASM compilation.
package main

import (
	"fmt"

	"github.com/theory/odatauri/internal/fixture"
	"github.com/theory/odatauri/uri"
)

func main() {
	// Parse a request against the demo model.
	req, err := uri.Parse(fixture.Demo(), "People?$filter=Name%20eq%20'Foo'&$top=1")
	if err != nil {
		//nolint:forbidigo
		fmt.Println(err)
		return
	}

	// Show the canonical request.
	//nolint:forbidigo
	fmt.Println(req)
}
