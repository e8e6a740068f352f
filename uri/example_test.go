//nolint:godot
package uri_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/theory/odatauri/internal/fixture"
	"github.com/theory/odatauri/uri"
	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
	"github.com/theory/odatauri/uri/parser"
)

// Parse a request against a model and print its canonical form. System
// query options render in a fixed order regardless of the order in the
// URL.
func Example() {
	model := fixture.Demo()

	req, err := uri.Parse(model, "/People(1)/Orders?$top=5&$filter=Amount%20gt%20100&$orderby=Placed%20desc")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(req.Kind)
	fmt.Println(req.Last())
	fmt.Println(req.Filter)
	fmt.Println(req)
	// Output:
	// resource
	// Orders
	// Amount gt 100
	// People(1)/Orders?$filter=Amount gt 100&$orderby=Placed desc&$top=5
}

// Aggregation aliases introduced by $apply are visible to the options that
// follow it.
func Example_apply() {
	model := fixture.Demo()

	req := uri.MustParse(
		model,
		"Products?$apply=groupby((Category),aggregate(Price%20with%20sum%20as%20TotalPrice))&$filter=TotalPrice%20gt%20100",
	)

	total := req.Apply.Type.Property("TotalPrice")
	fmt.Println(total.Type)
	fmt.Println(req)
	// Output:
	// Edm.Decimal
	// Products?$apply=groupby((Category),aggregate(Price with sum as TotalPrice))&$filter=TotalPrice gt 100
}

// Parse errors carry a kind, a key and the position of the failure within
// the option or path that failed.
func Example_errors() {
	model := fixture.Demo()

	_, err := uri.Parse(model, "People?$filter=Nope%20eq%201")
	fmt.Println(errors.Is(err, parser.ErrSemantic))

	var e *parser.Error
	if errors.As(err, &e) {
		fmt.Println(e.Key == parser.KeyUnknownProperty, e.Pos)
		fmt.Println(e.Message())
	}
	// Output:
	// true
	// true 0
	// unknown property "Nope" on Demo.Person
}

// Filter expressions may be parsed on their own.
func ExampleParseFilter() {
	model := fixture.Demo()
	person := model.StructuredType(edm.NewFullQualifiedName("Demo.Person"))

	f, err := uri.ParseFilter(model, person, "FavoriteColor has Demo.Color'Red' or contains(Name,'x')")
	if err != nil {
		log.Fatal(err)
	}
	or, ok := f.Expression.(*ast.Binary)
	fmt.Println(ok, or.Operator())
	// Output:
	// true or
}
