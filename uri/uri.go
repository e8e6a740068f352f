// Package uri parses OData resource paths and system query options against
// an EDM model. It splits and percent-decodes request URLs and hands them
// to package parser, which produces the typed trees of package ast.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
	"github.com/theory/odatauri/uri/parser"
)

// ErrURI wraps decoding and parsing errors.
var ErrURI = errors.New("uri")

// Request is a parsed OData request.
type Request struct {
	*ast.Info
}

// Parse parses rawURL, a request URL relative to the service root, against
// model. The path may start with a slash and may be followed by a query
// string. Options configure the underlying [parser.Parser].
func Parse(model edm.Model, rawURL string, opt ...parser.Option) (*Request, error) {
	segments, params, err := Split(rawURL)
	if err != nil {
		return nil, err
	}
	info, err := parser.New(model, opt...).Parse(segments, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrURI, err)
	}
	return &Request{info}, nil
}

// MustParse is like Parse but panics on failure.
func MustParse(model edm.Model, rawURL string, opt ...parser.Option) *Request {
	req, err := Parse(model, rawURL, opt...)
	if err != nil {
		panic(err)
	}
	return req
}

// New creates a Request from info.
func New(info *ast.Info) *Request {
	return &Request{info}
}

// ParseFilter parses a decoded $filter expression applied to instances of
// typ.
func ParseFilter(model edm.Model, typ *edm.StructuredType, filter string, opt ...parser.Option) (*ast.FilterOption, error) {
	var it edm.Type
	if typ != nil {
		it = typ
	}
	f, err := parser.New(model, opt...).ParseFilter(filter, it)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrURI, err)
	}
	return f, nil
}

// Split splits rawURL into percent-decoded path segments and query
// parameters. Segments split on slashes before decoding, so an encoded
// slash stays within its segment. Query parameters keep their order.
func Split(rawURL string) ([]string, []parser.QueryParam, error) {
	path, query, _ := strings.Cut(rawURL, "?")
	path = strings.TrimPrefix(path, "/")

	var segments []string
	if path != "" {
		segments = strings.Split(path, "/")
		for i, seg := range segments {
			dec, err := url.PathUnescape(seg)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: path segment %d: %w", ErrURI, i, err)
			}
			segments[i] = dec
		}
	}

	var params []parser.QueryParam
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		n, err := url.QueryUnescape(name)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: query option %q: %w", ErrURI, name, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: query option %q: %w", ErrURI, n, err)
		}
		params = append(params, parser.QueryParam{Name: n, Value: v})
	}
	return segments, params, nil
}

// MarshalText implements encoding.TextMarshaler.
func (req Request) MarshalText() ([]byte, error) {
	return []byte(req.Info.String()), nil
}
