package main

import (
	"github.com/theory/odatauri/uri"
	"github.com/theory/odatauri/uri/ast"
)

// summary is the YAML rendering of a parsed request.
type summary struct {
	Kind      string            `yaml:"kind"`
	Path      string            `yaml:"path,omitempty"`
	Segments  []segment         `yaml:"segments,omitempty"`
	Options   map[string]string `yaml:"options,omitempty"`
	Aliases   map[string]string `yaml:"aliases,omitempty"`
	Custom    map[string]string `yaml:"custom,omitempty"`
	Computed  []string          `yaml:"computed,omitempty"`
	Canonical string            `yaml:"canonical"`
}

type segment struct {
	Text       string `yaml:"text"`
	Type       string `yaml:"type,omitempty"`
	Collection bool   `yaml:"collection,omitempty"`
}

func newSummary(req *uri.Request) *summary {
	s := &summary{
		Kind:      req.Kind.String(),
		Path:      req.Path(),
		Custom:    req.CustomOptions,
		Canonical: req.String(),
	}

	for _, res := range req.Resources {
		seg := segment{Text: res.String(), Collection: res.IsCollection()}
		if t := res.Type(); t != nil {
			seg.Type = t.String()
		}
		s.Segments = append(s.Segments, seg)
	}

	opts := map[string]string{}
	for name, node := range map[string]ast.Node{
		"$apply":   req.Apply,
		"$compute": req.Compute,
		"$filter":  req.Filter,
		"$search":  req.Search,
		"$orderby": req.OrderBy,
		"$select":  req.Select,
		"$expand":  req.Expand,
	} {
		if !isNil(node) {
			opts[name] = node.String()
		}
	}
	if len(opts) > 0 {
		s.Options = opts
	}

	if len(req.Aliases) > 0 {
		s.Aliases = make(map[string]string, len(req.Aliases))
		for name, expr := range req.Aliases {
			if expr == nil {
				s.Aliases[name] = ""
				continue
			}
			s.Aliases[name] = expr.String()
		}
	}

	if req.Apply != nil {
		for _, p := range req.Apply.Type.DynamicProperties() {
			s.Computed = append(s.Computed, p.Name)
		}
	}
	if req.Compute != nil {
		for _, item := range req.Compute.Items {
			s.Computed = append(s.Computed, item.Alias)
		}
	}
	return s
}

// isNil reports whether node is nil or a typed nil pointer.
func isNil(node ast.Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *ast.ApplyOption:
		return n == nil
	case *ast.ComputeOption:
		return n == nil
	case *ast.FilterOption:
		return n == nil
	case *ast.SearchOption:
		return n == nil
	case *ast.OrderByOption:
		return n == nil
	case *ast.SelectOption:
		return n == nil
	case *ast.ExpandOption:
		return n == nil
	}
	return false
}
