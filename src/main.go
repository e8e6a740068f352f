//go:build js && wasm

// package main provides the Wasm app.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"syscall/js"

	"github.com/theory/odatauri/internal/fixture"
	"github.com/theory/odatauri/uri"
	"github.com/theory/odatauri/uri/edm"
	"github.com/theory/odatauri/uri/parser"
)

const (
	optCanonical int = 1 << iota
	optSegments
	optCustomModel
	optIndent
)

func parse(_ js.Value, args []js.Value) any {
	url := args[0].String()
	model := args[1].String()
	aliases := args[2].String()
	opts := args[3].Int()

	return execute(url, model, aliases, opts)
}

func main() {
	stream := make(chan struct{})

	js.Global().Set("parse", js.FuncOf(parse))
	js.Global().Set("demoModel", js.ValueOf(string(fixture.DemoYAML())))
	js.Global().Set("optCanonical", js.ValueOf(optCanonical))
	js.Global().Set("optSegments", js.ValueOf(optSegments))
	js.Global().Set("optCustomModel", js.ValueOf(optCustomModel))
	js.Global().Set("optIndent", js.ValueOf(optIndent))

	<-stream
}

type result struct {
	Kind      string    `json:"kind"`
	Canonical string    `json:"canonical,omitempty"`
	Segments  []segment `json:"segments,omitempty"`
}

type segment struct {
	Text       string `json:"text"`
	Type       string `json:"type,omitempty"`
	Collection bool   `json:"collection"`
}

func execute(url, model, aliases string, opts int) string {
	// Load the model.
	var schema edm.Model = fixture.Demo()
	if opts&optCustomModel == optCustomModel {
		s, err := edm.LoadYAML(strings.NewReader(model))
		if err != nil {
			return fmt.Sprintf("Error loading model: %v", err)
		}
		schema = s
	}

	// Assemble the options.
	options, msg := assembleOptions(aliases)
	if msg != "" {
		return msg
	}

	// Parse the request.
	req, err := uri.Parse(schema, url, options...)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			return html.EscapeString(fmt.Sprintf("Error at %d: %v", perr.Pos, perr.Message()))
		}
		return html.EscapeString(fmt.Sprintf("Error %v", err))
	}

	res := result{Kind: req.Kind.String()}
	if opts&optCanonical == optCanonical {
		res.Canonical = req.String()
	}
	if opts&optSegments == optSegments {
		for _, r := range req.Resources {
			seg := segment{Text: r.String(), Collection: r.IsCollection()}
			if t := r.Type(); t != nil {
				seg.Type = t.String()
			}
			res.Segments = append(res.Segments, seg)
		}
	}

	// Serialize the result
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if opts&optIndent == optIndent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return fmt.Sprintf("Error encoding results: %v", err)
	}

	return html.EscapeString(buf.String())
}

func assembleOptions(aliases string) ([]parser.Option, string) {
	options := []parser.Option{}
	if aliases != "" {
		var aliasMap map[string]string
		if err := json.Unmarshal([]byte(aliases), &aliasMap); err != nil {
			return nil, fmt.Sprintf("Error parsing aliases: %v", err)
		}

		options = append(options, parser.WithAliases(aliasMap))
	}

	return options, ""
}
