package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-style/internal/reconcile"
	"github.com/joeblew999/plat-style/internal/style"
	"github.com/joeblew999/plat-style/internal/validate"
)

// parseStyle decodes a JSON or YAML style document.
func parseStyle(data []byte) (*style.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return style.Decode(trimmed)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return style.FromMap(raw)
}

// runValidate writes the classified errors of a style document to w and
// reports whether the document is valid.
func runValidate(w io.Writer, data []byte, asJSON bool) (bool, error) {
	doc, err := parseStyle(data)
	if err != nil {
		return false, err
	}
	errs := reconcile.ClassifyDocument(doc.Layers, validate.Validate(doc, validate.Latest()))

	if asJSON {
		if errs == nil {
			errs = []reconcile.ClassifiedError{}
		}
		out, err := json.MarshalIndent(errs, "", "  ")
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, string(out))
		return len(errs) == 0, nil
	}

	for _, e := range errs {
		if e.Parsed != nil {
			fmt.Fprintf(w, "layer %d %s: %s\n", e.Parsed.Data.Index, e.Parsed.Data.Key, e.Parsed.Data.Message)
			continue
		}
		fmt.Fprintln(w, e.Message)
	}
	if len(errs) == 0 {
		fmt.Fprintln(w, "valid")
	}
	return len(errs) == 0, nil
}
