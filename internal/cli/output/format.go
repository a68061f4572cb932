// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how a Printer renders values.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted format names, for flag help.
var Formats = []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}

// ParseFormat accepts table (the default for ""), json, yaml and yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format %q (valid: %s)", s, strings.Join(Formats, ", "))
}

func (f Format) String() string { return string(f) }

// Printer writes values in one format.
type Printer struct {
	out    io.Writer
	format Format
}

func NewPrinter(out io.Writer, format Format) *Printer {
	return &Printer{out: out, format: format}
}

// Print renders v. In table format v must implement TableRenderer;
// anything else falls back to JSON.
func (p *Printer) Print(v any) error {
	switch p.format {
	case FormatTable:
		if t, ok := v.(TableRenderer); ok {
			return PrintTable(p.out, t)
		}
		return PrintJSON(p.out, v)
	case FormatJSON:
		return PrintJSON(p.out, v)
	case FormatYAML:
		return PrintYAML(p.out, v)
	}
	return fmt.Errorf("unknown output format %q", p.format)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintYAML writes v as YAML with two-space indentation.
func PrintYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
