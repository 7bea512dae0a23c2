package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// ParseFormat validates s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (must be table, json, yaml or csv)", s)
	}
}

// Printer writes command results in the selected format.
type Printer struct {
	Out       io.Writer
	Format    Format
	Delimiter rune
}

// NewPrinter returns a printer; a zero delimiter means comma.
func NewPrinter(out io.Writer, format Format, delimiter rune) *Printer {
	if delimiter == 0 {
		delimiter = ','
	}
	if format == "" {
		format = FormatTable
	}
	return &Printer{Out: out, Format: format, Delimiter: delimiter}
}

// Table describes the table rendering of rows.
type Table[R any] struct {
	Headers []string
	Cells   func(R) []string
	// Footer is printed under the table, e.g. the page indicator.
	Footer string
}

// PrintList renders a list. JSON and YAML print raw, the API shaped value;
// CSV and table print the flattened rows.
func PrintList[R any](p *Printer, raw interface{}, rows []R, table Table[R]) error {
	switch p.Format {
	case FormatJSON:
		return p.JSON(raw)
	case FormatYAML:
		return p.YAML(raw)
	case FormatCSV:
		return WriteCSV(p.Out, rows, p.Delimiter)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.Out, "No results.")
		return err
	}
	tw := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Headers, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(table.Cells(r), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if table.Footer != "" {
		_, err := fmt.Fprintln(p.Out, table.Footer)
		return err
	}
	return nil
}

// PrintObject renders one value. Table and CSV use the key/value pairs.
func (p *Printer) PrintObject(raw interface{}, pairs []KeyValueRow) error {
	switch p.Format {
	case FormatJSON:
		return p.JSON(raw)
	case FormatYAML:
		return p.YAML(raw)
	case FormatCSV:
		return WriteCSV(p.Out, pairs, p.Delimiter)
	}

	tw := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	for _, kv := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", kv.Key, kv.Value)
	}
	return tw.Flush()
}

// Message prints a status line. Structured formats stay machine readable,
// so messages go to the table output only.
func (p *Printer) Message(format string, args ...interface{}) {
	if p.Format != FormatTable {
		return
	}
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// JSON prints v indented.
func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML prints v.
func (p *Printer) YAML(v interface{}) error {
	enc := yaml.NewEncoder(p.Out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
