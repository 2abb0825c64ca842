package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"codello.dev/dertmpl/crmf"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintDescription prints a decoded PKIArchiveOptions value
func (p *Printer) PrintDescription(desc crmf.Description) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(desc)
	case OutputFormatYAML:
		return p.printYAML(desc)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "PKIArchiveOptions: %s %s\n", desc.Variant, desc.Tag)
		width := 0
		for _, f := range desc.Fields {
			width = max(width, len(f.Name))
		}
		for _, f := range desc.Fields {
			fmt.Fprintf(p.writer, "  %-*s  %s\n", width+1, f.Name+":", f.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

func (p *Printer) printJSON(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) printYAML(v any) error {
	enc := yaml.NewEncoder(p.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
