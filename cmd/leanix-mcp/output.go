package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Output formats of the data commands.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format %q, use %s or %s", format, formatJSON, formatYAML)
}

// print writes v to stdout in the selected format.
func (c *cli) print(v any) error {
	return writeValue(c.stdout, c.output, v)
}

// printRaw writes an unmapped GraphQL document. YAML output converts it.
func (c *cli) printRaw(doc gjson.Result) error {
	if c.output == formatYAML {
		return writeValue(c.stdout, formatYAML, doc.Value())
	}
	_, err := fmt.Fprintln(c.stdout, doc.Get("@pretty").Raw)
	return err
}

func writeValue(w io.Writer, format string, v any) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
