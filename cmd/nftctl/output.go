package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutput(format string) error {
	if !slices.Contains([]string{outputTable, outputJSON, outputYAML}, format) {
		return errors.Newf("unknown output format %q (table, json, yaml)", format)
	}
	return nil
}

// render writes v as JSON or YAML, or the summary text and table for table output.
// table may be nil.
func render(w io.Writer, format string, v any, summary string, table pterm.TableData) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "marshal json")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "marshal yaml")
		}
		_, err = w.Write(data)
		return err
	}

	if summary != "" {
		if _, err := fmt.Fprintln(w, summary); err != nil {
			return err
		}
	}
	if len(table) == 0 {
		return nil
	}
	if summary != "" {
		fmt.Fprintln(w)
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(table).Srender()
	if err != nil {
		return errors.Wrap(err, "render table")
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
