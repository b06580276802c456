package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// render writes v as JSON or YAML, or calls fill to build an aligned table.
func render(w io.Writer, format string, v any, fill func(*table)) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatTable:
		t := &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
		fill(t)
		if err := t.tw.Flush(); err != nil {
			return err
		}
		if t.summary != "" {
			_, err := fmt.Fprintln(w, t.summary)
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q, want table, json or yaml", format)
	}
}

type table struct {
	tw      *tabwriter.Writer
	summary string
}

func (t *table) header(cols ...string) { t.row(cols...) }

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

// footer is printed after the aligned rows, outside the columns.
func (t *table) footer(s string) { t.summary = s }
