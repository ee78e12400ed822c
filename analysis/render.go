package analysis

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/load"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown output format")

const noRows = "(no rows)"

// Formats lists the accepted values for Render's format argument.
var Formats = []string{"table", "csv", "json", "yaml"}

// Render writes rs to w. limit > 0 keeps only the first limit rows.
func Render(w io.Writer, rs load.ResultSet, format string, limit int) error {
	rs = rs.Head(limit)

	switch strings.ToLower(format) {
	case "", "table":
		return renderTable(w, rs)
	case "csv":
		return renderCSV(w, rs)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records(rs))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(rs)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

func renderTable(w io.Writer, rs load.ResultSet) error {
	if rs.Empty() {
		_, err := fmt.Fprintln(w, noRows)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))
	for _, row := range rs.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func renderCSV(w io.Writer, rs load.ResultSet) error {
	writer := csv.NewWriter(w)
	if len(rs.Columns) > 0 {
		if err := writer.Write(rs.Columns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	if err := writer.WriteAll(rs.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// records keys each row by column name.
func records(rs load.ResultSet) []map[string]string {
	out := make([]map[string]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rec := make(map[string]string, len(rs.Columns))
		for i, col := range rs.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}
