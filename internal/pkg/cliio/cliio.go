// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cliio provides output formatting for CLI commands (table, CSV, JSON).
package cliio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Format represents the output format for CLI commands.
type Format string

const (
	// FormatTable is the default table output format.
	FormatTable Format = "table"
	// FormatCSV is the CSV output format.
	FormatCSV Format = "csv"
	// FormatJSON is the JSON output format.
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q, must be one of: table, csv, json", s)
	}
}

// Write writes objects in the given format.
//
// Tables and CSV use headers and toRow. JSON writes the objects themselves. If totalsRow
// is non-nil, tables end with it after a blank line and CSV ends with it as a last record.
func Write[O any](
	writer io.Writer,
	format Format,
	headers []string,
	objects []O,
	toRow func(O) []string,
	totalsRow []string,
) error {
	switch format {
	case FormatTable:
		rows := make([][]string, 0, len(objects))
		for _, object := range objects {
			rows = append(rows, toRow(object))
		}
		if totalsRow != nil {
			return WriteTableWithTotals(writer, headers, rows, totalsRow)
		}
		return WriteTable(writer, headers, rows)
	case FormatCSV:
		records := make([][]string, 0, len(objects)+2)
		records = append(records, headers)
		for _, object := range objects {
			records = append(records, toRow(object))
		}
		if totalsRow != nil {
			records = append(records, totalsRow)
		}
		return WriteCSVRecords(writer, records)
	case FormatJSON:
		return WriteJSON(writer, objects...)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteTable writes tabular data to the writer using tabwriter for aligned columns.
func WriteTable(writer io.Writer, headers []string, rows [][]string) error {
	tw := newTabWriter(writer)
	if err := writeTabRows(tw, append([][]string{headers}, rows...)); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteTableWithTotals writes a table followed by a blank line and a totals row,
// all through the same tabwriter so columns align between data and totals.
func WriteTableWithTotals(writer io.Writer, headers []string, rows [][]string, totalsRow []string) error {
	tw := newTabWriter(writer)
	if err := writeTabRows(tw, append([][]string{headers}, rows...)); err != nil {
		return err
	}
	// A blank row of tabs keeps the totals aligned with the data.
	if err := writeTabRows(tw, [][]string{make([]string, len(headers)), totalsRow}); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteCSVRecords writes CSV records to the writer.
func WriteCSVRecords(writer io.Writer, records [][]string) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.WriteAll(records); err != nil {
		return err
	}
	csvWriter.Flush()
	return nil
}

// WriteJSON writes objects as JSON with newlines between each object.
func WriteJSON[O any](writer io.Writer, objects ...O) error {
	for _, object := range objects {
		data, err := json.Marshal(object)
		if err != nil {
			return err
		}
		if _, err := writer.Write(data); err != nil {
			return err
		}
		if _, err := writer.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}

// ForWriteFile calls f with the file at filePath opened for writing, creating or
// truncating it. If filePath is empty, f is called with defaultWriter.
func ForWriteFile(filePath string, defaultWriter io.Writer, f func(io.Writer) error) (retErr error) {
	if filePath == "" {
		return f(defaultWriter)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	return f(file)
}

// *** PRIVATE ***

func newTabWriter(writer io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
}

func writeTabRows(tw *tabwriter.Writer, rows [][]string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}
