// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sigil-dev/sparqlboard/internal/board"
	"github.com/sigil-dev/sparqlboard/internal/table"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Output formats accepted by the query command.
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
	formatGraph = "graph"
	formatPNG   = "png"
)

var queryFormats = []string{formatTable, formatCSV, formatJSON, formatGraph, formatPNG}

// pixelsPerChar converts column widths to terminal cells.
const pixelsPerChar = 8

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [QUERY]",
		Short: "Run one query and print the results",
		Long: "Send a query to the configured endpoint and print one page of the result table, the full " +
			"result set as CSV or JSON, the projected graph as JSON, or a PNG snapshot of the graph.\n" +
			"The query is read from the argument, from --file, or from stdin when the argument is \"-\".",
		Args: cobra.MaximumNArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringP("file", "f", "", "read the query from a file")
	cmd.Flags().String("format", formatTable, "output format: "+strings.Join(queryFormats, ", "))
	cmd.Flags().Int("page", 1, "table page to print (1-based)")
	cmd.Flags().Int("page-size", 0, "rows per table page (default from config)")
	cmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if !slices.Contains(queryFormats, format) {
		return sberr.Errorf(sberr.CodeCLIInputInvalid, "unknown format %q (want one of %s)", format, strings.Join(queryFormats, ", "))
	}
	page, _ := cmd.Flags().GetInt("page")
	if page < 1 {
		return sberr.Errorf(sberr.CodeCLIInputInvalid, "page must be at least 1 (got %d)", page)
	}
	pageSize, _ := cmd.Flags().GetInt("page-size")
	outPath, _ := cmd.Flags().GetString("output")
	if format == formatPNG && outPath == "" {
		return sberr.New(sberr.CodeCLIInputInvalid, "png output needs --output")
	}

	query, err := readQuery(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := WireApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	if _, err := app.Board.Submit(cmd.Context(), query); err != nil {
		return err
	}

	out, err := renderQuery(app.Board, format, page, pageSize)
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return sberr.Errorf(sberr.CodeCLIRequestFailure, "writing %s: %w", outPath, err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
	return nil
}

func readQuery(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	var raw []byte
	var err error
	switch {
	case file != "" && len(args) > 0:
		return "", sberr.New(sberr.CodeCLIInputInvalid, "pass the query as an argument or with --file, not both")
	case file != "":
		raw, err = os.ReadFile(file)
	case len(args) == 1 && args[0] == "-":
		raw, err = io.ReadAll(cmd.InOrStdin())
	case len(args) == 1:
		raw = []byte(args[0])
	default:
		return "", sberr.New(sberr.CodeCLIInputInvalid, "no query given")
	}
	if err != nil {
		return "", sberr.Errorf(sberr.CodeCLIInputInvalid, "reading query: %w", err)
	}
	query := strings.TrimSpace(string(raw))
	if query == "" {
		return "", sberr.New(sberr.CodeCLIInputInvalid, "query is empty")
	}
	return query, nil
}

func renderQuery(b *board.Board, format string, page, pageSize int) ([]byte, error) {
	switch format {
	case formatCSV:
		return []byte(b.ExportCSV()), nil
	case formatJSON:
		return b.ExportResultsJSON()
	case formatGraph:
		return b.ExportGraphJSON()
	case formatPNG:
		var buf bytes.Buffer
		if err := b.ExportImage(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if pageSize > 0 {
		if err := b.SetPageSize(pageSize); err != nil {
			return nil, err
		}
	}
	for range page - 1 {
		b.NextPage()
	}
	view, err := b.Table()
	if err != nil {
		return nil, err
	}
	return []byte(renderTable(view) + "\n"), nil
}

// renderTable draws the current page with the column widths of view.
func renderTable(view table.View) string {
	if view.Empty {
		return view.Message
	}

	widths := make([]int, len(view.Columns))
	headers := make([]string, len(view.Columns))
	for i, c := range view.Columns {
		widths[i] = max(c.Width/pixelsPerChar, 4)
		headers[i] = truncate(c.Name, widths[i])
	}

	rows := make([][]string, 0, len(view.Rows))
	for _, row := range view.Rows {
		cells := make([]string, len(view.Columns))
		for i, c := range view.Columns {
			v, _ := row.Value(c.Name)
			cells[i] = truncate(v, widths[i])
		}
		rows = append(rows, cells)
	}

	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == lgtable.HeaderRow {
				style = headerStyle
			}
			if col < len(widths) {
				style = style.Width(widths[col] + 2)
			}
			return style
		})

	footer := fmt.Sprintf("rows %d-%d of %d (page %d/%d)",
		min(view.Start+1, view.End), view.End, view.TotalRows, view.PageIndex+1, max(view.TotalPages, 1))
	return t.Render() + "\n" + footer
}

// truncate cuts s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
