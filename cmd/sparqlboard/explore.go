// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sigil-dev/sparqlboard/internal/board"
	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/sigil-dev/sparqlboard/internal/graph"
	"github.com/sigil-dev/sparqlboard/internal/surface"
	"github.com/sigil-dev/sparqlboard/internal/table"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Column drags from the keyboard move by this many pixels.
const resizeStep = 20

// Terminal rows above the first table line: title, prompt, pane border.
const tableTop = 3

type exploreFocus int

const (
	focusQuery exploreFocus = iota
	focusResults
)

type explorePane int

const (
	paneTable explorePane = iota
	paneGraph
)

// queryDoneMsg carries the outcome of one submitted query.
type queryDoneMsg struct {
	sum board.Summary
	err error
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

// exploreModel is the bubbletea model for the interactive explorer. Every
// view is re-read from the board after each action, so the board stays the
// single source of truth.
type exploreModel struct {
	board     *board.Board
	pageSizes []int
	layouts   []surface.Layout

	input   textinput.Model
	spinner spinner.Model
	grid    btable.Model
	text    viewport.Model

	focus   exploreFocus
	pane    explorePane
	running bool
	status  string
	errMsg  string
	column  int
	nodeIdx int
	width   int
	height  int
	// dragging is the column being resized with the mouse, or -1.
	dragging int

	// initial runs once on startup.
	initial tea.Cmd
}

func newExploreModel(b *board.Board, pageSizes []int) exploreModel {
	in := textinput.New()
	in.Placeholder = "SELECT ?s ?p ?o WHERE { ?s ?p ?o } LIMIT 25"
	in.Prompt = "sparql> "
	in.CharLimit = 0
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	layouts := make([]surface.Layout, 0, len(surface.LayoutOptions()))
	for _, o := range surface.LayoutOptions() {
		layouts = append(layouts, o.Value)
	}

	m := exploreModel{
		board:     b,
		pageSizes: pageSizes,
		layouts:   layouts,
		input:     in,
		spinner:   sp,
		grid:      btable.New(btable.WithFocused(false), btable.WithHeight(10)),
		text:      viewport.New(80, 10),
		width:     100,
		height:    30,
		dragging:  -1,
	}
	m.refresh()
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initial)
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if err := m.board.Dispatch(events.Event{Name: events.Resize, X: float64(msg.Width), Y: float64(msg.Height)}); err != nil {
			m.errMsg = err.Error()
		}
		m.refresh()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case queryDoneMsg:
		return m.handleDone(msg), nil
	}
	return m, nil
}

func (m exploreModel) handleDone(msg queryDoneMsg) exploreModel {
	// A superseded response changes nothing on the board; wait for the
	// newer one.
	if sberr.IsStale(msg.err) {
		return m
	}
	m.running = false
	m.nodeIdx = 0
	m.column = 0
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		m.status = ""
	} else {
		m.errMsg = ""
		m.status = fmt.Sprintf("#%d: %d rows, %d nodes, %d edges", msg.sum.Seq, msg.sum.Rows, msg.sum.Nodes, msg.sum.Edges)
		if msg.sum.Skipped > 0 {
			m.status += fmt.Sprintf(" (%d rows without s/o)", msg.sum.Skipped)
		}
		m.focus = focusResults
		m.input.Blur()
	}
	m.refresh()
	return m
}

func (m exploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if _, open := m.board.FocusView(); open && m.focus == focusResults {
			if err := m.board.Dispatch(events.Event{Name: events.KeyDown, Key: surface.EscapeKey}); err != nil {
				m.errMsg = err.Error()
			} else {
				m.status = "focus view closed"
			}
			m.refresh()
			return m, nil
		}
		if m.focus == focusQuery {
			m.focus = focusResults
			m.input.Blur()
		} else {
			m.focus = focusQuery
			m.input.Focus()
		}
		m.refresh()
		return m, nil
	}

	if m.focus == focusQuery {
		if msg.String() == "enter" {
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				m.errMsg = "query is empty"
				return m, nil
			}
			m.running = true
			m.errMsg = ""
			return m, tea.Batch(m.spinner.Tick, submitQueryCmd(m.board, q))
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m.handleResultsKey(msg)
}

func (m exploreModel) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.focus = focusQuery
		m.input.Focus()
	case "g":
		if m.pane == paneTable {
			m.pane = paneGraph
			m.hoverCursor()
		} else {
			m.pane = paneTable
			m.board.Unhover()
		}
	case "r":
		m.board.Reset(context.Background())
		m.status = "reset"
		m.nodeIdx, m.column = 0, 0
	default:
		var cmd tea.Cmd
		if m.pane == paneGraph {
			m.handleGraphKey(msg.String())
		} else {
			cmd = m.handleTableKey(msg)
		}
		m.refresh()
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m *exploreModel) handleTableKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "n":
		m.board.NextPage()
	case "p":
		m.board.PrevPage()
	case "f":
		m.board.FirstPage()
	case "+", "-":
		m.stepPageSize(msg.String() == "+")
	case "tab":
		m.status = "view: " + string(m.board.CycleMode())
	case "left", "h":
		m.column = max(m.column-1, 0)
	case "right", "l":
		m.column++
	case "[", "]":
		delta := resizeStep
		if msg.String() == "[" {
			delta = -resizeStep
		}
		if w, err := m.board.ResizeColumn(m.column, delta); err != nil {
			m.errMsg = err.Error()
		} else {
			m.status = fmt.Sprintf("column %d: %dpx", m.column+1, w)
		}
	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		m.text, _ = m.text.Update(msg)
		return cmd
	}
	return nil
}

func (m *exploreModel) stepPageSize(up bool) {
	view, err := m.board.Table()
	if err != nil || len(m.pageSizes) == 0 {
		return
	}
	sizes := slices.Clone(m.pageSizes)
	slices.Sort(sizes)
	i := slices.Index(sizes, view.PageSize)
	switch {
	case i < 0:
		i = 0
	case up && i < len(sizes)-1:
		i++
	case !up && i > 0:
		i--
	}
	if err := m.board.SetPageSize(sizes[i]); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.status = fmt.Sprintf("page size %d", sizes[i])
}

func (m *exploreModel) handleGraphKey(key string) {
	nodes := m.board.Elements().Nodes
	switch key {
	case "down", "j":
		if m.nodeIdx < len(nodes)-1 {
			m.nodeIdx++
		}
		m.hoverCursor()
	case "up", "k":
		if m.nodeIdx > 0 {
			m.nodeIdx--
		}
		m.hoverCursor()
	case "F":
		if _, open := m.board.FocusView(); open {
			m.board.CloseFocus()
			m.status = "focus view closed"
			return
		}
		snap, err := m.board.OpenFocus(context.Background())
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.status = fmt.Sprintf("focus view: %d nodes, esc closes", len(snap.Nodes))
	case "enter":
		if m.nodeIdx < len(nodes) {
			e, err := m.board.SelectNode(nodes[m.nodeIdx].Data.ID)
			if err != nil {
				m.errMsg = err.Error()
				return
			}
			m.status = fmt.Sprintf("selected %s (%d rows)", e.Label, len(e.Rows))
		}
	case "x":
		m.board.ClearSelection()
		m.status = "selection cleared"
	case "z", "Z", "0", "=":
		action := map[string]string{
			"z": board.ViewportZoomIn, "Z": board.ViewportZoomOut, "0": board.ViewportReset, "=": board.ViewportFit,
		}[key]
		vp, err := m.board.ApplyViewport(action)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.status = fmt.Sprintf("zoom %.2f", vp.Zoom)
	case "L":
		current := m.board.GraphView().Requested
		next := m.layouts[(slices.Index(m.layouts, current)+1)%len(m.layouts)]
		drawn, err := m.board.SetLayout(context.Background(), next)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.status = "layout " + string(drawn)
		if drawn != next {
			m.status += fmt.Sprintf(" (%s unavailable)", next)
		}
	}
}

// hoverCursor shows the tooltip for the node under the cursor.
func (m *exploreModel) hoverCursor() {
	nodes := m.board.Elements().Nodes
	if m.nodeIdx >= len(nodes) {
		m.board.Unhover()
		return
	}
	if _, err := m.board.Hover(nodes[m.nodeIdx].Data.ID); err != nil {
		m.errMsg = err.Error()
	}
}

// handleMouse resizes the column under the pointer: press starts a drag,
// motion follows it, and release ends it.
func (m exploreModel) handleMouse(msg tea.MouseMsg) exploreModel {
	if m.pane != paneTable {
		return m
	}
	x := float64(msg.X * pixelsPerChar)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		col, ok := m.columnAt(msg.X, msg.Y)
		if !ok {
			return m
		}
		if _, err := m.board.BeginColumnDrag(col, x); err != nil {
			m.errMsg = err.Error()
			return m
		}
		m.dragging, m.column = col, col
	case msg.Action == tea.MouseActionMotion && m.dragging >= 0:
		if err := m.board.Dispatch(events.Event{Name: events.PointerMove, X: x, Y: float64(msg.Y)}); err != nil {
			m.errMsg = err.Error()
		}
	case msg.Action == tea.MouseActionRelease && m.dragging >= 0:
		if err := m.board.Dispatch(events.Event{Name: events.PointerUp, X: x, Y: float64(msg.Y)}); err != nil {
			m.errMsg = err.Error()
		}
		if w, err := m.board.ColumnWidth(m.dragging); err == nil {
			m.status = fmt.Sprintf("column %d: %dpx", m.dragging+1, w)
		}
		m.dragging = -1
	default:
		return m
	}
	m.refresh()
	return m
}

// columnAt maps a cell to the table column drawn there. Each column is its
// width plus one cell of padding per side, inside the pane border.
func (m exploreModel) columnAt(x, y int) (int, bool) {
	if y < tableTop {
		return 0, false
	}
	left := 1
	for i, c := range m.grid.Columns() {
		right := left + c.Width + 2
		if x >= left && x < right {
			return i, true
		}
		left = right
	}
	return 0, false
}

// refresh re-reads the board into the table, text, and graph widgets.
func (m *exploreModel) refresh() {
	bodyHeight := max(m.height-8, 3)
	m.text.Width = max(m.width-4, 20)
	m.text.Height = bodyHeight
	m.grid.SetHeight(bodyHeight)

	if m.pane == paneGraph {
		m.text.SetContent(m.graphText())
		return
	}

	view, err := m.board.Table()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if view.Mode != table.ModeTable {
		m.text.SetContent(view.Text)
		return
	}
	if view.Empty {
		m.text.SetContent(view.Message)
	}
	if len(view.Columns) > 0 {
		m.column = min(m.column, len(view.Columns)-1)
	}

	cols := make([]btable.Column, len(view.Columns))
	for i, c := range view.Columns {
		title := c.Name
		if i == m.column && m.focus == focusResults {
			title = "▸" + title
		}
		cols[i] = btable.Column{Title: title, Width: max(c.Width/pixelsPerChar, 4)}
	}
	rows := make([]btable.Row, len(view.Rows))
	for r, row := range view.Rows {
		cells := make(btable.Row, len(view.Columns))
		for i, c := range view.Columns {
			cells[i], _ = row.Value(c.Name)
		}
		rows[r] = cells
	}
	// Rows must never be wider than the columns while they are swapped.
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	if m.focus == focusResults {
		m.grid.Focus()
	} else {
		m.grid.Blur()
	}
}

func (m exploreModel) graphText() string {
	gv := m.board.GraphView()
	if gv.Empty {
		return gv.Message
	}

	var b strings.Builder
	if snap, open := m.board.FocusView(); open {
		fmt.Fprintf(&b, "focus  layout %s  zoom %.2f  %d nodes\n\n", snap.Layout, snap.Viewport.Zoom, len(snap.Nodes))
		for _, n := range snap.Nodes {
			fmt.Fprintf(&b, "  %s  (%.0f, %.0f)\n", n.Label, n.Position.X, n.Position.Y)
		}
		return b.String()
	}
	fmt.Fprintf(&b, "layout %s  zoom %.2f  %d nodes  %d edges\n\n",
		gv.Layout, gv.Viewport.Zoom, len(gv.Elements.Nodes), len(gv.Elements.Edges))
	for i, n := range gv.Elements.Nodes {
		cursor, mark := " ", " "
		if i == m.nodeIdx {
			cursor = cursorStyle.Render(">")
		}
		if slices.Contains(gv.Highlighted, n.Data.ID) {
			mark = selectedStyle.Render("*")
		}
		b.WriteString(cursor + mark + " " + n.Data.Label + "  " + dimStyle.Render(n.Data.Full) + "\n")
	}
	if gv.Tooltip != nil {
		b.WriteString("\n" + statusStyle.Render("hover: "+gv.Tooltip.Text) + "\n")
	}
	if gv.Selected != nil {
		b.WriteString("\n" + titleStyle.Render(gv.Selected.Full) + "\n")
		b.WriteString(entityRows(*gv.Selected))
	}
	return b.String()
}

// entityRows lists the rows that touched e, one binding per line.
func entityRows(e graph.Entity) string {
	var b strings.Builder
	for _, row := range e.Rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + graph.ShortLabel(row[k].Value)
		}
		b.WriteString("  " + strings.Join(parts, "  ") + "\n")
	}
	return b.String()
}

func (m exploreModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("sparqlboard") + "  " + statusStyle.Render(m.board.Query()) + "\n")
	b.WriteString(m.input.View() + "\n")

	body := m.text.View()
	if m.pane == paneTable {
		if view, err := m.board.Table(); err == nil && view.Mode == table.ModeTable && !view.Empty {
			body = m.grid.View() + "\n" + pageFooter(view)
		}
	}
	b.WriteString(paneStyle.Render(body) + "\n")

	switch {
	case m.running:
		b.WriteString(m.spinner.View() + " running…\n")
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	default:
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(dimStyle.Render(m.helpLine()))
	return b.String()
}

func (m exploreModel) helpLine() string {
	switch {
	case m.focus == focusQuery:
		return "enter run  esc results  ctrl+c quit"
	case m.pane == paneGraph:
		return "j/k move  enter select  x clear  z/Z zoom  = fit  0 reset  L layout  F focus  g table  / query  q quit"
	default:
		return "n/p page  f first  +/- size  tab view  h/l column  [/] or drag resize  g graph  r reset  / query  q quit"
	}
}

func pageFooter(v table.View) string {
	return fmt.Sprintf("rows %d-%d of %d  page %d/%d  %d per page",
		min(v.Start+1, v.End), v.End, v.TotalRows, v.PageIndex+1, max(v.TotalPages, 1), v.PageSize)
}

func submitQueryCmd(b *board.Board, query string) tea.Cmd {
	return func() tea.Msg {
		sum, err := b.Submit(context.Background(), query)
		return queryDoneMsg{sum: sum, err: err}
	}
}

func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [QUERY]",
		Short: "Explore results interactively in the terminal",
		Long:  "Open a terminal UI with a query prompt, the paginated result table, and the entity graph.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExplore,
	}
}

func runExplore(cmd *cobra.Command, args []string) error {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(f) {
		return sberr.New(sberr.CodeCLISetupFailure, "sparqlboard explore requires an interactive terminal; use 'sparqlboard query' instead")
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

	m := newExploreModel(app.Board, cfg.Table.PageSizes)
	if len(args) == 1 {
		m.input.SetValue(args[0])
		m.running = true
		m.initial = tea.Batch(m.spinner.Tick, submitQueryCmd(app.Board, args[0]))
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return sberr.Errorf(sberr.CodeCLISetupFailure, "explorer error: %w", err)
	}
	return nil
}
