// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/sparqlboard/internal/board"
	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/sigil-dev/sparqlboard/internal/surface"
	"github.com/sigil-dev/sparqlboard/internal/table"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const exploreQuery = "SELECT * WHERE { ?s ?p ?o }"

// press feeds keys to m one at a time.
func press(t *testing.T, m exploreModel, keys ...string) exploreModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = keyRunes(k)
		}
		next, _ := m.Update(msg)
		m = next.(exploreModel)
	}
	return m
}

// loaded returns a model whose board already holds the two-triple result.
func loaded(t *testing.T) (exploreModel, *board.Board) {
	t.Helper()
	b := newTestBoard(t)
	m := newExploreModel(b, []int{100, 10, 50, 25})
	next, _ := m.Update(submitQueryCmd(b, exploreQuery)())
	return next.(exploreModel), b
}

func TestExplore_SubmitRunsQuery(t *testing.T) {
	b := newTestBoard(t)
	m := newExploreModel(b, []int{10, 25})
	assert.Contains(t, m.View(), "enter run")

	m.input.SetValue(exploreQuery)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(exploreModel)
	require.NotNil(t, cmd)
	assert.True(t, m.running)
	assert.Contains(t, m.View(), "running")

	next, _ = m.Update(submitQueryCmd(b, exploreQuery)())
	m = next.(exploreModel)
	assert.False(t, m.running)
	assert.Equal(t, focusResults, m.focus)
	assert.Equal(t, "#1: 2 rows, 3 nodes, 2 edges", m.status)
	assert.Equal(t, exploreQuery, b.Query())

	view := m.View()
	assert.Contains(t, view, "rows 1-2 of 2")
	assert.Contains(t, view, "http://x/")
}

func TestExplore_EmptyQuery(t *testing.T) {
	m := newExploreModel(newTestBoard(t), nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(exploreModel)
	assert.Nil(t, cmd)
	assert.Equal(t, "query is empty", m.errMsg)
}

func TestExplore_QueryFailure(t *testing.T) {
	m := newExploreModel(newTestBoard(t), nil)
	m.running = true
	next, _ := m.Update(queryDoneMsg{err: sberr.New(sberr.CodeSparqlUpstreamFailure, "endpoint returned status 500")})
	m = next.(exploreModel)
	assert.False(t, m.running)
	assert.Equal(t, focusQuery, m.focus, "focus stays on the prompt to fix the query")
	assert.Contains(t, m.View(), "status 500")
}

func TestExplore_StaleResponseIgnored(t *testing.T) {
	m := newExploreModel(newTestBoard(t), nil)
	m.running = true
	next, _ := m.Update(queryDoneMsg{err: sberr.New(sberr.CodeBoardResultStale, "superseded")})
	m = next.(exploreModel)
	assert.True(t, m.running, "still waiting for the newer response")
	assert.Empty(t, m.errMsg)
}

func TestExplore_FocusToggle(t *testing.T) {
	m, _ := loaded(t)
	require.Equal(t, focusResults, m.focus)

	m = press(t, m, "/")
	assert.Equal(t, focusQuery, m.focus)
	m = press(t, m, "esc")
	assert.Equal(t, focusResults, m.focus)
	m = press(t, m, "esc")
	assert.Equal(t, focusQuery, m.focus)
}

func TestExplore_TableKeys(t *testing.T) {
	m, b := loaded(t)

	m = press(t, m, "+")
	view, err := b.Table()
	require.NoError(t, err)
	assert.Equal(t, 50, view.PageSize, "steps through the sorted sizes")

	m = press(t, m, "-", "-")
	view, err = b.Table()
	require.NoError(t, err)
	assert.Equal(t, 10, view.PageSize)
	assert.Equal(t, "page size 10", m.status)

	m = press(t, m, "-")
	view, err = b.Table()
	require.NoError(t, err)
	assert.Equal(t, 10, view.PageSize, "clamped at the smallest size")

	m = press(t, m, "l", "]")
	assert.Equal(t, 1, m.column)
	assert.True(t, strings.HasPrefix(m.status, "column 2: "), m.status)

	m = press(t, m, "h", "h")
	assert.Equal(t, 0, m.column)

	m = press(t, m, "tab")
	assert.Equal(t, "view: json", m.status)
	view, err = b.Table()
	require.NoError(t, err)
	assert.Equal(t, table.ModeJSON, view.Mode)
	assert.Contains(t, m.View(), `"bindings"`)
}

func TestExplore_ColumnCursorClamped(t *testing.T) {
	m, _ := loaded(t)
	m = press(t, m, "l", "l", "l", "l", "l")
	assert.Equal(t, 2, m.column, "three variables")
}

func TestExplore_GraphKeys(t *testing.T) {
	m, b := loaded(t)

	m = press(t, m, "g")
	require.Equal(t, paneGraph, m.pane)
	assert.Contains(t, m.View(), "3 nodes")

	m = press(t, m, "j", "j", "j")
	assert.Equal(t, 2, m.nodeIdx, "cursor stops at the last node")
	m = press(t, m, "k")
	assert.Equal(t, 1, m.nodeIdx)

	m = press(t, m, "enter")
	sel, ok := b.Selected()
	require.True(t, ok)
	assert.Equal(t, b.Elements().Nodes[1].Data.ID, sel.ID)
	assert.True(t, strings.HasPrefix(m.status, "selected "), m.status)

	m = press(t, m, "x")
	_, ok = b.Selected()
	assert.False(t, ok)
	assert.Equal(t, "selection cleared", m.status)

	m = press(t, m, "z")
	assert.True(t, strings.HasPrefix(m.status, "zoom "), m.status)
	assert.Greater(t, b.GraphView().Viewport.Zoom, 1.0)
	m = press(t, m, "0")
	assert.Equal(t, "zoom 1.00", m.status)

	m = press(t, m, "L")
	assert.Equal(t, "layout grid", m.status)
	assert.Equal(t, surface.LayoutGrid, b.GraphView().Requested)

	m = press(t, m, "g")
	assert.Equal(t, paneTable, m.pane)
}

func TestExplore_HoverFollowsCursor(t *testing.T) {
	m, b := loaded(t)
	m = press(t, m, "g")
	first := b.Elements().Nodes[0].Data
	require.NotNil(t, b.GraphView().Tooltip)
	assert.Equal(t, first.ID, b.GraphView().Tooltip.ID)
	assert.Contains(t, m.View(), "hover: "+first.Label)

	m = press(t, m, "j")
	assert.Equal(t, b.Elements().Nodes[1].Data.ID, b.GraphView().Tooltip.ID)

	press(t, m, "g")
	assert.Nil(t, b.GraphView().Tooltip, "leaving the graph pane hides the tooltip")
}

func TestExplore_FocusView(t *testing.T) {
	m, b := loaded(t)
	base := b.Listeners()
	m = press(t, m, "g", "F")
	assert.Equal(t, "focus view: 3 nodes, esc closes", m.status)
	assert.True(t, b.GraphView().FocusOpen)
	assert.Greater(t, b.Listeners(), base)
	assert.Contains(t, m.View(), "focus  layout")

	m = press(t, m, "esc")
	assert.Equal(t, "focus view closed", m.status)
	assert.False(t, b.GraphView().FocusOpen)
	assert.Equal(t, focusResults, m.focus, "esc closes focus before leaving the results")
	assert.Equal(t, base, b.Listeners())

	m = press(t, m, "F", "F")
	assert.Equal(t, "focus view closed", m.status)
	assert.False(t, b.GraphView().FocusOpen)
}

func TestExplore_WindowSizeDispatchesResize(t *testing.T) {
	bus := &events.Bus{}
	b := board.New(board.Options{Bus: bus})
	t.Cleanup(b.Close)
	var got []events.Event
	release := bus.On(events.Resize, func(e events.Event) { got = append(got, e) })
	defer release()

	m := newExploreModel(b, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(exploreModel)

	assert.Equal(t, 120, m.width)
	require.Len(t, got, 1)
	assert.Equal(t, 120.0, got[0].X)
	assert.Equal(t, 40.0, got[0].Y)
}

func TestExplore_MouseDragResizesColumn(t *testing.T) {
	m, b := loaded(t)
	start, err := b.ColumnWidth(0)
	require.NoError(t, err)
	base := b.Listeners()

	mouse := func(action tea.MouseAction, x int) {
		next, _ := m.Update(tea.MouseMsg{X: x, Y: tableTop + 1, Action: action, Button: tea.MouseButtonLeft})
		m = next.(exploreModel)
	}

	mouse(tea.MouseActionPress, 5)
	assert.Equal(t, 0, m.dragging)
	assert.Equal(t, base+2, b.Listeners())

	mouse(tea.MouseActionMotion, 10)
	w, err := b.ColumnWidth(0)
	require.NoError(t, err)
	assert.Equal(t, start+5*pixelsPerChar, w)

	mouse(tea.MouseActionRelease, 10)
	assert.Equal(t, -1, m.dragging)
	assert.Equal(t, base, b.Listeners())
	assert.Equal(t, fmt.Sprintf("column 1: %dpx", start+5*pixelsPerChar), m.status)

	next, _ := m.Update(tea.MouseMsg{X: 5, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(exploreModel)
	assert.Equal(t, -1, m.dragging, "presses above the table are ignored")
}

func TestExplore_Reset(t *testing.T) {
	m, b := loaded(t)
	m = press(t, m, "r")
	assert.Equal(t, "reset", m.status)
	assert.Empty(t, b.Query())
	assert.Equal(t, 0, b.Status().Rows)
}

func TestExplore_WindowSize(t *testing.T) {
	m := newExploreModel(newTestBoard(t), nil)
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = next.(exploreModel)
	assert.Nil(t, cmd)
	assert.Equal(t, 56, m.text.Width)
	assert.Equal(t, 12, m.text.Height)
}

func TestExplore_Quit(t *testing.T) {
	m, _ := loaded(t)
	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestExplore_RequiresTerminal(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, strings.NewReader(""), "explore")
	require.Error(t, err)
	assert.True(t, sberr.HasCode(err, sberr.CodeCLISetupFailure))
}

func TestPageFooter(t *testing.T) {
	v := table.View{Start: 0, End: 0, TotalRows: 0, PageIndex: 0, TotalPages: 0, PageSize: 25}
	assert.Equal(t, "rows 0-0 of 0  page 1/1  25 per page", pageFooter(v))

	v = table.View{Start: 25, End: 50, TotalRows: 60, PageIndex: 1, TotalPages: 3, PageSize: 25}
	assert.Equal(t, "rows 26-50 of 60  page 2/3  25 per page", pageFooter(v))
}
