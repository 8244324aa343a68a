// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sigil-dev/sparqlboard/internal/board"
)

// SummaryEvent names every event on the summary stream.
const SummaryEvent = "summary"

func (s *Server) registerEventsRoute() {
	s.router.Get("/api/v1/events", s.handleEvents)

	// The stream needs the raw ResponseWriter, so the chi route serves it
	// and the OpenAPI entry is added by hand.
	s.api.OpenAPI().AddOperation(&huma.Operation{
		OperationID: "stream-summaries",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "Stream query summaries via SSE",
		Description: "Sends the current summary, then one summary event per applied response or reset until the client disconnects.",
		Tags:        []string{"query"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Server-sent event stream",
				Content: map[string]*huma.MediaType{
					"text/event-stream": {
						Schema: &huma.Schema{Type: "string", Description: "Server-sent event stream"},
					},
				},
			},
		},
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Subscribe before reading the current status so no transition in
	// between is lost.
	ch, cancel := s.board.Watch()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	send := func(sum board.Summary) bool {
		if err := writeEvent(w, sum); err != nil {
			slog.Debug("summary stream closed", "error", err)
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	if !send(s.board.Status()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case sum, ok := <-ch:
			if !ok || !send(sum) {
				return
			}
		}
	}
}

func writeEvent(w io.Writer, sum board.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", SummaryEvent, data)
	return err
}
