// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// download is one attachment served under /export.
type download struct {
	file        string
	contentType string
	summary     string
	render      func() ([]byte, error)
}

func (s *Server) downloads() []download {
	return []download{
		{
			file:        "results.csv",
			contentType: "text/csv; charset=utf-8",
			summary:     "Download the result set as CSV",
			render:      func() ([]byte, error) { return []byte(s.board.ExportCSV()), nil },
		},
		{
			file:        "results.json",
			contentType: "application/json",
			summary:     "Download the result set as JSON",
			render:      s.board.ExportResultsJSON,
		},
		{
			file:        "graph.json",
			contentType: "application/json",
			summary:     "Download the rendered graph as JSON",
			render:      s.board.ExportGraphJSON,
		},
		{
			file:        "graph.png",
			contentType: "image/png",
			summary:     "Download a PNG snapshot of the graph",
			render: func() ([]byte, error) {
				var buf bytes.Buffer
				if err := s.board.ExportImage(&buf); err != nil {
					return nil, err
				}
				return buf.Bytes(), nil
			},
		},
		{
			file:        "query.sparql",
			contentType: "application/sparql-query",
			summary:     "Download the last submitted query",
			render:      func() ([]byte, error) { return []byte(s.board.ExportQuery()), nil },
		},
	}
}

// registerExportRoutes mounts the downloads as raw chi routes, since their
// bodies are not JSON, and documents them in the OpenAPI spec by hand.
func (s *Server) registerExportRoutes() {
	for _, d := range s.downloads() {
		path := "/export/" + d.file
		s.router.Get(path, s.serveDownload(d))

		s.api.OpenAPI().AddOperation(&huma.Operation{
			OperationID: "export-" + d.file,
			Method:      http.MethodGet,
			Path:        path,
			Summary:     d.summary,
			Tags:        []string{"export"},
			Responses: map[string]*huma.Response{
				"200": {
					Description: "Attachment",
					Content: map[string]*huma.MediaType{
						d.contentType: {Schema: &huma.Schema{Type: "string"}},
					},
				},
				"500": {Description: "Export failed"},
			},
		})
	}
}

func (s *Server) serveDownload(d download) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := d.render()
		if err != nil {
			slog.Warn("export failed", "file", d.file, "error", err)
			http.Error(w, `{"error":"export failed"}`, sberr.HTTPStatus(err))
			return
		}
		w.Header().Set("Content-Type", d.contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.file))
		if _, err := w.Write(data); err != nil {
			slog.Warn("writing export", "file", d.file, "error", err)
		}
	}
}
