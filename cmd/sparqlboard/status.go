// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/sparqlboard/internal/store"
)

const defaultServerAddress = "127.0.0.1:18790"

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running server",
		Long:  "Check a running server's health endpoint and show the most recent query it recorded.",
		RunE:  runStatus,
	}

	cmd.Flags().String("address", defaultServerAddress, "server address to check")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	out := cmd.OutOrStdout()

	c := newServerClient(addr)
	var health struct {
		Status string `json:"status"`
	}
	if err := c.getJSON("/health", &health); err != nil {
		_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, describeServerError(addr, err))
		return nil
	}
	_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, health.Status)

	var history struct {
		Entries []store.Entry `json:"entries"`
	}
	if err := c.getJSON("/api/v1/history?limit=1", &history); err != nil {
		_, _ = fmt.Fprintf(out, "Last query: %s\n", err)
		return nil
	}
	if len(history.Entries) == 0 {
		_, _ = fmt.Fprintln(out, "Last query: none")
		return nil
	}
	e := history.Entries[0]
	_, _ = fmt.Fprintf(out, "Last query: #%d %s, %d rows, %d nodes, %d edges\n", e.Seq, e.Status, e.Rows, e.Nodes, e.Edges)
	return nil
}
