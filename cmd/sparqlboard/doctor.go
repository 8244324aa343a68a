// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigil-dev/sparqlboard/internal/config"
	"github.com/sigil-dev/sparqlboard/internal/results"
	"github.com/sigil-dev/sparqlboard/internal/secrets"
	"github.com/sigil-dev/sparqlboard/internal/sparql"
	"github.com/sigil-dev/sparqlboard/internal/store"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
	"github.com/sigil-dev/sparqlboard/pkg/health"
)

// pingQuery is answered by every SPARQL 1.1 endpoint.
const pingQuery = "ASK { }"

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the binary, configuration, endpoint reachability, credentials, keyring, history storage, disk space, and a running server.",
		RunE:  runDoctor,
	}

	cmd.Flags().String("address", defaultServerAddress, "server address to check")
	cmd.Flags().Bool("json", false, "print the report as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	addr, _ := cmd.Flags().GetString("address")
	asJSON, _ := cmd.Flags().GetBool("json")

	var report health.Report
	report.Add(checkBinary())
	report.Add(checkPlatform())

	cfg, err := loadConfig()
	if err != nil {
		report.Add(health.Fail("Config", err.Error()))
	} else {
		report.Add(checkConfig())
		report.Add(timed(func() health.Check { return checkEndpoint(cmd.Context(), cfg.Endpoint) }))
		report.Add(checkCredentials(cfg.Endpoint))
		report.Add(checkStorage(cmd.Context(), cfg.Storage))
		report.Add(checkDiskSpace(storageDir(cfg.Storage)))
	}
	report.Add(checkKeyring())
	report.Add(checkServer(addr))

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, c := range report.Checks {
			if _, err := fmt.Fprintf(w, "%-20s %-5s %s\n", c.Name+":", c.Status, c.Detail); err != nil {
				return err
			}
		}
	}

	if !report.Healthy() {
		return sberr.Errorf(sberr.CodeCLIRequestFailure, "%d check(s) failed", report.Count(health.StatusFail))
	}
	return nil
}

func timed(fn func() health.Check) health.Check {
	start := time.Now()
	c := fn()
	c.Elapsed = time.Since(start)
	return c
}

func checkBinary() health.Check {
	return health.OK("Binary", fmt.Sprintf("sparqlboard %s (commit %s)", version, commit))
}

func checkPlatform() health.Check {
	return health.OK("Platform", fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version()))
}

func checkConfig() health.Check {
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		if perm, exposed := config.ExposedMode(cfgFile); exposed {
			return health.Warn("Config", fmt.Sprintf("loaded from %s, mode %#o is readable by other users", cfgFile, perm))
		}
		return health.OK("Config", fmt.Sprintf("loaded from %s", cfgFile))
	}
	return health.OK("Config", "using defaults (no config file found)")
}

func checkEndpoint(ctx context.Context, ep config.EndpointConfig) health.Check {
	timeout := ep.Timeout
	if timeout <= 0 || timeout > 10*time.Second {
		timeout = 10 * time.Second
	}
	client, err := sparql.New(sparql.Options{
		Endpoint: ep.URL,
		Accept:   ep.Accept,
		Timeout:  timeout,
		Username: ep.Username,
		Password: ep.Password,
		Token:    ep.Token,
	})
	if err != nil {
		return health.Fail("Endpoint", err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	raw, err := client.Execute(ctx, pingQuery)
	if err != nil {
		return health.Fail("Endpoint", fmt.Sprintf("%s: %s", client.Endpoint(), err))
	}
	if answer, ok := results.Boolean(raw); ok {
		return health.OK("Endpoint", fmt.Sprintf("%s answered ASK with %t", client.Endpoint(), answer))
	}
	return health.Warn("Endpoint", fmt.Sprintf("%s answered with a non-boolean document", client.Endpoint()))
}

func checkCredentials(ep config.EndpointConfig) health.Check {
	var unresolved []string
	for name, v := range map[string]string{"username": ep.Username, "password": ep.Password, "token": ep.Token} {
		if secrets.IsURI(v) {
			unresolved = append(unresolved, name)
		}
	}
	switch {
	case len(unresolved) > 0:
		slices.Sort(unresolved)
		return health.Fail("Credentials", "unresolved keyring reference for "+strings.Join(unresolved, ", "))
	case ep.Token != "":
		return health.OK("Credentials", "bearer token")
	case ep.Username != "":
		return health.OK("Credentials", "basic auth as "+ep.Username)
	default:
		return health.OK("Credentials", "none (anonymous)")
	}
}

func checkKeyring() health.Check {
	keys, err := secretStoreFactory().Keys()
	if err != nil {
		return health.Warn("Keyring", fmt.Sprintf("unavailable: %s", err))
	}
	return health.OK("Keyring", fmt.Sprintf("%d secret(s) stored", len(keys)))
}

func checkStorage(ctx context.Context, sc config.StorageConfig) health.Check {
	hs, err := store.NewHistoryStore(&store.StorageConfig{Backend: sc.Backend, DSN: sc.DSN, HistoryLimit: sc.HistoryLimit})
	if err != nil {
		return health.Fail("Storage", fmt.Sprintf("%s (registered: %s)", err, strings.Join(store.Backends(), ", ")))
	}
	defer func() { _ = hs.Close() }()

	n, err := hs.Count(ctx)
	if err != nil {
		return health.Fail("Storage", err.Error())
	}
	backend := sc.Backend
	if backend == "" {
		backend = store.DefaultBackend
	}
	return health.OK("Storage", fmt.Sprintf("%s, %d entries recorded", backend, n))
}

func checkServer(addr string) health.Check {
	var body struct {
		Status string `json:"status"`
	}
	if err := newServerClient(addr).getJSON("/health", &body); err != nil {
		return health.Warn("Server", describeServerError(addr, err))
	}
	return health.OK("Server", fmt.Sprintf("%s at %s", body.Status, addr))
}

// storageDir is where a file-backed history lives, or the home directory
// for in-memory stores.
func storageDir(sc config.StorageConfig) string {
	dsn := strings.TrimPrefix(sc.DSN, "file:")
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	if dsn != "" && !strings.Contains(dsn, ":memory:") {
		if dir := filepath.Dir(dsn); dirExists(dir) {
			return dir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
