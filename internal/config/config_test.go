// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sigil-dev/sparqlboard/internal/config"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://dbpedia.org/sparql", cfg.Endpoint.URL)
	assert.Equal(t, 30*time.Second, cfg.Endpoint.Timeout)
	assert.Equal(t, "application/sparql-results+json", cfg.Endpoint.Accept)
	assert.Equal(t, "127.0.0.1:18790", cfg.Networking.Listen)
	assert.Zero(t, cfg.Networking.QueryRate)
	assert.Equal(t, 5, cfg.Networking.QueryBurst)
	assert.Empty(t, cfg.Endpoint.Password)
	assert.Equal(t, 25, cfg.Table.PageSize)
	assert.Equal(t, []int{10, 25, 50, 100}, cfg.Table.PageSizes)
	assert.Equal(t, 80, cfg.Table.MinColumnWidth)
	assert.Equal(t, 60, cfg.Table.MinDragWidth)
	assert.Equal(t, "cose", cfg.Graph.Layout)
	assert.Equal(t, 2*time.Second, cfg.Graph.ProbeTimeout)
	assert.InDelta(t, 1.2, cfg.Graph.ZoomStep, 1e-9)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, 100, cfg.Storage.HistoryLimit)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sparqlboard.yaml")

	content := `
endpoint:
  url: "https://query.wikidata.org/sparql"
  timeout: "5s"
networking:
  listen: "0.0.0.0:9999"
table:
  page_size: 50
graph:
  layout: "grid"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "https://query.wikidata.org/sparql", cfg.Endpoint.URL)
	assert.Equal(t, 5*time.Second, cfg.Endpoint.Timeout)
	assert.Equal(t, "0.0.0.0:9999", cfg.Networking.Listen)
	assert.Equal(t, 50, cfg.Table.PageSize)
	assert.Equal(t, "grid", cfg.Graph.Layout)
	assert.Equal(t, "cose", cfg.Graph.FallbackLayout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SPARQLBOARD_NETWORKING_LISTEN", "10.0.0.1:8080")
	t.Setenv("SPARQLBOARD_GRAPH_LAYOUT", "circle")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, "circle", cfg.Graph.Layout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, sberr.HasCode(err, sberr.CodeConfigLoadReadFailure))
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sparqlboard.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("graph:\n  layout: \"spiral\"\n"), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph.layout")
}

// validConfig returns a config that passes all validation.
func validConfig() *config.Config {
	return &config.Config{
		Endpoint: config.EndpointConfig{
			URL:     "https://dbpedia.org/sparql",
			Timeout: 30 * time.Second,
		},
		Networking: config.NetworkingConfig{Listen: "127.0.0.1:18790"},
		Table: config.TableConfig{
			PageSize:       25,
			PageSizes:      []int{10, 25, 50, 100},
			AvailableWidth: 960,
			MinColumnWidth: 80,
			MinDragWidth:   60,
		},
		Graph: config.GraphConfig{
			Layout:           "cose",
			FallbackLayout:   "cose",
			ProbeTimeout:     2 * time.Second,
			ZoomStep:         1.2,
			WheelSensitivity: 0.2,
			ImageWidth:       1200,
			ImageHeight:      800,
		},
		Storage: config.StorageConfig{Backend: "sqlite", HistoryLimit: 100},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "relative endpoint", mutate: func(c *config.Config) { c.Endpoint.URL = "/sparql" }, wantErr: "endpoint.url"},
		{name: "zero timeout", mutate: func(c *config.Config) { c.Endpoint.Timeout = 0 }, wantErr: "endpoint.timeout"},
		{name: "empty listen", mutate: func(c *config.Config) { c.Networking.Listen = "" }, wantErr: "networking.listen"},
		{name: "listen without port", mutate: func(c *config.Config) { c.Networking.Listen = "localhost" }, wantErr: "host:port"},
		{name: "listen port out of range", mutate: func(c *config.Config) { c.Networking.Listen = ":70000" }, wantErr: "between 1 and 65535"},
		{name: "negative query rate", mutate: func(c *config.Config) { c.Networking.QueryRate = -1 }, wantErr: "query_rate"},
		{name: "query rate without burst", mutate: func(c *config.Config) { c.Networking.QueryRate = 2; c.Networking.QueryBurst = 0 }, wantErr: "query_burst"},
		{name: "page size not offered", mutate: func(c *config.Config) { c.Table.PageSize = 30 }, wantErr: "table.page_sizes"},
		{name: "zero page size", mutate: func(c *config.Config) { c.Table.PageSize = 0 }, wantErr: "table.page_size"},
		{name: "unknown layout", mutate: func(c *config.Config) { c.Graph.Layout = "spiral" }, wantErr: "graph.layout"},
		{name: "enhanced fallback", mutate: func(c *config.Config) { c.Graph.FallbackLayout = "cose-bilkent" }, wantErr: "built-in"},
		{name: "zoom step", mutate: func(c *config.Config) { c.Graph.ZoomStep = 1 }, wantErr: "graph.zoom_step"},
		{name: "image size", mutate: func(c *config.Config) { c.Graph.ImageWidth = 0 }, wantErr: "graph.image_width"},
		{name: "backend", mutate: func(c *config.Config) { c.Storage.Backend = "postgres" }, wantErr: "storage.backend"},
		{name: "history limit", mutate: func(c *config.Config) { c.Storage.HistoryLimit = -1 }, wantErr: "storage.history_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			var msgs []string
			for _, err := range errs {
				assert.True(t, sberr.IsInvalidInput(err))
				msgs = append(msgs, err.Error())
			}
			assert.Contains(t, strings.Join(msgs, "\n"), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Graph.Layout = "spiral"
	cfg.Storage.Backend = "postgres"
	cfg.Table.MinDragWidth = 0
	assert.Len(t, cfg.Validate(), 3)
}

func TestFromViper_UsesSharedDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	config.SetupEnv(v)
	v.Set("table.page_size", 10)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Table.PageSize)
}

func TestDefaultConfigYAML_MatchesDefaults(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(config.DefaultConfigYAML, &doc))
	for _, section := range []string{"endpoint", "networking", "table", "graph", "storage", "metrics"} {
		assert.Contains(t, doc, section)
	}

	path := filepath.Join(t.TempDir(), "sparqlboard.yaml")
	require.NoError(t, os.WriteFile(path, config.DefaultConfigYAML, 0o600))
	fromFile, err := config.Load(path)
	require.NoError(t, err)
	defaults, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, defaults.Endpoint, fromFile.Endpoint)
	assert.Equal(t, defaults.Networking.Listen, fromFile.Networking.Listen)
	assert.Equal(t, defaults.Networking.QueryBurst, fromFile.Networking.QueryBurst)
	assert.Equal(t, defaults.Table, fromFile.Table)
	assert.Equal(t, defaults.Graph, fromFile.Graph)
	assert.Equal(t, defaults.Storage, fromFile.Storage)
	assert.Equal(t, defaults.Metrics, fromFile.Metrics)
}

func TestBootstrapConfigAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sparqlboard.yaml")

	assert.Equal(t, path, config.BootstrapConfigAt(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigYAML, data)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Empty(t, config.BootstrapConfigAt(path), "existing file is left alone")
}
