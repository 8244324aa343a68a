// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	"errors"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sigil-dev/sparqlboard/internal/surface"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. SPARQLBOARD_ENDPOINT_URL.
const EnvPrefix = "SPARQLBOARD"

// Config is the top-level sparqlboard configuration.
type Config struct {
	Endpoint   EndpointConfig   `mapstructure:"endpoint"`
	Networking NetworkingConfig `mapstructure:"networking"`
	Table      TableConfig      `mapstructure:"table"`
	Graph      GraphConfig      `mapstructure:"graph"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// EndpointConfig points at the SPARQL endpoint.
type EndpointConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Accept  string        `mapstructure:"accept"`
	// Credentials may be keyring://sparqlboard/<key> references.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
}

// NetworkingConfig controls how the HTTP API listens.
type NetworkingConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// QueryRate limits query submissions per client IP per second; zero
	// disables the limit.
	QueryRate  float64 `mapstructure:"query_rate"`
	QueryBurst int     `mapstructure:"query_burst"`
}

// TableConfig sets the tabular view defaults.
type TableConfig struct {
	PageSize       int   `mapstructure:"page_size"`
	PageSizes      []int `mapstructure:"page_sizes"`
	AvailableWidth int   `mapstructure:"available_width"`
	MinColumnWidth int   `mapstructure:"min_column_width"`
	MinDragWidth   int   `mapstructure:"min_drag_width"`
}

// GraphConfig sets the graph view defaults.
type GraphConfig struct {
	Layout           string        `mapstructure:"layout"`
	FallbackLayout   string        `mapstructure:"fallback_layout"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout"`
	ZoomStep         float64       `mapstructure:"zoom_step"`
	WheelSensitivity float64       `mapstructure:"wheel_sensitivity"`
	ImageWidth       int           `mapstructure:"image_width"`
	ImageHeight      int           `mapstructure:"image_height"`
}

// StorageConfig selects the history backend.
type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	DSN          string `mapstructure:"dsn"`
	HistoryLimit int    `mapstructure:"history_limit"`
}

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("endpoint.url", "https://dbpedia.org/sparql")
	v.SetDefault("endpoint.timeout", "30s")
	v.SetDefault("endpoint.accept", "application/sparql-results+json")
	v.SetDefault("endpoint.username", "")
	v.SetDefault("endpoint.password", "")
	v.SetDefault("endpoint.token", "")

	v.SetDefault("networking.listen", "127.0.0.1:18790")
	v.SetDefault("networking.cors_origins", []string{})
	v.SetDefault("networking.query_rate", 0.0)
	v.SetDefault("networking.query_burst", 5)

	v.SetDefault("table.page_size", 25)
	v.SetDefault("table.page_sizes", []int{10, 25, 50, 100})
	v.SetDefault("table.available_width", 960)
	v.SetDefault("table.min_column_width", 80)
	v.SetDefault("table.min_drag_width", 60)

	v.SetDefault("graph.layout", "cose")
	v.SetDefault("graph.fallback_layout", "cose")
	v.SetDefault("graph.probe_timeout", "2s")
	v.SetDefault("graph.zoom_step", 1.2)
	v.SetDefault("graph.wheel_sensitivity", 0.2)
	v.SetDefault("graph.image_width", 1200)
	v.SetDefault("graph.image_height", 800)

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.dsn", ":memory:")
	v.SetDefault("storage.history_limit", 100)

	v.SetDefault("metrics.enabled", false)
}

// SetupEnv maps SPARQLBOARD_SECTION_KEY variables onto section.key.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix SPARQLBOARD_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, sberr.Errorf(sberr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, sberr.Errorf(sberr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, sberr.Errorf(sberr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateEndpoint()...)
	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateTable()...)
	errs = append(errs, c.validateGraph()...)
	errs = append(errs, c.validateStorage()...)

	return errs
}

func invalid(format string, args ...any) error {
	return sberr.Errorf(sberr.CodeConfigValidateInvalidValue, format, args...)
}

func (c *Config) validateEndpoint() []error {
	var errs []error

	u, err := url.Parse(c.Endpoint.URL)
	if c.Endpoint.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, invalid("config: endpoint.url must be an absolute http(s) url, got %q", c.Endpoint.URL))
	}
	if c.Endpoint.Timeout <= 0 {
		errs = append(errs, invalid("config: endpoint.timeout must be greater than 0, got %s", c.Endpoint.Timeout))
	}

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, invalid("config: networking.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Networking.Listen)
	if err != nil {
		errs = append(errs, invalid("config: networking.listen must be a valid host:port address, got %q: %w",
			c.Networking.Listen, err,
		))
		return errs
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, invalid("config: networking.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, invalid("config: networking.listen port must be between 1 and 65535, got %d", port))
	}

	if c.Networking.QueryRate < 0 {
		errs = append(errs, invalid("config: networking.query_rate must not be negative, got %g", c.Networking.QueryRate))
	}
	if c.Networking.QueryRate > 0 && c.Networking.QueryBurst <= 0 {
		errs = append(errs, invalid("config: networking.query_burst must be positive when query_rate is set, got %d",
			c.Networking.QueryBurst))
	}

	return errs
}

func (c *Config) validateTable() []error {
	var errs []error

	if c.Table.PageSize <= 0 {
		errs = append(errs, invalid("config: table.page_size must be greater than 0, got %d", c.Table.PageSize))
	} else if len(c.Table.PageSizes) > 0 && !slices.Contains(c.Table.PageSizes, c.Table.PageSize) {
		errs = append(errs, invalid("config: table.page_size %d must be one of table.page_sizes %v",
			c.Table.PageSize, c.Table.PageSizes,
		))
	}
	for i, n := range c.Table.PageSizes {
		if n <= 0 {
			errs = append(errs, invalid("config: table.page_sizes[%d] must be greater than 0, got %d", i, n))
		}
	}
	if c.Table.AvailableWidth <= 0 {
		errs = append(errs, invalid("config: table.available_width must be greater than 0, got %d", c.Table.AvailableWidth))
	}
	if c.Table.MinColumnWidth <= 0 {
		errs = append(errs, invalid("config: table.min_column_width must be greater than 0, got %d", c.Table.MinColumnWidth))
	}
	if c.Table.MinDragWidth <= 0 {
		errs = append(errs, invalid("config: table.min_drag_width must be greater than 0, got %d", c.Table.MinDragWidth))
	}

	return errs
}

func (c *Config) validateGraph() []error {
	var errs []error

	if _, err := surface.ParseLayout(c.Graph.Layout); err != nil || c.Graph.Layout == "" {
		errs = append(errs, invalid("config: graph.layout must be one of %v, got %q", layoutNames(), c.Graph.Layout))
	}
	fallback, err := surface.ParseLayout(c.Graph.FallbackLayout)
	if err != nil || c.Graph.FallbackLayout == "" {
		errs = append(errs, invalid("config: graph.fallback_layout must be one of %v, got %q", layoutNames(), c.Graph.FallbackLayout))
	} else if fallback == surface.LayoutCoseBilkent {
		errs = append(errs, invalid("config: graph.fallback_layout must be a built-in layout, got %q", c.Graph.FallbackLayout))
	}
	if c.Graph.ProbeTimeout < 0 {
		errs = append(errs, invalid("config: graph.probe_timeout must not be negative, got %s", c.Graph.ProbeTimeout))
	}
	if c.Graph.ZoomStep <= 1 {
		errs = append(errs, invalid("config: graph.zoom_step must be greater than 1, got %g", c.Graph.ZoomStep))
	}
	if c.Graph.WheelSensitivity <= 0 {
		errs = append(errs, invalid("config: graph.wheel_sensitivity must be greater than 0, got %g", c.Graph.WheelSensitivity))
	}
	if c.Graph.ImageWidth <= 0 || c.Graph.ImageHeight <= 0 {
		errs = append(errs, invalid("config: graph.image_width and graph.image_height must be greater than 0, got %dx%d",
			c.Graph.ImageWidth, c.Graph.ImageHeight,
		))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, invalid("config: storage.backend must be one of [sqlite, memory], got %q", c.Storage.Backend))
	}
	if c.Storage.HistoryLimit < 0 {
		errs = append(errs, invalid("config: storage.history_limit must not be negative, got %d", c.Storage.HistoryLimit))
	}

	return errs
}

func layoutNames() []string {
	opts := surface.LayoutOptions()
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = string(o.Value)
	}
	return names
}
