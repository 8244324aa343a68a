// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sigil-dev/sparqlboard/internal/config"
	"github.com/sigil-dev/sparqlboard/internal/secrets"
	"github.com/sigil-dev/sparqlboard/internal/sparql"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// initHTTPClient is the HTTP client used for endpoint validation.
// Exposed as a variable so tests can replace it.
var initHTTPClient = &http.Client{Timeout: 10 * time.Second}

// AuthMode is how the endpoint authenticates requests.
type AuthMode string

const (
	AuthNone  AuthMode = "none"
	AuthBasic AuthMode = "basic"
	AuthToken AuthMode = "token"
)

var supportedAuthModes = []AuthMode{AuthNone, AuthBasic, AuthToken}

// Keyring entries written by init.
const (
	passwordSecret = "endpoint-password"
	tokenSecret    = "endpoint-token"
)

// initWizardStep tracks which step of the wizard is active.
type initWizardStep int

const (
	stepEndpoint initWizardStep = iota // enter endpoint URL
	stepAuth                           // select auth mode
	stepUsername                       // enter basic auth user
	stepSecret                         // enter password or token
	stepValidate                       // validating endpoint (spinner)
	stepDone                           // wizard complete
	stepError                          // terminal error
)

// initResult holds the collected wizard configuration.
type initResult struct {
	Endpoint string
	Auth     AuthMode
	Username string
	// Secret is the password or token, depending on Auth.
	Secret string
}

// --- bubbletea messages ---

type (
	validationSuccessMsg struct{}
	validationErrorMsg   struct{ err error }
)
type configWrittenMsg struct{ path string }

// --- lipgloss styles ---

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

// initModel is the bubbletea model for the init wizard.
type initModel struct {
	step           initWizardStep
	authIdx        int
	endpointInput  textinput.Model
	usernameInput  textinput.Model
	secretInput    textinput.Model
	spinner        spinner.Model
	result         initResult
	validationErr  string
	configPath     string
	secretStore    secrets.Store
	errFinal       error
	skipValidate   bool
	forceOverwrite bool
}

func newInitModel(store secrets.Store) initModel {
	endpoint := textinput.New()
	endpoint.Placeholder = sparql.DefaultEndpoint
	endpoint.SetValue(sparql.DefaultEndpoint)
	endpoint.Focus()

	username := textinput.New()
	username.Placeholder = "username"

	secret := textinput.New()
	secret.EchoMode = textinput.EchoPassword
	secret.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return initModel{
		step:          stepEndpoint,
		endpointInput: endpoint,
		usernameInput: username,
		secretInput:   secret,
		spinner:       sp,
		secretStore:   store,
	}
}

func (m initModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case validationSuccessMsg:
		return m, writeConfigCmd(m.result, m.secretStore, m.forceOverwrite)

	case validationErrorMsg:
		// Back to the endpoint: a bad URL and bad credentials look the same
		// to most endpoints.
		m.validationErr = msg.err.Error()
		m.step = stepEndpoint
		m.endpointInput.Focus()
		return m, textinput.Blink

	case configWrittenMsg:
		m.step = stepDone
		m.configPath = msg.path
		return m, tea.Quit

	case error:
		m.step = stepError
		m.errFinal = msg
		return m, tea.Quit
	}

	return m.updateInputs(msg)
}

func (m initModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.step {
	case stepEndpoint:
		return m.handleEndpointInput(msg)
	case stepAuth:
		return m.handleAuthKey(msg)
	case stepUsername:
		return m.handleUsernameInput(msg)
	case stepSecret:
		return m.handleSecretInput(msg)
	}
	return m, nil
}

func (m initModel) handleEndpointInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.endpointInput, cmd = m.endpointInput.Update(msg)
		return m, cmd
	}

	endpoint := strings.TrimSpace(m.endpointInput.Value())
	if endpoint == "" {
		endpoint = sparql.DefaultEndpoint
	}
	if _, err := sparql.New(sparql.Options{Endpoint: endpoint}); err != nil {
		m.validationErr = err.Error()
		return m, nil
	}
	m.result.Endpoint = endpoint
	m.validationErr = ""
	m.endpointInput.Blur()
	m.step = stepAuth
	return m, nil
}

func (m initModel) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.authIdx > 0 {
			m.authIdx--
		}
	case "down", "j":
		if m.authIdx < len(supportedAuthModes)-1 {
			m.authIdx++
		}
	case "enter":
		m.result.Auth = supportedAuthModes[m.authIdx]
		switch m.result.Auth {
		case AuthBasic:
			m.step = stepUsername
			m.usernameInput.Focus()
			return m, textinput.Blink
		case AuthToken:
			m.step = stepSecret
			m.secretInput.Placeholder = "paste bearer token here"
			m.secretInput.Focus()
			return m, textinput.Blink
		default:
			return m.finish()
		}
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m initModel) handleUsernameInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.usernameInput, cmd = m.usernameInput.Update(msg)
		return m, cmd
	}
	user := strings.TrimSpace(m.usernameInput.Value())
	if user == "" {
		m.validationErr = "username must not be empty"
		return m, nil
	}
	m.result.Username = user
	m.validationErr = ""
	m.usernameInput.Blur()
	m.step = stepSecret
	m.secretInput.Placeholder = "password"
	m.secretInput.Focus()
	return m, textinput.Blink
}

func (m initModel) handleSecretInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.secretInput, cmd = m.secretInput.Update(msg)
		return m, cmd
	}
	secret := m.secretInput.Value()
	if strings.TrimSpace(secret) == "" {
		m.validationErr = string(m.result.Auth) + " secret must not be empty"
		return m, nil
	}
	m.result.Secret = secret
	m.validationErr = ""
	m.secretInput.Blur()
	return m.finish()
}

// finish validates the endpoint unless skipped, then writes the config.
func (m initModel) finish() (tea.Model, tea.Cmd) {
	if m.skipValidate {
		return m, writeConfigCmd(m.result, m.secretStore, m.forceOverwrite)
	}
	m.step = stepValidate
	return m, tea.Batch(m.spinner.Tick, validateEndpointCmd(m.result))
}

func (m initModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.step {
	case stepEndpoint:
		m.endpointInput, cmd = m.endpointInput.Update(msg)
	case stepUsername:
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	case stepSecret:
		m.secretInput, cmd = m.secretInput.Update(msg)
	}
	return m, cmd
}

func (m initModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  sparqlboard setup  ") + "\n\n")

	errLine := func() {
		if m.validationErr != "" {
			b.WriteString("\n" + errorStyle.Render("  "+m.validationErr) + "\n")
		}
	}

	switch m.step {
	case stepEndpoint:
		b.WriteString(promptStyle.Render("Step 1/2: SPARQL endpoint URL") + "\n\n")
		b.WriteString(m.endpointInput.View() + "\n")
		errLine()
		b.WriteString("\n" + dimStyle.Render("enter to continue  ctrl+c to quit"))

	case stepAuth:
		b.WriteString(promptStyle.Render("Step 2/2: How does "+m.result.Endpoint+" authenticate?") + "\n\n")
		for i, a := range supportedAuthModes {
			if i == m.authIdx {
				b.WriteString(selectedStyle.Render("  > "+string(a)) + "\n")
			} else {
				b.WriteString(dimStyle.Render("    "+string(a)) + "\n")
			}
		}
		b.WriteString("\n" + dimStyle.Render("↑/↓ to navigate  enter to select  q to quit"))

	case stepUsername:
		b.WriteString(promptStyle.Render("Step 2/2: Basic auth username") + "\n\n")
		b.WriteString(m.usernameInput.View() + "\n")
		errLine()
		b.WriteString("\n" + dimStyle.Render("enter to continue  ctrl+c to quit"))

	case stepSecret:
		label := "Bearer token"
		if m.result.Auth == AuthBasic {
			label = "Password for " + m.result.Username
		}
		b.WriteString(promptStyle.Render("Step 2/2: "+label) + "\n\n")
		b.WriteString(m.secretInput.View() + "\n")
		errLine()
		b.WriteString("\n" + dimStyle.Render("stored in the OS keyring  enter to continue  ctrl+c to quit"))

	case stepValidate:
		b.WriteString(m.spinner.View() + " Asking " + m.result.Endpoint + "…\n")

	case stepDone:
		b.WriteString(successStyle.Render("  Setup complete!  ") + "\n\n")
		if m.configPath != "" {
			b.WriteString(dimStyle.Render("Config written to: "+m.configPath) + "\n\n")
		}
		b.WriteString("Run " + promptStyle.Render("sparqlboard explore") + " or " + promptStyle.Render("sparqlboard serve") + " to get started.\n")
		b.WriteString("Run " + promptStyle.Render("sparqlboard doctor") + " to verify setup.\n")

	case stepError:
		b.WriteString(errorStyle.Render("Setup failed: "+m.errFinal.Error()) + "\n")
	}

	return boxStyle.Render(b.String())
}

// --- tea.Cmd factories ---

func validateEndpointCmd(result initResult) tea.Cmd {
	return func() tea.Msg {
		if err := validateEndpoint(context.Background(), result); err != nil {
			return validationErrorMsg{err: err}
		}
		return validationSuccessMsg{}
	}
}

func writeConfigCmd(result initResult, store secrets.Store, forceOverwrite bool) tea.Cmd {
	return func() tea.Msg {
		path, err := storeSecretAndWriteConfig(result, store, forceOverwrite)
		if err != nil {
			return err
		}
		return configWrittenMsg{path: path}
	}
}

// validateEndpoint sends an ASK query with the collected credentials.
func validateEndpoint(ctx context.Context, result initResult) error {
	opts := sparql.Options{Endpoint: result.Endpoint, HTTPClient: initHTTPClient}
	switch result.Auth {
	case AuthBasic:
		opts.Username, opts.Password = result.Username, result.Secret
	case AuthToken:
		opts.Token = result.Secret
	}
	client, err := sparql.New(opts)
	if err != nil {
		return err
	}
	_, err = client.Execute(ctx, pingQuery)
	return err
}

// --- Config generation ---

type initEndpointYAML struct {
	URL      string `yaml:"url"`
	Timeout  string `yaml:"timeout"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

type initConfigYAML struct {
	Endpoint   initEndpointYAML `yaml:"endpoint"`
	Networking struct {
		Listen string `yaml:"listen"`
	} `yaml:"networking"`
	Storage struct {
		Backend      string `yaml:"backend"`
		DSN          string `yaml:"dsn"`
		HistoryLimit int    `yaml:"history_limit"`
	} `yaml:"storage"`
}

// GenerateConfigYAML produces a minimal sparqlboard.yaml from the wizard
// result. Secrets are referenced via keyring:// URIs under service; the
// values themselves are stored by storeSecretAndWriteConfig. historyDSN is
// the sqlite file that keeps query history across runs.
func GenerateConfigYAML(result initResult, service, historyDSN string) (string, error) {
	var doc initConfigYAML
	doc.Endpoint = initEndpointYAML{URL: result.Endpoint, Timeout: sparql.DefaultTimeout.String()}
	switch result.Auth {
	case AuthBasic:
		doc.Endpoint.Username = result.Username
		doc.Endpoint.Password = secrets.URI(service, passwordSecret)
	case AuthToken:
		doc.Endpoint.Token = secrets.URI(service, tokenSecret)
	}
	doc.Networking.Listen = defaultServerAddress
	doc.Storage.Backend = "sqlite"
	doc.Storage.DSN = historyDSN
	doc.Storage.HistoryLimit = 100

	body, err := yaml.Marshal(&doc)
	if err != nil {
		return "", sberr.Errorf(sberr.CodeCLISetupFailure, "encoding config: %w", err)
	}
	return "# sparqlboard configuration, generated by sparqlboard init\n" +
		"# Every other key takes its default; see sparqlboard doctor.\n\n" + string(body), nil
}

// storeSecretAndWriteConfig saves the credential to the OS keyring and writes
// the config YAML to the default config path.
//
// When forceOverwrite is false and the config file already exists, an error is
// returned asking the user to pass --force.
func storeSecretAndWriteConfig(result initResult, store secrets.Store, forceOverwrite bool) (string, error) {
	cfgPath, err := configPathForWrite()
	if err != nil {
		return "", err
	}
	if !forceOverwrite {
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			return "", sberr.Errorf(sberr.CodeConfigAlreadyExists,
				"config file already exists at %s; use --force to overwrite", cfgPath)
		}
	}

	// A stored secret is not rolled back if the config write fails; a
	// successful re-run overwrites it.
	switch result.Auth {
	case AuthBasic:
		if err := store.Set(passwordSecret, result.Secret); err != nil {
			return "", sberr.Errorf(sberr.CodeSecretStoreFailure, "storing endpoint password: %w", err)
		}
	case AuthToken:
		if err := store.Set(tokenSecret, result.Secret); err != nil {
			return "", sberr.Errorf(sberr.CodeSecretStoreFailure, "storing endpoint token: %w", err)
		}
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", sberr.Errorf(sberr.CodeConfigLoadReadFailure, "creating config directory %s: %w", dir, err)
	}

	doc, err := GenerateConfigYAML(result, store.Service(), filepath.Join(dir, "history.db"))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cfgPath, []byte(doc), 0o600); err != nil {
		return "", sberr.Errorf(sberr.CodeConfigLoadReadFailure, "writing config to %s: %w", cfgPath, err)
	}

	return cfgPath, nil
}

// configPathForWrite returns the config path init writes to. It is a
// variable so tests can override it.
var configPathForWrite = config.DefaultConfigPath

// --- Cobra command ---

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the endpoint and credentials",
		Long: `Run an interactive wizard that asks for:
  1. The SPARQL endpoint URL
  2. How the endpoint authenticates (none, basic auth, or a bearer token)

Passwords and tokens are stored in the OS keyring and referenced via
keyring:// URIs in the config file. No secrets are written in plain text.

Pass --endpoint to skip the wizard; the password or token is then read
from stdin.`,
		RunE: runInit,
	}

	cmd.Flags().Bool("force", false, "overwrite an existing config file")
	cmd.Flags().Bool("skip-validate", false, "do not send a test query to the endpoint")
	cmd.Flags().String("endpoint", "", "endpoint URL; runs without the wizard")
	cmd.Flags().String("auth", string(AuthNone), "with --endpoint: none, basic, or token")
	cmd.Flags().String("username", "", "with --endpoint and --auth basic: the username")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	forceOverwrite, _ := cmd.Flags().GetBool("force")
	skipValidate, _ := cmd.Flags().GetBool("skip-validate")
	store := secretStoreFactory()

	if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
		return runInitNonInteractive(cmd, endpoint, store, skipValidate, forceOverwrite)
	}

	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(f) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(),
			"sparqlboard init requires an interactive terminal.\n"+
				"Pass --endpoint to configure sparqlboard non-interactively.")
		return sberr.New(sberr.CodeCLISetupFailure, "sparqlboard init: not an interactive terminal")
	}

	m := newInitModel(store)
	m.skipValidate = skipValidate
	m.forceOverwrite = forceOverwrite

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return sberr.Errorf(sberr.CodeCLISetupFailure, "init wizard error: %w", err)
	}

	fm, ok := finalModel.(initModel)
	if !ok {
		return sberr.New(sberr.CodeCLISetupFailure, "unexpected model type after wizard")
	}
	if fm.errFinal != nil {
		return sberr.Errorf(sberr.CodeCLISetupFailure, "init failed: %w", fm.errFinal)
	}
	if fm.step == stepDone {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", fm.configPath)
	}
	return nil
}

func runInitNonInteractive(cmd *cobra.Command, endpoint string, store secrets.Store, skipValidate, force bool) error {
	authFlag, _ := cmd.Flags().GetString("auth")
	username, _ := cmd.Flags().GetString("username")
	result := initResult{Endpoint: endpoint, Auth: AuthMode(authFlag), Username: username}

	switch result.Auth {
	case AuthNone:
	case AuthBasic, AuthToken:
		if result.Auth == AuthBasic && username == "" {
			return sberr.New(sberr.CodeCLIInputInvalid, "--auth basic needs --username")
		}
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		result.Secret = strings.TrimRight(line, "\r\n")
		if result.Secret == "" {
			return sberr.Errorf(sberr.CodeCLIInputInvalid, "--auth %s reads the secret from stdin, got nothing", result.Auth)
		}
	default:
		return sberr.Errorf(sberr.CodeCLIInputInvalid, "unknown auth mode %q", authFlag)
	}

	if _, err := sparql.New(sparql.Options{Endpoint: endpoint}); err != nil {
		return err
	}
	if !skipValidate {
		if err := validateEndpoint(cmd.Context(), result); err != nil {
			return sberr.Wrapf(err, sberr.CodeCLISetupFailure, "validating %s", endpoint)
		}
	}

	path, err := storeSecretAndWriteConfig(result, store, force)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
	return nil
}

// isTerminal reports whether f is a terminal file descriptor.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
