// Package clitest runs fm-cli commands against a fake API in tests.
package clitest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/fakeapi"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/session"
)

// Harness owns a fake API and a private config directory.
type Harness struct {
	API        *fakeapi.Server
	Dir        string
	ConfigFile string

	t        *testing.T
	commands []func() *cobra.Command
}

// New starts a fake API and writes a config pointing at it. commands are
// the subcommand constructors to mount under the root for every Run.
func New(t *testing.T, commands ...func() *cobra.Command) *Harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{"FM_API_BASE_URL", "NEXT_PUBLIC_API_URL", "FM_OUTPUT_FORMAT", "FM_LOG_LEVEL", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	h := &Harness{
		API:      fakeapi.New(t),
		Dir:      dir,
		t:        t,
		commands: commands,
	}
	h.ConfigFile = filepath.Join(dir, "config.yaml")
	h.WriteConfig("")
	return h
}

// WriteConfig rewrites the config file; extra is appended verbatim.
func (h *Harness) WriteConfig(extra string) {
	h.t.Helper()
	cfg := fmt.Sprintf(`log:
  level: error
api:
  base_url: %s
session:
  file: %s
snapshot:
  enabled: true
  file: %s
output:
  per_page: 5
%s`, h.API.BaseURL(), h.SessionFile(), filepath.Join(h.Dir, "snapshot.db"), extra)
	require.NoError(h.t, os.WriteFile(h.ConfigFile, []byte(cfg), 0o600))
}

// SessionFile is where the CLI keeps the session.
func (h *Harness) SessionFile() string {
	return filepath.Join(h.Dir, "session.yaml")
}

// SignIn registers email with the fake API and stores a valid session
// for it, as a previous `auth login` would have.
func (h *Harness) SignIn(email string) models.AuthResponse {
	h.t.Helper()
	h.API.AddUser("Test User", email, "correct-horse")
	resp := h.API.IssueSession(email)
	svc, err := session.NewService(session.NewFileStorage(h.SessionFile()), nil)
	require.NoError(h.t, err)
	require.NoError(h.t, svc.Login(resp))
	return resp
}

// Session reloads the stored session.
func (h *Harness) Session() *session.Service {
	h.t.Helper()
	svc, err := session.NewService(session.NewFileStorage(h.SessionFile()), nil)
	require.NoError(h.t, err)
	return svc
}

// Command builds a fresh command tree.
func (h *Harness) Command() *cobra.Command {
	cmd := root.NewCommand()
	for _, build := range h.commands {
		cmd.AddCommand(build())
	}
	return cmd
}

// Run executes args with stdin and returns what was printed.
func (h *Harness) Run(stdin string, args ...string) (string, error) {
	cmd := h.Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.ConfigFile}, args...))
	cmd.SetContext(context.Background())
	err := root.Execute(cmd)
	return out.String(), err
}
