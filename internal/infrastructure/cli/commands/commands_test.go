package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nlsh/internal/app"
	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/infrastructure/config"
)

type harness struct {
	deps       *Deps
	configPath string
	container  *app.Container
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NLSH_CONFIG", "")
	for _, name := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(name, "")
	}

	h := &harness{configPath: filepath.Join(home, ".nlsh", "config.yaml")}
	h.deps = &Deps{
		Container: func(ctx context.Context) (*app.Container, error) {
			if h.container != nil {
				return h.container, nil
			}
			c, err := app.BuildContainer(ctx, app.Options{ConfigPath: h.configPath})
			if err != nil {
				return nil, err
			}
			h.container = c
			t.Cleanup(func() { _ = c.Close() })
			return c, nil
		},
		Loader: func() *config.FileLoader { return config.NewFileLoader(h.configPath) },
	}
	return h
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		// cobra falls back to os.Args when args is nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRulesCheck(t *testing.T) {
	h := newHarness(t)

	out, err := run(t, NewRulesCommand(h.deps), "check", "rm", "-rf", "/")
	require.NoError(t, err)
	assert.Contains(t, out, "risk: dangerous")
	assert.Contains(t, out, "rule: ")

	out, err = run(t, NewRulesCommand(h.deps), "check", "ls -la")
	require.NoError(t, err)
	assert.Equal(t, "risk: safe\n", out)
}

func TestRulesList(t *testing.T) {
	h := newHarness(t)
	out, err := run(t, NewRulesCommand(h.deps), "list")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	out, err := run(t, NewConfigCommand(h.deps), "path")
	require.NoError(t, err)
	assert.Equal(t, h.configPath+"\n", out)

	out, err = run(t, NewConfigCommand(h.deps), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, MsgConfigurationValid)
	assert.FileExists(t, h.configPath, "first load writes the default file")

	out, err = run(t, NewConfigCommand(h.deps), "diff")
	require.NoError(t, err)
	assert.Contains(t, out, MsgNoDifferencesFromDefault)

	require.NoError(t, os.WriteFile(h.configPath, []byte("preferences:\n  default_backend: local\n"), 0o600))
	out, err = run(t, NewConfigCommand(h.deps), "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "local")

	out, err = run(t, NewConfigCommand(h.deps), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_backend: local")

	require.NoError(t, os.WriteFile(h.configPath, []byte("fallback:\n  policy: random\n"), 0o600))
	_, err = run(t, NewConfigCommand(h.deps), "validate")
	assert.ErrorContains(t, err, "fallback.policy")

	out, err = run(t, NewConfigCommand(h.deps), "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration reset")
	_, err = run(t, NewConfigCommand(h.deps), "validate")
	require.NoError(t, err)
}

func TestHistoryCommands(t *testing.T) {
	h := newHarness(t)

	out, err := run(t, NewHistoryCommand(h.deps), "list")
	require.NoError(t, err)
	assert.Contains(t, out, MsgNoHistoryRecorded)

	c, err := h.deps.Container(context.Background())
	require.NoError(t, err)
	require.NotNil(t, c.HistoryStore)

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	outcome := domain.Executed(0)
	outcome.TurnID = "01HTURN"
	outcome.Backend = "anthropic"
	outcome.Suggestion = &domain.CommandSuggestion{Command: "ls -a"}
	require.NoError(t, c.HistoryStore.Save(context.Background(),
		domain.NewTurnRecord("list hidden files", outcome, started, started.Add(time.Second))))

	out, err = run(t, NewHistoryCommand(h.deps), "search", "hidden")
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic | executed | list hidden files | ls -a")

	dest := filepath.Join(t.TempDir(), "export.jsonl")
	out, err = run(t, NewHistoryCommand(h.deps), "export", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 records")
	assert.FileExists(t, dest)

	_, err = run(t, NewHistoryCommand(h.deps), "clear")
	require.NoError(t, err)
	out, err = run(t, NewHistoryCommand(h.deps), "list")
	require.NoError(t, err)
	assert.Contains(t, out, MsgNoHistoryRecorded)
}

func TestBackendsList(t *testing.T) {
	h := newHarness(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	out, err := run(t, NewBackendsCommand(h.deps))
	require.NoError(t, err)
	assert.Contains(t, out, "ORDER")
	assert.Regexp(t, `1\s+anthropic\s+anthropic.*missing \(ANTHROPIC_API_KEY\)`, out)
	assert.Regexp(t, `2\s+openai\s+openai.*set`, out)
	assert.Regexp(t, `4\s+local\s+local.*not needed`, out)
}

func TestBackendsTestUnknown(t *testing.T) {
	h := newHarness(t)
	_, err := run(t, NewBackendsCommand(h.deps), "test", "nope")
	assert.ErrorIs(t, err, domain.ErrBackendNotFound)
}
