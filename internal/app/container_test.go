package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nlsh/internal/domain"
)

type declineAll struct{}

func (declineAll) Confirm(context.Context, domain.ConfirmationRequest) (bool, error) {
	return false, nil
}

func buildInTempHome(t *testing.T, configYAML string) *Container {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "config.yaml")
	if configYAML != "" {
		require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))
	}

	c, err := BuildContainer(context.Background(), Options{ConfigPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })
	return c
}

func TestBuildContainerWiresDefaults(t *testing.T) {
	c := buildInTempHome(t, "")

	assert.Equal(t, []string{"anthropic", "openai", "gemini", "local"}, c.Policy.Order())
	assert.NotEmpty(t, c.Classifier.Rules())
	assert.NotEmpty(t, c.Shell.Binary)
	assert.NotNil(t, c.HistoryStore)
	assert.NotNil(t, c.DoctorService)

	ctrl, err := c.NewPipeline(UI{Prompter: declineAll{}})
	require.NoError(t, err)
	assert.Nil(t, ctrl.LastFailure())
}

func TestBuildContainerHistoryDisabled(t *testing.T) {
	c := buildInTempHome(t, "history:\n  enabled: false\n")
	assert.Nil(t, c.HistoryStore)
	assert.Nil(t, c.DoctorService.History)
}

func TestNewPipelineRejectsInvalidConfig(t *testing.T) {
	c := buildInTempHome(t, "confirm:\n  style: fancy\n")

	_, err := c.NewPipeline(UI{Prompter: declineAll{}})
	assert.ErrorIs(t, err, domain.ErrConfigLoad)
	assert.ErrorContains(t, err, "confirm.style")
}

func TestNewPipelineNeedsPrompter(t *testing.T) {
	c := buildInTempHome(t, "")
	_, err := c.NewPipeline(UI{})
	assert.Error(t, err)
}
