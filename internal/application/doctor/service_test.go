package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

type staticConfig struct {
	cfg domain.Config
	err error
}

func (s staticConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type keywordClassifier struct{}

func (keywordClassifier) Classify(command string) domain.RiskAssessment {
	if strings.HasPrefix(command, "rm -rf") {
		return domain.RiskAssessment{Level: domain.RiskDangerous, MatchedRule: "recursive-delete"}
	}
	return domain.RiskAssessment{Level: domain.RiskSafe}
}

type fixedDetector struct{}

func (fixedDetector) Detect(context.Context, domain.Config) domain.ShellContext {
	return domain.ShellContext{Family: domain.ShellPOSIX, OS: domain.OSLinux, Binary: "/bin/bash"}
}

type pingBackend struct{ err error }

func (pingBackend) Name() string             { return "local" }
func (pingBackend) Kind() domain.BackendKind { return domain.BackendLocal }
func (pingBackend) Generate(context.Context, ports.GenerateRequest) (string, error) {
	return "", nil
}
func (p pingBackend) Ping(context.Context) error { return p.err }

type pingFactory struct{ err error }

func (f pingFactory) ForBackend(domain.BackendDefinition) (ports.Backend, error) {
	return pingBackend{err: f.err}, nil
}

func doctorConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences:         domain.Preferences{DefaultBackend: "anthropic", FallbackOrder: []string{"local"}},
		Backends: []domain.BackendDefinition{
			{Name: "anthropic", Kind: domain.BackendAnthropic},
			{Name: "local", Kind: domain.BackendLocal},
		},
	}
}

func findCheck(t *testing.T, report domain.HealthReport, prefix string) domain.HealthCheck {
	t.Helper()
	for _, check := range report.Checks {
		if strings.HasPrefix(check.Name, prefix) {
			return check
		}
	}
	t.Fatalf("no check named %q in %+v", prefix, report.Checks)
	return domain.HealthCheck{}
}

func TestDoctorHealthy(t *testing.T) {
	svc := &Service{
		ConfigProvider: staticConfig{cfg: doctorConfig()},
		Classifier:     keywordClassifier{},
		ShellDetector:  fixedDetector{},
		Backends:       pingFactory{},
		HasCredentials: func(domain.BackendDefinition) bool { return true },
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.HasErrors())
	assert.Equal(t, domain.HealthOK, findCheck(t, report, "Config file").Status)
	assert.Contains(t, findCheck(t, report, "Config file").Details, "anthropic > local")
	assert.Contains(t, findCheck(t, report, "Safety rules").Details, "recursive-delete")
	assert.Contains(t, findCheck(t, report, "Shell").Details, "bash/sh")
	assert.Equal(t, domain.HealthOK, findCheck(t, report, "Backend local").Status)
}

func TestDoctorWarnsOnMissingKeyAndUnreachableLocal(t *testing.T) {
	svc := &Service{
		ConfigProvider: staticConfig{cfg: doctorConfig()},
		Classifier:     keywordClassifier{},
		Backends:       pingFactory{err: errors.New("connection refused")},
		HasCredentials: func(domain.BackendDefinition) bool { return false },
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	cloud := findCheck(t, report, "Backend anthropic")
	assert.Equal(t, domain.HealthWarn, cloud.Status)
	assert.Contains(t, cloud.Details, "ANTHROPIC_API_KEY")
	local := findCheck(t, report, "Backend local")
	assert.Equal(t, domain.HealthWarn, local.Status)
	assert.Contains(t, local.Details, "connection refused")
}

func TestDoctorConfigLoadFailure(t *testing.T) {
	svc := &Service{ConfigProvider: staticConfig{err: domain.ErrConfigLoad}}
	report, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfigLoad)
	assert.True(t, report.HasErrors())
}

type lenientClassifier struct{}

func (lenientClassifier) Classify(string) domain.RiskAssessment {
	return domain.RiskAssessment{Level: domain.RiskSafe}
}

func TestDoctorFailsWhenRulesMissing(t *testing.T) {
	svc := &Service{ConfigProvider: staticConfig{cfg: doctorConfig()}, Classifier: lenientClassifier{}}
	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthError, findCheck(t, report, "Safety rules").Status)
}
