// Package doctor runs environment diagnostics for `nlsh doctor`.
package doctor

import (
	"context"
	"fmt"
	"strings"

	appconfig "github.com/doeshing/nlsh/internal/application/config"
	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// canaryCommand must always classify as dangerous; if it does not, the
// rule set did not load.
const canaryCommand = "rm -rf /"

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Classifier     ports.SafetyClassifier
	ShellDetector  ports.ShellDetector
	Backends       ports.BackendFactory
	History        ports.HistoryRepository
	// HasCredentials reports whether a backend's API key is present.
	HasCredentials func(domain.BackendDefinition) bool
}

// Run executes checks and returns a report. The error is only set when the
// configuration itself cannot be loaded.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", strings.ReplaceAll(err.Error(), "\n", "; ")))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format %s, preference order %s", cfg.ConfigFormatVersion, strings.Join(cfg.PreferenceOrder(), " > "))))
	}

	checks = append(checks, s.rulesCheck())
	if s.ShellDetector != nil {
		shell := s.ShellDetector.Detect(ctx, cfg)
		checks = append(checks, ok("Shell", fmt.Sprintf("%s via %s on %s", shell.Family.DisplayName(), shell.Binary, shell.OS)))
	}

	for _, def := range cfg.Backends {
		checks = append(checks, s.backendCheck(ctx, def))
	}

	if s.History != nil {
		if _, err := s.History.Records(ctx, 1, ""); err != nil {
			checks = append(checks, warn("History", err.Error()))
		} else {
			checks = append(checks, ok("History", "store readable"))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) rulesCheck() domain.HealthCheck {
	if s.Classifier == nil {
		return warn("Safety rules", "classifier not initialized")
	}
	verdict := s.Classifier.Classify(canaryCommand)
	if !verdict.IsDangerous() {
		return fail("Safety rules", fmt.Sprintf("%q was not classified as dangerous", canaryCommand))
	}
	return ok("Safety rules", "loaded (canary matched "+verdict.MatchedRule+")")
}

func (s *Service) backendCheck(ctx context.Context, def domain.BackendDefinition) domain.HealthCheck {
	name := fmt.Sprintf("Backend %s (%s)", def.Name, def.Kind)

	if def.Kind.IsCloud() {
		if s.HasCredentials != nil && !s.HasCredentials(def) {
			return warn(name, fmt.Sprintf("no API key, set %s", strings.Join(def.AuthEnvVars(), " or ")))
		}
		return ok(name, "API key present, model "+def.ResolvedModel())
	}

	if s.Backends == nil {
		return warn(name, "backend factory not initialized")
	}
	backend, err := s.Backends.ForBackend(def)
	if err != nil {
		return fail(name, err.Error())
	}
	pinger, canPing := backend.(ports.Pinger)
	if !canPing {
		return ok(name, "configured")
	}
	if err := pinger.Ping(ctx); err != nil {
		return warn(name, err.Error())
	}
	return ok(name, fmt.Sprintf("reachable at %s, model %s", def.ResolvedEndpoint(), def.ResolvedModel()))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
