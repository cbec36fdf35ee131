// Package commands holds the nlsh subcommands that inspect and maintain the
// installation: config, history, doctor, rules and backends.
package commands

import (
	"context"

	"github.com/doeshing/nlsh/internal/app"
	"github.com/doeshing/nlsh/internal/infrastructure/config"
)

// Deps gives commands lazy access to the container. Config commands use the
// loader directly so they keep working when the file does not parse.
type Deps struct {
	Container func(context.Context) (*app.Container, error)
	Loader    func() *config.FileLoader
}

// Error messages
const (
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
)
