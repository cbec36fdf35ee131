package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/doeshing/nlsh/internal/infrastructure/cli"
	"github.com/doeshing/nlsh/internal/pkg/filesystem"
)

func main() {
	os.Exit(run())
}

func run() int {
	loadEnvFiles()

	// Interrupts are handled per turn by the cli package; only SIGTERM ends
	// the whole process here.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	root, closeSession := cli.NewRootCmd(cli.Options{Debug: isDebug()})
	err := root.ExecuteContext(ctx)
	if cerr := closeSession(); cerr != nil && isDebug() {
		fmt.Fprintln(os.Stderr, "close:", cerr)
	}

	var exitErr *cli.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
}

// loadEnvFiles reads API keys from ./.env and ~/.nlsh/.env. Variables that
// are already set win, and missing files are fine.
func loadEnvFiles() {
	for _, path := range []string{".env", filepath.Join(filesystem.AppDir(), ".env")} {
		_ = godotenv.Load(path)
	}
}

func isDebug() bool {
	value := os.Getenv("NLSH_DEBUG")
	return strings.EqualFold(value, "1") || strings.EqualFold(value, "true")
}
