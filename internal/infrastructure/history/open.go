package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/pkg/filesystem"
	"github.com/doeshing/nlsh/internal/ports"
)

const (
	defaultDBName   = "history.db"
	defaultJSONName = "history.jsonl"
)

// Open returns the sqlite store for settings, falling back to a jsonl file
// next to it when the database cannot be opened.
func Open(ctx context.Context, settings domain.HistorySettings, logger ports.Logger) (ports.HistoryRepository, error) {
	path := settings.Path
	if path == "" {
		path = filepath.Join(filesystem.AppDir(), defaultDBName)
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return NewFileStore(path), nil
	}

	store, err := OpenSQLite(ctx, path)
	if err == nil {
		return store, nil
	}

	fallback := strings.TrimSuffix(path, filepath.Ext(path)) + filepath.Ext(defaultJSONName)
	logger.Warn("history database unavailable, using jsonl file", map[string]interface{}{
		"path":     path,
		"fallback": fallback,
		"error":    err.Error(),
	})
	return NewFileStore(fallback), nil
}

// ExportJSON writes every record, oldest first, to dest as jsonl.
func ExportJSON(ctx context.Context, repo ports.HistoryRepository, dest string) (int, error) {
	records, err := repo.Records(ctx, 0, "")
	if err != nil {
		return 0, err
	}
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for i := len(records) - 1; i >= 0; i-- {
		if err := encoder.Encode(records[i]); err != nil {
			return 0, fmt.Errorf("export history: %w", err)
		}
	}
	return len(records), nil
}
