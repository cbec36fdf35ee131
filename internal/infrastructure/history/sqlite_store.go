// Package history persists completed pipeline turns.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS turns (
	id TEXT PRIMARY KEY,
	ts_unix_ms INTEGER NOT NULL,
	utterance TEXT NOT NULL,
	backend TEXT,
	command TEXT,
	risk_level TEXT,
	matched_rule TEXT,
	outcome TEXT NOT NULL,
	exit_code INTEGER,
	recovered INTEGER,
	escalated INTEGER,
	reason TEXT,
	duration_ms INTEGER
);
CREATE INDEX IF NOT EXISTS idx_turns_ts ON turns(ts_unix_ms);`

// SQLiteStore persists history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLite creates (or opens) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// One writer at a time keeps SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Save inserts a new record.
func (s *SQLiteStore) Save(ctx context.Context, record domain.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO turns
		(id, ts_unix_ms, utterance, backend, command, risk_level, matched_rule, outcome, exit_code, recovered, escalated, reason, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.UnixMilli(),
		record.Utterance,
		record.Backend,
		record.Command,
		string(record.RiskLevel),
		record.MatchedRule,
		string(record.Outcome),
		record.ExitCode,
		boolToInt(record.Recovered),
		boolToInt(record.Escalated),
		record.Reason,
		record.DurationMS,
	)
	return domain.WrapOp("save turn", err)
}

// Records returns history entries newest first (limit/search optional).
func (s *SQLiteStore) Records(ctx context.Context, limit int, search string) ([]domain.TurnRecord, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, ts_unix_ms, utterance, backend, command, risk_level, matched_rule,
		outcome, exit_code, recovered, escalated, reason, duration_ms FROM turns`)
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE utterance LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY ts_unix_ms DESC, id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, domain.WrapOp("query turns", err)
	}
	defer rows.Close()

	var records []domain.TurnRecord
	for rows.Next() {
		var (
			rec                  domain.TurnRecord
			tsMillis             int64
			risk, outcome        string
			recovered, escalated int
		)
		if err := rows.Scan(&rec.ID, &tsMillis, &rec.Utterance, &rec.Backend, &rec.Command, &risk, &rec.MatchedRule,
			&outcome, &rec.ExitCode, &recovered, &escalated, &rec.Reason, &rec.DurationMS); err != nil {
			return nil, err
		}
		rec.Timestamp = time.UnixMilli(tsMillis).UTC()
		rec.RiskLevel = domain.RiskLevel(risk)
		rec.Outcome = domain.OutcomeKind(outcome)
		rec.Recovered = recovered == 1
		rec.Escalated = escalated == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM turns")
	return domain.WrapOp("clear turns", err)
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
