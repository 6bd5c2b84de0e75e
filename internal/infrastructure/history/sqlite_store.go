package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/pkg/filesystem"
	"github.com/doeshing/cmdgen/internal/ports"
)

// DefaultDBName is the SQLite history database under ~/.cmdgen.
const DefaultDBName = "history.db"

const schema = `CREATE TABLE IF NOT EXISTS interactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	timestamp TEXT NOT NULL,
	prompt TEXT NOT NULL,
	command TEXT NOT NULL DEFAULT '',
	success INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	backend TEXT NOT NULL DEFAULT '',
	system TEXT NOT NULL DEFAULT '',
	feedback INTEGER,
	executed INTEGER NOT NULL DEFAULT 0,
	exit_code INTEGER
);`

// SQLiteStore persists history in a SQLite database. Amendments update the
// single affected row in place.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates (or opens) the database at path, defaulting to ~/.cmdgen/history.db.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = filepath.Join(filesystem.AppDir(), DefaultDBName)
	}
	path = filesystem.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, domain.ErrHistoryPersistence.Wrap(err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domain.ErrHistoryPersistence.Wrap(err)
	}
	// one writer at a time; sqlite serializes anyway
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, domain.ErrHistoryPersistence.WithMessage("init schema").Wrap(err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Append inserts a new record.
func (s *SQLiteStore) Append(ctx context.Context, record domain.InteractionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO interactions
		(id, timestamp, prompt, command, success, error, detail, backend, system, feedback, executed, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.Format(time.RFC3339Nano),
		record.Prompt,
		record.Command,
		boolToInt(record.Success),
		record.Error,
		record.Detail,
		record.Backend,
		record.System,
		nullableInt(record.Feedback),
		boolToInt(record.Executed),
		nullableInt(record.ExitCode),
	)
	if err != nil {
		return domain.ErrHistoryPersistence.Wrap(err)
	}
	return nil
}

// LoadAll returns every record in insertion order.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]domain.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp, prompt, command, success, error, detail,
		backend, system, feedback, executed, exit_code FROM interactions ORDER BY seq`)
	if err != nil {
		return nil, domain.ErrHistoryPersistence.Wrap(err)
	}
	defer rows.Close()

	var records []domain.InteractionRecord
	for rows.Next() {
		var (
			rec                domain.InteractionRecord
			ts                 string
			success, executed  int
			feedback, exitCode sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Prompt, &rec.Command, &success, &rec.Error, &rec.Detail,
			&rec.Backend, &rec.System, &feedback, &executed, &exitCode); err != nil {
			return nil, domain.ErrHistoryPersistence.Wrap(err)
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Success = success == 1
		rec.Executed = executed == 1
		rec.Feedback = intPtr(feedback)
		rec.ExitCode = intPtr(exitCode)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrHistoryPersistence.Wrap(err)
	}
	return records, nil
}

// UpdateLastFeedback rates the most recent record.
func (s *SQLiteStore) UpdateLastFeedback(ctx context.Context, rating int) error {
	if !domain.ValidFeedback(rating) {
		return domain.ErrInvalidFeedback.WithMessagef("rating %d not in %d-%d", rating, domain.MinFeedback, domain.MaxFeedback)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE interactions SET feedback = ? WHERE seq = (SELECT MAX(seq) FROM interactions)`, rating)
	return s.checkUpdate(res, err, domain.ErrNoHistory.WithMessage("nothing to rate"))
}

// RecordExecution marks the record with id as executed.
func (s *SQLiteStore) RecordExecution(ctx context.Context, id string, exitCode int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE interactions SET executed = 1, exit_code = ? WHERE id = ?`, exitCode, id)
	return s.checkUpdate(res, err, domain.ErrNoHistory.WithMessagef("record %s not found", id))
}

func (s *SQLiteStore) checkUpdate(res sql.Result, err error, notFound error) error {
	if err != nil {
		return domain.ErrHistoryPersistence.Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrHistoryPersistence.Wrap(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

var _ ports.HistoryStore = (*SQLiteStore)(nil)
