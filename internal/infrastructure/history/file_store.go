package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/pkg/filesystem"
	"github.com/doeshing/cmdgen/internal/ports"
)

// DefaultFileName is the JSONL history file under ~/.cmdgen.
const DefaultFileName = "history.jsonl"

// FileStore appends history records to a jsonl file, one record per line.
// Amendments append a new version of a record with the same id; LoadAll
// keeps the latest version at the position the record first appeared.
type FileStore struct {
	path   string
	lock   bool
	logger ports.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewFileStore creates a store at path, or ~/.cmdgen/history.jsonl when empty.
// With lock set every read and write holds an advisory file lock.
func NewFileStore(path string, lock bool, logger ports.Logger) *FileStore {
	if path == "" {
		path = filepath.Join(filesystem.AppDir(), DefaultFileName)
	}
	return &FileStore{
		path:   filesystem.ExpandHome(path),
		lock:   lock,
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Append implements ports.HistoryStore.
func (f *FileStore) Append(ctx context.Context, record domain.InteractionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(record)
}

// LoadAll returns every record in insertion order. A missing file is an
// empty history; an unreadable one is moved aside and treated as empty.
func (f *FileStore) LoadAll(ctx context.Context) ([]domain.InteractionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// UpdateLastFeedback rates the most recent record.
func (f *FileStore) UpdateLastFeedback(ctx context.Context, rating int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return domain.ErrNoHistory.WithMessage("nothing to rate")
	}
	updated, err := records[len(records)-1].WithFeedback(rating)
	if err != nil {
		return err
	}
	return f.write(updated)
}

// RecordExecution marks the record with id as executed.
func (f *FileStore) RecordExecution(ctx context.Context, id string, exitCode int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.ID == id {
			return f.write(rec.WithExecution(exitCode))
		}
	}
	return domain.ErrNoHistory.WithMessagef("record %s not found", id)
}

// write marshals the record fully before a single write so a crash never
// leaves a partial line behind.
func (f *FileStore) write(record domain.InteractionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return domain.ErrHistoryPersistence.Wrap(err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return domain.ErrHistoryPersistence.Wrap(err)
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return domain.ErrHistoryPersistence.Wrap(err)
	}
	defer file.Close()

	if f.lock {
		if err := lockFile(file, true); err != nil {
			return domain.ErrHistoryPersistence.WithMessage("lock").Wrap(err)
		}
		defer unlockFile(file)
	}
	if _, err := file.Write(data); err != nil {
		return domain.ErrHistoryPersistence.Wrap(err)
	}
	if err := file.Sync(); err != nil {
		return domain.ErrHistoryPersistence.Wrap(err)
	}
	return nil
}

func (f *FileStore) load() ([]domain.InteractionRecord, error) {
	data, err := f.read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrHistoryPersistence.Wrap(err)
	}

	versions, err := decodeLines(data)
	if err != nil {
		f.quarantine(err)
		return nil, nil
	}
	return fold(versions), nil
}

func (f *FileStore) read() ([]byte, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if f.lock {
		if err := lockFile(file, false); err != nil {
			return nil, err
		}
		defer unlockFile(file)
	}
	return io.ReadAll(file)
}

// quarantine moves a malformed file aside so the next append starts fresh
// without destroying what the user may want to repair by hand.
func (f *FileStore) quarantine(cause error) {
	target := fmt.Sprintf("%s.corrupt-%d", f.path, f.now().Unix())
	fields := map[string]interface{}{"path": f.path, "error": cause.Error()}
	if err := os.Rename(f.path, target); err != nil {
		fields["rename_error"] = err.Error()
	} else {
		fields["moved_to"] = target
	}
	if f.logger != nil {
		f.logger.Warn("history file is malformed; starting with empty history", fields)
	}
}

func decodeLines(data []byte) ([]domain.InteractionRecord, error) {
	var out []domain.InteractionRecord
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var rec domain.InteractionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// fold collapses record versions by id. Order follows first appearance.
func fold(versions []domain.InteractionRecord) []domain.InteractionRecord {
	index := make(map[string]int, len(versions))
	out := make([]domain.InteractionRecord, 0, len(versions))
	for _, rec := range versions {
		if i, ok := index[rec.ID]; ok {
			out[i] = rec
			continue
		}
		index[rec.ID] = len(out)
		out = append(out, rec)
	}
	return out
}

var _ ports.HistoryStore = (*FileStore)(nil)
