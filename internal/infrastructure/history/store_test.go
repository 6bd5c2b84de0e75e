package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/pkg/logger"
	"github.com/doeshing/cmdgen/internal/ports"
)

// storeFactories runs the shared contract against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) ports.HistoryStore {
	return map[string]func(t *testing.T) ports.HistoryStore{
		"jsonl": func(t *testing.T) ports.HistoryStore {
			return NewFileStore(filepath.Join(t.TempDir(), "history.jsonl"), true, logger.NewNop())
		},
		"sqlite": func(t *testing.T) ports.HistoryStore {
			store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "history.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func sampleRecords(n int) []domain.InteractionRecord {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]domain.InteractionRecord, 0, n)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		id := fmt.Sprintf("rec-%02d", i)
		var rec domain.InteractionRecord
		switch i % 3 {
		case 0:
			rec = domain.NewSuccessRecord(id, "list files", "ls -la", at)
		case 1:
			rec = domain.NewFailureRecord(id, "wipe disk", domain.RejectedFailure(domain.RejectDangerousPattern), at)
			rec.Detail = "rm -rf / [recursive-delete-root]"
		default:
			rec = domain.NewFailureRecord(id, "anything", domain.FailureBackendExhausted, at)
		}
		rec.Backend = "ollama"
		rec.System = "Linux"
		out = append(out, rec)
	}
	return out
}

func TestHistoryStoreContract(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("empty", func(t *testing.T) {
				records, err := newStore(t).LoadAll(ctx)
				require.NoError(t, err)
				assert.Empty(t, records)
			})

			t.Run("round trip preserves order and fields", func(t *testing.T) {
				store := newStore(t)
				want := sampleRecords(7)
				for _, rec := range want {
					require.NoError(t, store.Append(ctx, rec))
				}
				got, err := store.LoadAll(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})

			t.Run("feedback targets the last record", func(t *testing.T) {
				store := newStore(t)
				for _, rec := range sampleRecords(2) {
					require.NoError(t, store.Append(ctx, rec))
				}
				require.NoError(t, store.UpdateLastFeedback(ctx, 5))

				got, err := store.LoadAll(ctx)
				require.NoError(t, err)
				require.Len(t, got, 2)
				assert.Nil(t, got[0].Feedback)
				require.NotNil(t, got[1].Feedback)
				assert.Equal(t, 5, *got[1].Feedback)
				assert.Equal(t, "rec-01", got[1].ID)
			})

			t.Run("feedback validation", func(t *testing.T) {
				store := newStore(t)
				assert.ErrorIs(t, store.UpdateLastFeedback(ctx, 3), domain.ErrNoHistory)
				require.NoError(t, store.Append(ctx, sampleRecords(1)[0]))
				assert.ErrorIs(t, store.UpdateLastFeedback(ctx, 6), domain.ErrInvalidFeedback)
			})

			t.Run("execution outcome by id", func(t *testing.T) {
				store := newStore(t)
				for _, rec := range sampleRecords(3) {
					require.NoError(t, store.Append(ctx, rec))
				}
				require.NoError(t, store.RecordExecution(ctx, "rec-00", 2))
				assert.ErrorIs(t, store.RecordExecution(ctx, "missing", 0), domain.ErrNoHistory)

				got, err := store.LoadAll(ctx)
				require.NoError(t, err)
				require.Len(t, got, 3)
				assert.True(t, got[0].Executed)
				require.NotNil(t, got[0].ExitCode)
				assert.Equal(t, 2, *got[0].ExitCode)
				assert.False(t, got[1].Executed)
			})

			t.Run("rejects invalid records", func(t *testing.T) {
				store := newStore(t)
				err := store.Append(ctx, domain.InteractionRecord{ID: "x", Success: true})
				assert.ErrorIs(t, err, domain.ErrInvalidRecord)
			})
		})
	}
}

func TestFileStoreAmendmentsAppendVersions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	store := NewFileStore(path, false, logger.NewNop())

	for _, rec := range sampleRecords(2) {
		require.NoError(t, store.Append(ctx, rec))
	}
	require.NoError(t, store.UpdateLastFeedback(ctx, 4))
	require.NoError(t, store.RecordExecution(ctx, "rec-00", 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 4)

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rec-00", got[0].ID)
	assert.True(t, got[0].Executed)
	assert.Equal(t, 4, *got[1].Feedback)
}

func TestFileStoreQuarantinesMalformedFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"a\"\nnot json at all\n"), 0o600))

	store := NewFileStore(path, false, logger.NewNop())
	store.now = func() time.Time { return time.Unix(1700000000, 0) }

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = os.Stat(path + ".corrupt-1700000000")
	assert.NoError(t, err, "malformed file should be kept aside")

	require.NoError(t, store.Append(ctx, sampleRecords(1)[0]))
	got, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFileStoreInvariantViolationIsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	line := `{"id":"a","prompt":"p","timestamp":"2024-01-01T00:00:00Z","success":true}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(line), 0o600))

	got, err := NewFileStore(path, false, logger.NewNop()).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStoreUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	store := NewFileStore(filepath.Join(blocker, "history.jsonl"), false, logger.NewNop())
	err := store.Append(context.Background(), sampleRecords(1)[0])
	assert.ErrorIs(t, err, domain.ErrHistoryPersistence)
}

func TestFileStoreDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	store := NewFileStore("", false, nil)
	assert.Equal(t, "/home/tester/.cmdgen/history.jsonl", store.Path())
}

func TestFileStoreHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewFileStore(filepath.Join(t.TempDir(), "h.jsonl"), false, nil)
	assert.ErrorIs(t, store.Append(ctx, sampleRecords(1)[0]), context.Canceled)
}
