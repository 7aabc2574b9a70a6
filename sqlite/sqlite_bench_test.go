package sqlite_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ebarkan/edgarseg/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkWALMode compares write performance between WAL and rollback journal
// modes. This simulates a batch run: saving one record per filing in sequence.
func BenchmarkWALMode(b *testing.B) {
	b.Run("rollback_journal", func(b *testing.B) {
		benchmarkRecordInserts(b, false)
	})

	b.Run("wal_mode", func(b *testing.B) {
		benchmarkRecordInserts(b, true)
	})
}

func benchmarkRecordInserts(b *testing.B, useWAL bool) {
	b.Helper()

	tmpDir := b.TempDir()
	dbPath := filepath.Join(tmpDir, "bench.db")

	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())

	ctx := context.Background()

	// Open enables WAL for file databases; switch back for the baseline run.
	if !useWAL {
		_, err := db.ExecContext(ctx, "PRAGMA journal_mode = DELETE")
		require.NoError(b, err)
	}

	defer func() {
		db.Close()
		// Clean up WAL files if they exist
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	store := sqlite.NewFilingStore(db)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := testRecord(fmt.Sprintf("0000320193-24-%06d", i))
		if err := store.CreateFilingRecord(ctx, rec); err != nil {
			b.Fatal(err)
		}
	}
}
