package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ebarkan/edgarseg/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Atomic Batch Output
// A batch run stages records in a temp directory and publishes on Commit

func TestBatchStore_WriteRecordStagesInTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store targeting a directory
	base := t.TempDir()
	store := fs.NewBatchStore(base, "records")

	// When I write a record
	err := store.WriteRecord(context.Background(), record("0000320193-24-000123"))

	// Then no error occurs
	require.NoError(t, err)

	// And the file exists in the temp directory (not final)
	tempPath := filepath.Join(base, "records.tmp", "0000320193", "0000320193-24-000123.json")
	_, err = os.Stat(tempPath)
	require.NoError(t, err, "record should exist in temp directory")

	finalPath := filepath.Join(base, "records", "0000320193", "0000320193-24-000123.json")
	_, err = os.Stat(finalPath)
	assert.True(t, os.IsNotExist(err), "final directory should not exist until commit")
}

func TestBatchStore_CommitMovesFromTempToFinal(t *testing.T) {
	t.Parallel()

	// Given a store with a staged record
	base := t.TempDir()
	store := fs.NewBatchStore(base, "records")
	require.NoError(t, store.WriteRecord(context.Background(), record("0000320193-24-000123")))

	// When I commit
	require.NoError(t, store.Commit())

	// Then the record is visible in the final directory
	finalPath := filepath.Join(base, "records", "0000320193", "0000320193-24-000123.json")
	_, err := os.Stat(finalPath)
	require.NoError(t, err)

	// And the temp directory is gone
	_, err = os.Stat(filepath.Join(base, "records.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatchStore_CommitReplacesPreviousOutput(t *testing.T) {
	t.Parallel()

	// Given a committed batch from an earlier run
	base := t.TempDir()
	first := fs.NewBatchStore(base, "records")
	require.NoError(t, first.WriteRecord(context.Background(), record("0000320193-23-000001")))
	require.NoError(t, first.Commit())

	// When a new batch with different records commits
	second := fs.NewBatchStore(base, "records")
	require.NoError(t, second.WriteRecord(context.Background(), record("0000320193-24-000123")))
	require.NoError(t, second.Commit())

	// Then only the new batch remains
	_, err := os.Stat(filepath.Join(base, "records", "0000320193", "0000320193-24-000123.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "records", "0000320193", "0000320193-23-000001.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatchStore_AbortDiscardsStagedRecords(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewBatchStore(base, "records")
	require.NoError(t, store.WriteRecord(context.Background(), record("0000320193-24-000123")))

	require.NoError(t, store.Abort())

	_, err := os.Stat(filepath.Join(base, "records.tmp"))
	assert.True(t, os.IsNotExist(err))
}
