package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/ebarkan/edgarseg"
	main "github.com/ebarkan/edgarseg/cmd/edgarseg"
	"github.com/ebarkan/edgarseg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("requires --force", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		cmd := &main.DeleteCmd{Accession: "0000320193-23-000106", DB: "edgarseg.db"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, edgarseg.EINVALID, edgarseg.ErrorCode(err))
		assert.Contains(t, stderr.String(), "use --force to confirm deletion")
	})

	t.Run("deletes a stored record", func(t *testing.T) {
		t.Parallel()

		var deleted string
		store := &mock.FilingStore{
			FindFilingRecordByAccessionFn: func(_ context.Context, accession string) (*edgarseg.FilingRecord, error) {
				return &edgarseg.FilingRecord{Accession: accession}, nil
			},
			DeleteFilingRecordFn: func(_ context.Context, accession string) error {
				deleted = accession
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			OpenStore: openMockStore(store),
		}

		cmd := &main.DeleteCmd{Accession: "000032019323000106", DB: "edgarseg.db", Force: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "0000320193-23-000106", deleted)
		assert.Contains(t, stdout.String(), "Deleted 0000320193-23-000106")
	})

	t.Run("reports a missing record without deleting", func(t *testing.T) {
		t.Parallel()

		deleteCalled := false
		store := &mock.FilingStore{
			FindFilingRecordByAccessionFn: func(_ context.Context, accession string) (*edgarseg.FilingRecord, error) {
				return nil, edgarseg.Errorf(edgarseg.ENOTFOUND, "No record for accession %q.", accession)
			},
			DeleteFilingRecordFn: func(_ context.Context, _ string) error {
				deleteCalled = true
				return nil
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    &bytes.Buffer{},
			Stderr:    stderr,
			OpenStore: openMockStore(store),
		}

		cmd := &main.DeleteCmd{Accession: "0000320193-23-000106", DB: "edgarseg.db", Force: true}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, edgarseg.ENOTFOUND, edgarseg.ErrorCode(err))
		assert.False(t, deleteCalled)
		assert.Contains(t, stderr.String(), "no record for 0000320193-23-000106")
	})
}
