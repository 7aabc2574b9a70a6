package edgarseg_test

import (
	"errors"
	"testing"

	"github.com/ebarkan/edgarseg"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("returns code for application error", func(t *testing.T) {
		t.Parallel()

		err := edgarseg.Errorf(edgarseg.ENOTFOUND, "Section not found.")

		assert.Equal(t, edgarseg.ENOTFOUND, edgarseg.ErrorCode(err))
	})

	t.Run("returns code for wrapped application error", func(t *testing.T) {
		t.Parallel()

		inner := edgarseg.Errorf(edgarseg.ECONTAINER, "No header found.")
		err := errors.Join(errors.New("outer"), inner)

		assert.Equal(t, edgarseg.ECONTAINER, edgarseg.ErrorCode(err))
	})

	t.Run("returns internal for non-application error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, edgarseg.EINTERNAL, edgarseg.ErrorCode(errors.New("boom")))
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", edgarseg.ErrorCode(nil))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("returns message for application error", func(t *testing.T) {
		t.Parallel()

		err := edgarseg.Errorf(edgarseg.EINVALID, "Unknown section id %q.", "bogus")

		assert.Equal(t, `Unknown section id "bogus".`, edgarseg.ErrorMessage(err))
	})

	t.Run("returns generic message for non-application error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Internal error.", edgarseg.ErrorMessage(errors.New("boom")))
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", edgarseg.ErrorMessage(nil))
	})
}

func TestStageErrorf(t *testing.T) {
	t.Parallel()

	t.Run("tags error with stage and filing", func(t *testing.T) {
		t.Parallel()

		err := edgarseg.StageErrorf(edgarseg.StagePreseek, "0000320193-23-000106", edgarseg.ENOTFOUND, "No anchor matched.")

		assert.Equal(t, edgarseg.ENOTFOUND, edgarseg.ErrorCode(err))
		assert.Equal(t, edgarseg.StagePreseek, edgarseg.ErrorStage(err))
		assert.Contains(t, err.Error(), "filing=0000320193-23-000106")
		assert.Contains(t, err.Error(), "stage=preseek")
	})

	t.Run("stage is empty for plain errors", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", edgarseg.ErrorStage(errors.New("boom")))
	})
}
