package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIOError(t *testing.T) {
	t.Parallel()

	cause := fs.ErrNotExist
	err := NewIOError("/data/classic.rules.yaml", cause)

	require.Contains(t, err.Error(), "io error")
	require.Contains(t, err.Error(), "/data/classic.rules.yaml")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseError(t *testing.T) {
	t.Parallel()

	cause := errors.New("yaml: line 7: mapping values are not allowed")
	err := NewParseError("rules.yaml", 7, cause)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 7, pe.Line)
	require.Contains(t, err.Error(), "rules.yaml:7")
	require.ErrorIs(t, err, cause)

	// Without line metadata the position is omitted.
	err = NewParseError("rules.yaml", 0, cause)
	require.NotContains(t, err.Error(), ":0:")
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError(KindDuplicatePhaseID, "phases", `duplicate phase id "setup"`)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, KindDuplicatePhaseID, ve.Kind)
	require.Contains(t, err.Error(), "duplicate_phase_id")
	require.Contains(t, err.Error(), "phases")
}

func TestCatalogErrorConstructors(t *testing.T) {
	t.Parallel()

	var ve *ValidationError

	require.ErrorAs(t, NewDuplicateID("board.fields", "brazil"), &ve)
	require.Equal(t, KindDuplicateID, ve.Kind)
	require.Contains(t, ve.Message, `"brazil"`)

	require.ErrorAs(t, NewUnknownReference(`field "peru"`, "north"), &ve)
	require.Equal(t, KindUnknownReference, ve.Kind)
}

func TestEngineError(t *testing.T) {
	t.Parallel()

	var ee *EngineError

	err := NewActionNotFound("setup", "encounter")
	require.ErrorAs(t, err, &ee)
	require.Equal(t, KindActionNotFound, ee.Kind)
	require.Contains(t, err.Error(), `"encounter"`)
	require.Contains(t, err.Error(), `"setup"`)

	err = NewInvalidActionOrResult("setup", "end_phase", "fail")
	require.ErrorAs(t, err, &ee)
	require.Equal(t, KindInvalidActionOrResult, ee.Kind)
	require.Contains(t, err.Error(), `"fail"`)
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("database is locked")
	err := NewStoreError("save", cause)

	require.Contains(t, err.Error(), "store error: save")
	require.ErrorIs(t, err, cause)
}
