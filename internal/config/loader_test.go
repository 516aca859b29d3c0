package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRuleSet(t *testing.T) {
	t.Parallel()

	rs, err := LoadRuleSet(filepath.Join("testdata", "classic.rules.yaml"))
	require.NoError(t, err)
	require.Equal(t, "classic", rs.ID)
	require.Equal(t, "setup", rs.DefaultPhase)
	require.Len(t, rs.Phases, 2)
	require.Len(t, rs.Goals, 1)
}

func TestLoadRuleSetMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "ghost.yaml"))

	var ioErr *tegerrors.IOError
	require.ErrorAs(t, err, &ioErr)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRuleSetMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "broken.yaml", "id: classic\nphases:\n  - id: [\n")

	_, err := LoadRuleSet(path)

	var parseErr *tegerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, path, parseErr.Path)
}

func TestLoadRuleSetInvalidContent(t *testing.T) {
	t.Parallel()

	// Well-formed YAML referencing an undeclared phase.
	doc := `
id: classic
default_phase: setup
phases:
  - id: setup
    actions:
      - kind: end_phase
        result:
          done: endgame
`
	path := writeFile(t, t.TempDir(), "invalid.yaml", doc)

	_, err := LoadRuleSet(path)

	var ve *tegerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, tegerrors.KindUnknownPhaseReference, ve.Kind)
}

func TestLoadBoard(t *testing.T) {
	t.Parallel()

	board, err := LoadBoard(filepath.Join("testdata", "classic.board.yaml"))
	require.NoError(t, err)
	require.Equal(t, "classic_board", board.ID)
	require.Len(t, board.Fields, 2)
	require.Equal(t, []string{"peru"}, board.Neighbors("brazil"))
}

func TestLoadPieces(t *testing.T) {
	t.Parallel()

	pieces, err := LoadPieces(filepath.Join("testdata", "classic.pieces.yaml"))
	require.NoError(t, err)
	require.Len(t, pieces.Sets, 2)
}

func TestLoadDice(t *testing.T) {
	t.Parallel()

	dice, err := LoadDice(filepath.Join("testdata", "classic.dice.yaml"))
	require.NoError(t, err)
	require.Len(t, dice.Sets, 1)
	require.Len(t, dice.Sets[0].Faces, 6)
}

func TestLoadGame(t *testing.T) {
	t.Parallel()

	game, err := LoadGame(filepath.Join("testdata", "classic.game.yaml"))
	require.NoError(t, err)
	require.Equal(t, "classic", game.ID)
	require.Equal(t, uint8(2), game.Parameters.MinPlayers)
	require.Equal(t, "once", game.Parameters.Placement.ControlBonus)
}

func TestLoadVariant(t *testing.T) {
	t.Parallel()

	data, err := LoadVariant("testdata", "classic")
	require.NoError(t, err)
	require.NotNil(t, data.Game)
	require.NotNil(t, data.Rules)
	require.NotNil(t, data.Board)
	require.NotNil(t, data.Pieces)
	require.NotNil(t, data.Dice)
}

func TestLoadVariantDiceOptional(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, kind := range []string{"game", "rules", "board", "pieces"} {
		src, err := os.ReadFile(filepath.Join("testdata", "classic."+kind+".yaml"))
		require.NoError(t, err)
		writeFile(t, dir, "classic."+kind+".yaml", string(src))
	}

	data, err := LoadVariant(dir, "classic")
	require.NoError(t, err)
	require.Nil(t, data.Dice)
}

func TestLoadVariantMissingBundle(t *testing.T) {
	t.Parallel()

	_, err := LoadVariant(t.TempDir(), "classic")

	var ioErr *tegerrors.IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestExtractLine(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "broken.yaml", "id: classic\nname: [unclosed\n")

	_, err := LoadBoard(path)

	var parseErr *tegerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Positive(t, parseErr.Line)
}
