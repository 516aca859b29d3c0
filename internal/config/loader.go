// Package config loads variant data files from disk. Each loader reports
// exactly one of three failure categories: an I/O failure reading the file,
// a parse failure decoding the YAML, or a validation failure from the
// decoded value. The engine only ever receives values that already passed
// validation here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/tegflow/tegflow/internal/catalog"
	"github.com/tegflow/tegflow/internal/rules"
	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// GameData bundles everything needed to play one variant.
type GameData struct {
	Game   *GameDefinition
	Rules  *rules.RuleSet
	Board  *catalog.Board
	Pieces *catalog.Pieces
	Dice   *catalog.Dice
}

// LoadRuleSet loads and validates a rule set file.
func LoadRuleSet(path string) (*rules.RuleSet, error) {
	var rs rules.RuleSet
	if err := loadYAML(path, &rs); err != nil {
		return nil, err
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// LoadBoard loads and validates a board file.
func LoadBoard(path string) (*catalog.Board, error) {
	var b catalog.Board
	if err := loadYAML(path, &b); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadPieces loads and validates a pieces file.
func LoadPieces(path string) (*catalog.Pieces, error) {
	var p catalog.Pieces
	if err := loadYAML(path, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadDice loads and validates a dice file.
func LoadDice(path string) (*catalog.Dice, error) {
	var d catalog.Dice
	if err := loadYAML(path, &d); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadGame loads and validates a game definition file. Referenced asset
// files are checked relative to the definition's directory.
func LoadGame(path string) (*GameDefinition, error) {
	var g GameDefinition
	if err := loadYAML(path, &g); err != nil {
		return nil, err
	}
	if err := g.Validate(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &g, nil
}

// LoadVariant loads the full `<variant>.<kind>.yaml` bundle from dir. The
// dice file is optional; everything else must be present and valid.
func LoadVariant(dir, variant string) (*GameData, error) {
	game, err := LoadGame(variantPath(dir, variant, "game"))
	if err != nil {
		return nil, err
	}

	rs, err := LoadRuleSet(variantPath(dir, variant, "rules"))
	if err != nil {
		return nil, err
	}

	board, err := LoadBoard(variantPath(dir, variant, "board"))
	if err != nil {
		return nil, err
	}

	pieces, err := LoadPieces(variantPath(dir, variant, "pieces"))
	if err != nil {
		return nil, err
	}

	data := &GameData{Game: game, Rules: rs, Board: board, Pieces: pieces}

	dicePath := variantPath(dir, variant, "dice")
	if _, err := os.Stat(dicePath); err == nil {
		dice, err := LoadDice(dicePath)
		if err != nil {
			return nil, err
		}
		data.Dice = dice
	}

	return data, nil
}

func variantPath(dir, variant, kind string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.yaml", variant, kind))
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return tegerrors.NewIOError(path, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return tegerrors.NewParseError(path, extractLine(err), err)
	}

	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}
