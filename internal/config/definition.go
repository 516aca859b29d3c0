package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

// GameDefinition ties together the assets of one playable variant and its
// parameters. The referenced file names are resolved relative to the
// directory the definition was loaded from.
type GameDefinition struct {
	ID         string         `yaml:"id" validate:"required"`
	Name       string         `yaml:"name" validate:"required"`
	Rules      string         `yaml:"rules" validate:"required"`
	Board      string         `yaml:"board" validate:"required"`
	Pieces     string         `yaml:"pieces" validate:"required"`
	Cards      string         `yaml:"cards,omitempty"`
	Encounter  string         `yaml:"encounter,omitempty"`
	Parameters GameParameters `yaml:"parameters"`
}

// GameParameters holds variant-specific play settings.
type GameParameters struct {
	MinPlayers        uint8           `yaml:"min_players" validate:"required,min=1"`
	MaxPlayers        uint8           `yaml:"max_players" validate:"required,min=1"`
	Placement         PlacementConfig `yaml:"placement"`
	CardBonusSequence []uint32        `yaml:"card_bonus_sequence" validate:"required,min=1"`
	FieldSetBonuses   []FieldSetBonus `yaml:"fieldset_bonuses,omitempty"`
}

// FieldSetBonus awards extra figures for controlling a full field set.
type FieldSetBonus struct {
	SetID string `yaml:"set_id" validate:"required"`
	Bonus uint32 `yaml:"bonus" validate:"required,min=1"`
}

// PlacementConfig describes the initial placement rules.
type PlacementConfig struct {
	SetupRoundFigures   uint32 `yaml:"setup_round_figures"`
	RegularRoundFigures uint32 `yaml:"regular_round_figures"`
	FieldSetsBonus      bool   `yaml:"fieldsets_bonus,omitempty"`
	ControlBonus        string `yaml:"control_bonus,omitempty" validate:"omitempty,oneof=off once turn"`
}

var (
	defValidatorOnce sync.Once
	defValidateInst  *validator.Validate
)

func defValidator() *validator.Validate {
	defValidatorOnce.Do(func() {
		defValidateInst = validator.New()
	})
	return defValidateInst
}

// Validate checks scalar fields, the player count range, and that every
// referenced asset file exists under baseDir (with or without the .yaml
// extension).
func (g *GameDefinition) Validate(baseDir string) error {
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return tegerrors.NewValidationError(tegerrors.KindEmptyID, "game.id", "game id must not be empty")
	}
	if strings.TrimSpace(g.Name) == "" {
		return tegerrors.NewValidationError(tegerrors.KindEmptyID, "game.name", "game name must not be empty")
	}

	if g.Parameters.MinPlayers == 0 || g.Parameters.MaxPlayers < g.Parameters.MinPlayers {
		return tegerrors.NewValidationError(tegerrors.KindInvalidField, "game.parameters",
			fmt.Sprintf("invalid player count range %d-%d", g.Parameters.MinPlayers, g.Parameters.MaxPlayers))
	}

	if len(g.Parameters.CardBonusSequence) == 0 {
		return tegerrors.NewValidationError(tegerrors.KindInvalidField, "game.parameters.card_bonus_sequence", "must not be empty")
	}

	required := map[string]string{
		"game.rules":  g.Rules,
		"game.board":  g.Board,
		"game.pieces": g.Pieces,
	}
	for field, name := range required {
		if err := verifyAsset(baseDir, field, name); err != nil {
			return err
		}
	}

	optional := map[string]string{
		"game.cards":     g.Cards,
		"game.encounter": g.Encounter,
	}
	for field, name := range optional {
		if name == "" {
			continue
		}
		if err := verifyAsset(baseDir, field, name); err != nil {
			return err
		}
	}

	if err := defValidator().Struct(g); err != nil {
		if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
			ve := ves[0]
			return tegerrors.NewValidationError(tegerrors.KindInvalidField, ve.Namespace(), fmt.Sprintf("failed validation for tag %q", ve.Tag()))
		}
		return tegerrors.NewValidationError(tegerrors.KindInvalidField, "", err.Error())
	}

	return nil
}

// verifyAsset accepts either the exact file name or the name with a .yaml
// extension appended.
func verifyAsset(baseDir, field, name string) error {
	plain := filepath.Join(baseDir, name)
	withExt := plain + ".yaml"

	if isFile(plain) || isFile(withExt) {
		return nil
	}

	return tegerrors.NewValidationError(tegerrors.KindUnknownReference, field,
		fmt.Sprintf("asset %q not found at %s or %s", name, plain, withExt))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
