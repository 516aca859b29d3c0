package catalog

import (
	"fmt"
	"strings"

	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

// Dice is the catalog of dice sets available to a variant.
type Dice struct {
	ID          string    `yaml:"id" validate:"required"`
	Name        string    `yaml:"name" validate:"required"`
	Author      string    `yaml:"author,omitempty"`
	Version     string    `yaml:"version,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Sets        []DiceSet `yaml:"dice_sets" validate:"required,min=1,dive"`
}

// DiceSet is one die: its faces and their artwork.
type DiceSet struct {
	ID    string `yaml:"id" validate:"required"`
	Name  string `yaml:"name" validate:"required"`
	Faces []Face `yaml:"faces" validate:"required,min=1,dive"`
}

// Face is a single die face.
type Face struct {
	Value uint32 `yaml:"value" validate:"required,min=1"`
	Image string `yaml:"image,omitempty"`
}

// Validate checks dice set id uniqueness and face values within each set.
func (d *Dice) Validate() error {
	if d == nil || strings.TrimSpace(d.ID) == "" {
		return tegerrors.NewValidationError(tegerrors.KindEmptyID, "dice.id", "dice id must not be empty")
	}

	if _, err := Unique(d.Sets, "dice.dice_sets", func(s DiceSet) string { return s.ID }); err != nil {
		return err
	}

	for _, set := range d.Sets {
		field := fmt.Sprintf("dice.dice_sets[%s]", set.ID)
		if len(set.Faces) == 0 {
			return tegerrors.NewValidationError(tegerrors.KindInvalidField, field, "dice set must contain at least one face")
		}
		if _, err := Unique(set.Faces, field, func(f Face) uint32 { return f.Value }); err != nil {
			return err
		}
	}

	if err := validatorInstance().Struct(d); err != nil {
		return convertValidationError(err)
	}

	return nil
}
