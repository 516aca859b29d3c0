package catalog

import (
	"fmt"
	"strings"

	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

// Pieces is the catalog of playing piece sets for one variant. Each set
// typically belongs to one participant color.
type Pieces struct {
	ID          string     `yaml:"id" validate:"required"`
	Name        string     `yaml:"name" validate:"required"`
	Author      string     `yaml:"author,omitempty"`
	Version     string     `yaml:"version,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Sets        []PieceSet `yaml:"sets" validate:"required,min=1,dive"`
}

// PieceSet is a named collection of pieces of differing unit values.
type PieceSet struct {
	ID     string  `yaml:"id" validate:"required"`
	Name   string  `yaml:"name" validate:"required"`
	Pieces []Piece `yaml:"pieces" validate:"required,min=1,dive"`
}

// Piece is one figure denomination: its unit value and artwork.
type Piece struct {
	Value uint32 `yaml:"value" validate:"required,min=1"`
	Image string `yaml:"image,omitempty"`
}

// Validate checks set id uniqueness and that every set carries pieces with
// unique values.
func (p *Pieces) Validate() error {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return tegerrors.NewValidationError(tegerrors.KindEmptyID, "pieces.id", "pieces id must not be empty")
	}

	if _, err := Unique(p.Sets, "pieces.sets", func(s PieceSet) string { return s.ID }); err != nil {
		return err
	}

	for _, set := range p.Sets {
		field := fmt.Sprintf("pieces.sets[%s]", set.ID)
		if len(set.Pieces) == 0 {
			return tegerrors.NewValidationError(tegerrors.KindInvalidField, field, "set must contain at least one piece")
		}
		if _, err := Unique(set.Pieces, field, func(pc Piece) uint32 { return pc.Value }); err != nil {
			return err
		}
	}

	if err := validatorInstance().Struct(p); err != nil {
		return convertValidationError(err)
	}

	return nil
}
