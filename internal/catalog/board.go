package catalog

import (
	"fmt"
	"strings"

	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

// Board is the complete definition of a game board: fields (territories),
// their grouping into sets (continents or zones), and the directed
// relations (borders) between them.
type Board struct {
	ID          string     `yaml:"id" validate:"required"`
	Name        string     `yaml:"name" validate:"required"`
	Author      string     `yaml:"author,omitempty"`
	Version     string     `yaml:"version,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Sets        []FieldSet `yaml:"sets" validate:"required,min=1,dive"`
	Fields      []Field    `yaml:"fields" validate:"required,min=1,dive"`
	Relations   []Relation `yaml:"relations,omitempty"`
}

// FieldSet groups fields that share a control bonus.
type FieldSet struct {
	ID    string `yaml:"id" validate:"required"`
	Name  string `yaml:"name" validate:"required"`
	Bonus uint32 `yaml:"bonus,omitempty"`
	Color string `yaml:"color,omitempty"`
}

// Field is a single territory on the board.
type Field struct {
	ID       string   `yaml:"id" validate:"required"`
	Name     string   `yaml:"name" validate:"required"`
	SetID    string   `yaml:"set_id" validate:"required"`
	Position Position `yaml:"position,omitempty"`
}

// Position is the display coordinate of a field.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Relation is a directed adjacency between two fields. A border in both
// directions needs two relations.
type Relation struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Validate checks id uniqueness and referential integrity of sets, fields,
// and relations.
func (b *Board) Validate() error {
	if b == nil || strings.TrimSpace(b.ID) == "" {
		return tegerrors.NewValidationError(tegerrors.KindEmptyID, "board.id", "board id must not be empty")
	}

	setIDs, err := Unique(b.Sets, "board.sets", func(s FieldSet) string { return s.ID })
	if err != nil {
		return err
	}

	fieldIDs, err := Unique(b.Fields, "board.fields", func(f Field) string { return f.ID })
	if err != nil {
		return err
	}

	if err := References(b.Fields, setIDs,
		func(f Field) string { return fmt.Sprintf("field %q", f.ID) },
		func(f Field) []string { return []string{f.SetID} },
	); err != nil {
		return err
	}

	if err := References(b.Relations, fieldIDs,
		func(r Relation) string { return fmt.Sprintf("relation %s->%s", r.From, r.To) },
		func(r Relation) []string { return []string{r.From, r.To} },
	); err != nil {
		return err
	}

	if err := validatorInstance().Struct(b); err != nil {
		return convertValidationError(err)
	}

	return nil
}

// FieldIDs returns the set of declared field ids.
func (b *Board) FieldIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(b.Fields))
	for _, f := range b.Fields {
		ids[f.ID] = struct{}{}
	}
	return ids
}

// Neighbors returns the ids reachable from the given field in declaration
// order.
func (b *Board) Neighbors(fieldID string) []string {
	var out []string
	for _, r := range b.Relations {
		if r.From == fieldID {
			out = append(out, r.To)
		}
	}
	return out
}
