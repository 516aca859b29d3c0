// Package session holds the mutable state of one game in progress — the
// participants, the per-field ownership, and the active phase — and
// persists it in a SQLite store. The phase-flow engine never touches this
// package; applying declared state changes to the board is the session
// owner's job.
package session

import (
	"fmt"

	"github.com/tegflow/tegflow/internal/catalog"
	"github.com/tegflow/tegflow/internal/rules"
)

// Participant is one player in a session.
type Participant struct {
	ID             string
	Name           string
	Active         bool
	AvailableUnits uint32
}

// FieldStatus tracks who controls a field and with how many units. An empty
// owner means unclaimed.
type FieldStatus struct {
	Owner string
	Units uint32
}

// State is the full mutable state of one game session.
type State struct {
	Phase        string
	Participants []Participant
	Current      int
	Fields       map[string]FieldStatus
}

// NewState creates an empty state covering every field of the board, all
// unclaimed, starting in the rule set's default phase.
func NewState(board *catalog.Board, rs *rules.RuleSet, participants []Participant) *State {
	fields := make(map[string]FieldStatus, len(board.Fields))
	for _, f := range board.Fields {
		fields[f.ID] = FieldStatus{}
	}

	return &State{
		Phase:        rs.DefaultPhase,
		Participants: participants,
		Fields:       fields,
	}
}

// Apply mutates the state according to a declared state change. The change
// has already passed rule validation, so only board-level conditions are
// checked here: the referenced fields must exist and a move must not
// exceed the source field's units.
func (s *State) Apply(change rules.StateChange) error {
	switch change.Type {
	case rules.ChangeTypeMoveFigures:
		mv := change.MoveFigures
		if mv == nil {
			return fmt.Errorf("move_figures: missing body")
		}
		from, ok := s.Fields[mv.From]
		if !ok {
			return fmt.Errorf("move_figures: unknown field %q", mv.From)
		}
		to, ok := s.Fields[mv.To]
		if !ok {
			return fmt.Errorf("move_figures: unknown field %q", mv.To)
		}
		if from.Units < mv.Count {
			return fmt.Errorf("move_figures: field %q has %d units, cannot move %d", mv.From, from.Units, mv.Count)
		}
		from.Units -= mv.Count
		to.Units += mv.Count
		s.Fields[mv.From] = from
		s.Fields[mv.To] = to
	case rules.ChangeTypeChangeOwner:
		co := change.ChangeOwner
		if co == nil {
			return fmt.Errorf("change_owner: missing body")
		}
		status, ok := s.Fields[co.FieldID]
		if !ok {
			return fmt.Errorf("change_owner: unknown field %q", co.FieldID)
		}
		status.Owner = co.NewOwner
		s.Fields[co.FieldID] = status
	default:
		return fmt.Errorf("unknown state change type %q", change.Type)
	}
	return nil
}

// ActiveParticipant returns the participant whose turn it is.
func (s *State) ActiveParticipant() (Participant, bool) {
	if s.Current < 0 || s.Current >= len(s.Participants) {
		return Participant{}, false
	}
	return s.Participants[s.Current], true
}

// AdvanceTurn moves to the next active participant, wrapping around. It
// reports false when no participant is active.
func (s *State) AdvanceTurn() bool {
	if len(s.Participants) == 0 {
		return false
	}
	for i := 1; i <= len(s.Participants); i++ {
		next := (s.Current + i) % len(s.Participants)
		if s.Participants[next].Active {
			s.Current = next
			return true
		}
	}
	return false
}
