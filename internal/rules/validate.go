package rules

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tegflow/tegflow/internal/catalog"
	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

// ActionKinds is the closed whitelist of recognized action kinds. Rule files
// naming anything else are rejected at validation time.
var ActionKinds = map[string]struct{}{
	"assign_fields":        {},
	"assign_goals":         {},
	"place_figure":         {},
	"calculate_gain":       {},
	"gain_figures":         {},
	"encounter":            {},
	"change_ownership":     {},
	"redistribute_figures": {},
	"check_card_reward":    {},
	"draw_field_card":      {},
	"end_phase":            {},
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	flowIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("flow_id", func(fl validator.FieldLevel) bool {
			return flowIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks the rule set for referential integrity and well-formed
// actions. Checks run in a fixed order and the first violation aborts; a
// rule set either validates as a whole or not at all. The engine must only
// be constructed from a rule set that validated successfully.
func (rs *RuleSet) Validate() error {
	if rs == nil {
		return tegerrors.NewValidationError(tegerrors.KindEmptyID, "ruleset", "rule set is nil")
	}

	if strings.TrimSpace(rs.ID) == "" {
		return tegerrors.NewValidationError(tegerrors.KindEmptyID, "ruleset.id", "rule set id must not be empty")
	}

	phaseIDs := make(map[string]struct{}, len(rs.Phases))
	for _, phase := range rs.Phases {
		if _, exists := phaseIDs[phase.ID]; exists {
			return tegerrors.NewValidationError(tegerrors.KindDuplicatePhaseID, "phases", fmt.Sprintf("duplicate phase id %q", phase.ID))
		}
		phaseIDs[phase.ID] = struct{}{}
	}

	for _, phase := range rs.Phases {
		if phase.NextPhase == "" {
			continue
		}
		if _, ok := phaseIDs[phase.NextPhase]; !ok {
			return unknownPhase(phase.ID, phase.NextPhase)
		}
	}

	for _, phase := range rs.Phases {
		for _, action := range phase.Actions {
			if err := validateAction(phase.ID, action, phaseIDs); err != nil {
				return err
			}
		}
	}

	if _, err := catalog.Unique(rs.Goals, "goals", func(g Goal) string { return g.ID }); err != nil {
		return err
	}

	if _, ok := phaseIDs[rs.DefaultPhase]; !ok {
		return tegerrors.NewValidationError(tegerrors.KindUnknownDefaultPhase, "default_phase", fmt.Sprintf("default phase %q is not a declared phase", rs.DefaultPhase))
	}

	v := validatorInstance()
	if err := v.Struct(rs); err != nil {
		return convertValidationError(err)
	}

	return nil
}

func validateAction(phaseID string, action Action, phaseIDs map[string]struct{}) error {
	if _, ok := ActionKinds[action.Kind]; !ok {
		return tegerrors.NewValidationError(tegerrors.KindInvalidActionKind, phaseID, fmt.Sprintf("invalid action kind %q", action.Kind))
	}

	for _, constraint := range action.Constraints {
		if strings.TrimSpace(constraint.Field) == "" {
			return tegerrors.NewValidationError(tegerrors.KindEmptyConstraintField, action.Kind, "empty constraint field")
		}
	}

	for _, change := range action.Changes {
		if err := validateStateChange(change); err != nil {
			return err
		}
	}

	for label, target := range action.Result {
		if _, ok := phaseIDs[target]; !ok {
			return unknownPhase(fmt.Sprintf("%s.%s.result[%s]", phaseID, action.Kind, label), target)
		}
	}

	return nil
}

func validateStateChange(change StateChange) error {
	switch change.Type {
	case ChangeTypeMoveFigures:
		mv := change.MoveFigures
		if mv == nil {
			return invalidChange("move_figures: missing body")
		}
		if mv.From == mv.To {
			return invalidChange("move_figures: from and to must differ")
		}
		if mv.Count == 0 {
			return invalidChange("move_figures: count must be > 0")
		}
	case ChangeTypeChangeOwner:
		co := change.ChangeOwner
		if co == nil {
			return invalidChange("change_owner: missing body")
		}
		if strings.TrimSpace(co.FieldID) == "" || strings.TrimSpace(co.NewOwner) == "" {
			return invalidChange("change_owner: field_id and new_owner must be set")
		}
	default:
		return invalidChange(fmt.Sprintf("unknown state change type %q", change.Type))
	}
	return nil
}

func unknownPhase(from, to string) error {
	return tegerrors.NewValidationError(tegerrors.KindUnknownPhaseReference, from, fmt.Sprintf("references unknown phase %q", to))
}

func invalidChange(message string) error {
	return tegerrors.NewValidationError(tegerrors.KindInvalidStateChange, "changes", message)
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		ve := ves[0]
		return tegerrors.NewValidationError(tegerrors.KindInvalidField, ve.Namespace(), fmt.Sprintf("failed validation for tag %q", ve.Tag()))
	}

	return tegerrors.NewValidationError(tegerrors.KindInvalidField, "", err.Error())
}
