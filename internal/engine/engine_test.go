package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tegflow/tegflow/internal/constraint"
	"github.com/tegflow/tegflow/internal/rules"
	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

func testRuleSet() rules.RuleSet {
	return rules.RuleSet{
		ID:           "teg",
		DefaultPhase: "setup",
		Phases: []rules.Phase{
			{
				ID: "setup",
				Actions: []rules.Action{
					{
						Kind: "place_figure",
						Constraints: []rules.Constraint{
							{Field: "figures_left", Op: "gt", Value: rules.NumberValue(0)},
						},
						Result: map[string]string{"placed": "setup"},
					},
					{Kind: "end_phase", Result: map[string]string{"done": "place"}},
				},
			},
			{
				ID: "place",
				Actions: []rules.Action{
					{Kind: "end_phase", Result: map[string]string{"done": "setup"}},
				},
			},
		},
	}
}

func TestNewStartsAtDefaultPhase(t *testing.T) {
	t.Parallel()

	eng := New(testRuleSet())
	require.Equal(t, "setup", eng.CurrentPhase())
}

func TestExecuteActionTransitionsAndNotifies(t *testing.T) {
	t.Parallel()

	recorder := &Recorder{}
	eng := New(testRuleSet(), WithObserver(recorder))

	require.NoError(t, eng.ExecuteAction("end_phase", "done"))
	require.Equal(t, "place", eng.CurrentPhase())

	require.Equal(t, []Event{
		ActionExecuted{Phase: "setup", Action: "end_phase", Result: "done"},
		PhaseChanged{From: "setup", To: "place"},
	}, recorder.Events)
}

func TestExecuteActionSelfTransition(t *testing.T) {
	t.Parallel()

	recorder := &Recorder{}
	eng := New(testRuleSet(), WithObserver(recorder))

	require.NoError(t, eng.ExecuteAction("place_figure", "placed"))
	require.Equal(t, "setup", eng.CurrentPhase())

	// Self-transitions still emit both events.
	require.Equal(t, []Event{
		ActionExecuted{Phase: "setup", Action: "place_figure", Result: "placed"},
		PhaseChanged{From: "setup", To: "setup"},
	}, recorder.Events)
}

func TestExecuteActionUnknownAction(t *testing.T) {
	t.Parallel()

	recorder := &Recorder{}
	eng := New(testRuleSet(), WithObserver(recorder))

	err := eng.ExecuteAction("encounter", "won")

	var ee *tegerrors.EngineError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, tegerrors.KindActionNotFound, ee.Kind)
	require.Equal(t, "setup", ee.Phase)
	require.Equal(t, "encounter", ee.Action)

	// Failed calls leave the phase untouched and emit nothing.
	require.Equal(t, "setup", eng.CurrentPhase())
	require.Empty(t, recorder.Events)
}

func TestExecuteActionUnknownResult(t *testing.T) {
	t.Parallel()

	recorder := &Recorder{}
	eng := New(testRuleSet(), WithObserver(recorder))

	err := eng.ExecuteAction("end_phase", "fail")

	var ee *tegerrors.EngineError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, tegerrors.KindInvalidActionOrResult, ee.Kind)
	require.Equal(t, "fail", ee.Result)

	require.Equal(t, "setup", eng.CurrentPhase())
	require.Empty(t, recorder.Events)
}

func TestIsActionAllowedIsPure(t *testing.T) {
	t.Parallel()

	recorder := &Recorder{}
	eng := New(testRuleSet(), WithObserver(recorder))

	require.True(t, eng.IsActionAllowed("place_figure"))
	require.True(t, eng.IsActionAllowed("end_phase"))
	require.False(t, eng.IsActionAllowed("encounter"))

	require.Equal(t, "setup", eng.CurrentPhase())
	require.Empty(t, recorder.Events)
}

func TestAvailableActions(t *testing.T) {
	t.Parallel()

	eng := New(testRuleSet())
	require.Equal(t, []string{"place_figure", "end_phase"}, eng.AvailableActions())

	require.NoError(t, eng.ExecuteAction("end_phase", "done"))
	require.Equal(t, []string{"end_phase"}, eng.AvailableActions())
}

func TestAvailableActionsUnknownPhase(t *testing.T) {
	t.Parallel()

	rs := testRuleSet()
	rs.DefaultPhase = "limbo"

	eng := New(rs)
	require.Empty(t, eng.AvailableActions())
	require.False(t, eng.IsActionAllowed("end_phase"))
}

func TestResultLabels(t *testing.T) {
	t.Parallel()

	eng := New(testRuleSet())
	require.ElementsMatch(t, []string{"done"}, eng.ResultLabels("end_phase"))
	require.Nil(t, eng.ResultLabels("encounter"))
}

func TestCheckConstraints(t *testing.T) {
	t.Parallel()

	recorder := &Recorder{}
	eng := New(testRuleSet(), WithObserver(recorder))

	// Attribute missing: constraint fails, event still emitted.
	ok, err := eng.CheckConstraints("place_figure")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []Event{
		ConstraintChecked{Phase: "setup", Action: "place_figure", Success: false},
	}, recorder.Events)

	recorder.Reset()
	eng.Context().SetNumber("figures_left", 4)

	ok, err = eng.CheckConstraints("place_figure")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []Event{
		ConstraintChecked{Phase: "setup", Action: "place_figure", Success: true},
	}, recorder.Events)

	// The check itself never transitions.
	require.Equal(t, "setup", eng.CurrentPhase())
}

func TestCheckConstraintsUnknownAction(t *testing.T) {
	t.Parallel()

	recorder := &Recorder{}
	eng := New(testRuleSet(), WithObserver(recorder))

	_, err := eng.CheckConstraints("encounter")

	var ee *tegerrors.EngineError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, tegerrors.KindActionNotFound, ee.Kind)
	require.Empty(t, recorder.Events)
}

func TestCheckConstraintsWithCELEvaluator(t *testing.T) {
	t.Parallel()

	ev, err := constraint.NewCELEvaluator()
	require.NoError(t, err)

	eng := New(testRuleSet(), WithEvaluator(ev))
	eng.Context().SetNumber("figures_left", 1)

	ok, err := eng.CheckConstraints("place_figure")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestObserversNotifiedInRegistrationOrder(t *testing.T) {
	t.Parallel()

	first := &Recorder{}
	second := &orderedObserver{}
	eng := New(testRuleSet(), WithObserver(first))
	eng.AddObserver(second)
	second.other = first

	require.NoError(t, eng.ExecuteAction("end_phase", "done"))
	require.True(t, second.sawFirstAhead)
}

// orderedObserver checks that the observer registered before it has already
// seen at least as many events at every delivery.
type orderedObserver struct {
	other         *Recorder
	seen          int
	sawFirstAhead bool
}

func (o *orderedObserver) HandleEvent(Event) {
	o.seen++
	o.sawFirstAhead = len(o.other.Events) >= o.seen
}

func TestAddObserverIgnoresNil(t *testing.T) {
	t.Parallel()

	eng := New(testRuleSet())
	eng.AddObserver(nil)
	require.NoError(t, eng.ExecuteAction("end_phase", "done"))
}
