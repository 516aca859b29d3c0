package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueUnmarshalYAML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
		want Value
	}{
		{name: "integer becomes number", yaml: "value: 3", want: NumberValue(3)},
		{name: "float becomes number", yaml: "value: 2.5", want: NumberValue(2.5)},
		{name: "bool is preserved", yaml: "value: true", want: BoolValue(true)},
		{name: "string is preserved", yaml: `value: "red"`, want: StringValue("red")},
		{name: "bare word is a string", yaml: "value: kamchatka", want: StringValue("kamchatka")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var doc struct {
				Value Value `yaml:"value"`
			}
			require.NoError(t, yaml.Unmarshal([]byte(tc.yaml), &doc))
			require.Equal(t, tc.want, doc.Value)
		})
	}
}

func TestValueUnmarshalRejectsNonScalar(t *testing.T) {
	t.Parallel()

	var doc struct {
		Value Value `yaml:"value"`
	}
	err := yaml.Unmarshal([]byte("value:\n  - 1\n  - 2\n"), &doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "scalar")
}

func TestValueCompare(t *testing.T) {
	t.Parallel()

	cmp, ordered := NumberValue(1).Compare(NumberValue(2))
	require.True(t, ordered)
	require.Equal(t, -1, cmp)

	cmp, ordered = StringValue("b").Compare(StringValue("a"))
	require.True(t, ordered)
	require.Equal(t, 1, cmp)

	_, ordered = BoolValue(true).Compare(BoolValue(false))
	require.False(t, ordered)

	_, ordered = NumberValue(1).Compare(StringValue("1"))
	require.False(t, ordered)
}

func TestStateChangeUnmarshalYAML(t *testing.T) {
	t.Parallel()

	moveYAML := `
type: move_figures
from: brazil
to: peru
count: 3
`
	var move StateChange
	require.NoError(t, yaml.Unmarshal([]byte(moveYAML), &move))
	require.Equal(t, ChangeTypeMoveFigures, move.Type)
	require.NotNil(t, move.MoveFigures)
	require.Nil(t, move.ChangeOwner)
	require.Equal(t, "brazil", move.MoveFigures.From)
	require.Equal(t, uint32(3), move.MoveFigures.Count)

	ownerYAML := `
type: change_owner
field_id: peru
new_owner: blue
`
	var owner StateChange
	require.NoError(t, yaml.Unmarshal([]byte(ownerYAML), &owner))
	require.Equal(t, ChangeTypeChangeOwner, owner.Type)
	require.NotNil(t, owner.ChangeOwner)
	require.Nil(t, owner.MoveFigures)
	require.Equal(t, "blue", owner.ChangeOwner.NewOwner)
}

func TestRuleSetDecode(t *testing.T) {
	t.Parallel()

	doc := `
id: teg
default_phase: setup
phases:
  - id: setup
    actions:
      - kind: place_figure
        constraints:
          - field: figures_left
            op: gt
            value: 0
        result:
          placed: setup
          done: attack
  - id: attack
    actions:
      - kind: encounter
        result:
          won: attack
        changes:
          - type: change_owner
            field_id: target
            new_owner: attacker
      - kind: end_phase
        result:
          done: setup
goals:
  - id: conquer_south
    name: South
    description: Control every southern field.
`
	var rs RuleSet
	require.NoError(t, yaml.Unmarshal([]byte(doc), &rs))

	require.Equal(t, "teg", rs.ID)
	require.Equal(t, "setup", rs.DefaultPhase)
	require.Len(t, rs.Phases, 2)

	setup, ok := rs.Phase("setup")
	require.True(t, ok)
	place, ok := setup.Action("place_figure")
	require.True(t, ok)
	require.Len(t, place.Constraints, 1)
	require.Equal(t, "gt", place.Constraints[0].Op)
	require.Equal(t, NumberValue(0), place.Constraints[0].Value)
	require.Equal(t, "attack", place.Result["done"])

	attack, ok := rs.Phase("attack")
	require.True(t, ok)
	encounter, ok := attack.Action("encounter")
	require.True(t, ok)
	require.Len(t, encounter.Changes, 1)
	require.Equal(t, ChangeTypeChangeOwner, encounter.Changes[0].Type)

	require.Len(t, rs.Goals, 1)

	_, ok = rs.Phase("missing")
	require.False(t, ok)
}
