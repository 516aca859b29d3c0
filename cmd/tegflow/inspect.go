package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tegflow/tegflow/internal/config"
	"github.com/tegflow/tegflow/internal/rules"
)

var (
	phaseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	arrowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func newInspectCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <rules-file>",
		Short: "Print the phase graph of a rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := config.LoadRuleSet(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rules %q (default phase: %s)\n\n", rs.ID, rs.DefaultPhase)

			for _, phase := range rs.Phases {
				marker := ""
				if phase.ID == rs.DefaultPhase {
					marker = " *"
				}
				fmt.Fprintf(out, "%s%s\n", phaseStyle.Render(phase.ID), marker)

				if len(phase.Actions) == 0 {
					fmt.Fprintf(out, "  %s\n", dimStyle.Render("(no actions — practical terminal)"))
				}
				for _, action := range phase.Actions {
					fmt.Fprintf(out, "  %s%s\n", actionStyle.Render(action.Kind), constraintSummary(action))
					for _, label := range sortedLabels(action.Result) {
						fmt.Fprintf(out, "    %s %s %s\n", label, arrowStyle.Render("->"), action.Result[label])
					}
				}
				if phase.NextPhase != "" {
					fmt.Fprintf(out, "  %s %s\n", arrowStyle.Render("next ->"), phase.NextPhase)
				}
				fmt.Fprintln(out)
			}

			if len(rs.Goals) > 0 {
				fmt.Fprintln(out, phaseStyle.Render("goals"))
				for _, goal := range rs.Goals {
					fmt.Fprintf(out, "  %s: %s\n", goal.ID, goal.Description)
				}
			}

			return nil
		},
	}

	return cmd
}

func constraintSummary(action rules.Action) string {
	if len(action.Constraints) == 0 {
		return ""
	}
	parts := make([]string, 0, len(action.Constraints))
	for _, c := range action.Constraints {
		op := c.Op
		if op == "" {
			op = "eq"
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", c.Field, op, c.Value))
	}
	return dimStyle.Render(" [" + strings.Join(parts, ", ") + "]")
}

func sortedLabels(result map[string]string) []string {
	labels := make([]string, 0, len(result))
	for label := range result {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
