package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tegflow/tegflow/internal/config"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type validateOptions struct {
	RulesFile string
}

func newValidateCmd(root *rootFlags) *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [variant]",
		Short: "Validate a variant bundle or a single rules file",
		Long: `Validate loads a variant bundle (<variant>.game.yaml, <variant>.rules.yaml,
<variant>.board.yaml, <variant>.pieces.yaml and optionally <variant>.dice.yaml)
from the data directory and reports the first violation found, or validates a
single rules file when --rules is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if opts.RulesFile != "" {
				rs, err := config.LoadRuleSet(opts.RulesFile)
				if err != nil {
					fmt.Fprintf(out, "%s %s\n", failStyle.Render("✗"), err)
					return err
				}
				fmt.Fprintf(out, "%s rules %q: %d phases, %d goals\n",
					okStyle.Render("✓"), rs.ID, len(rs.Phases), len(rs.Goals))
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("a variant name or --rules file is required")
			}

			data, err := config.LoadVariant(root.dataDir, args[0])
			if err != nil {
				fmt.Fprintf(out, "%s %s\n", failStyle.Render("✗"), err)
				return err
			}

			fmt.Fprintf(out, "%s game %q (%s)\n", okStyle.Render("✓"), data.Game.ID, data.Game.Name)
			fmt.Fprintf(out, "%s rules %q: %d phases, %d goals\n",
				okStyle.Render("✓"), data.Rules.ID, len(data.Rules.Phases), len(data.Rules.Goals))
			fmt.Fprintf(out, "%s board %q: %d fields in %d sets, %d relations\n",
				okStyle.Render("✓"), data.Board.ID, len(data.Board.Fields), len(data.Board.Sets), len(data.Board.Relations))
			fmt.Fprintf(out, "%s pieces %q: %d sets\n", okStyle.Render("✓"), data.Pieces.ID, len(data.Pieces.Sets))
			if data.Dice != nil {
				fmt.Fprintf(out, "%s dice %q: %d sets\n", okStyle.Render("✓"), data.Dice.ID, len(data.Dice.Sets))
			} else {
				fmt.Fprintln(out, dimStyle.Render("- no dice file"))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.RulesFile, "rules", "", "Validate a single rules file instead of a variant bundle")

	return cmd
}
