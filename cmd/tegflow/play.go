package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tegflow/tegflow/internal/config"
	"github.com/tegflow/tegflow/internal/constraint"
	"github.com/tegflow/tegflow/internal/engine"
	"github.com/tegflow/tegflow/internal/logger"
	"github.com/tegflow/tegflow/internal/rules"
	"github.com/tegflow/tegflow/internal/session"
)

type playOptions struct {
	RulesFile string
	SessionID string
	UseCEL    bool
}

func newPlayCmd(root *rootFlags, cfg envConfig, log *logger.Logger) *cobra.Command {
	opts := playOptions{}

	cmd := &cobra.Command{
		Use:   "play [variant]",
		Short: "Step through a rule set interactively",
		Long: `Play loads a variant bundle (or a single rules file with --rules), builds a
phase-flow engine, and opens an interactive simulator. Actions legal in the
current phase are listed; executing one follows the declared transition.
With --session the final phase and action context are saved to the session
store on exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				rs   *rules.RuleSet
				data *config.GameData
				err  error
			)

			switch {
			case opts.RulesFile != "":
				rs, err = config.LoadRuleSet(opts.RulesFile)
			case len(args) == 1:
				data, err = config.LoadVariant(root.dataDir, args[0])
				if data != nil {
					rs = data.Rules
				}
			default:
				return fmt.Errorf("a variant name or --rules file is required")
			}
			if err != nil {
				return err
			}

			engineOpts := []engine.Option{}
			if root.verbose {
				engineOpts = append(engineOpts, engine.WithLogger(log))
			}
			if opts.UseCEL {
				ev, err := constraint.NewCELEvaluator()
				if err != nil {
					return err
				}
				engineOpts = append(engineOpts, engine.WithEvaluator(ev))
			}

			recorder := &engine.Recorder{}
			eng := engine.New(*rs, append(engineOpts, engine.WithObserver(recorder))...)

			model := newPlayModel(eng, recorder)
			program := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()))
			final, err := program.Run()
			if err != nil {
				return err
			}

			if opts.SessionID != "" {
				if err := saveSession(cfg, opts.SessionID, rs, data, eng); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session %q saved\n", opts.SessionID)
			}

			if m, ok := final.(playModel); ok && m.err != nil {
				return m.err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.RulesFile, "rules", "", "Play a single rules file instead of a variant bundle")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "Save the session under this id on exit")
	cmd.Flags().BoolVar(&opts.UseCEL, "cel", false, "Evaluate constraints with the CEL evaluator")

	return cmd
}

func saveSession(cfg envConfig, id string, rs *rules.RuleSet, data *config.GameData, eng *engine.Engine) error {
	store, err := session.Open(cfg.SessionDB)
	if err != nil {
		return err
	}
	defer store.Close()

	var state *session.State
	if data != nil {
		state = session.NewState(data.Board, rs, nil)
	} else {
		state = &session.State{Fields: map[string]session.FieldStatus{}}
	}
	state.Phase = eng.CurrentPhase()

	variant := rs.ID
	if data != nil {
		variant = data.Game.ID
	}

	return store.Save(context.Background(), id, variant, state, eng.Context().Values())
}
