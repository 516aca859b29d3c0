package main

import (
	"github.com/spf13/cobra"

	"github.com/tegflow/tegflow/internal/logger"
)

type rootFlags struct {
	verbose bool
	dataDir string
}

func newRootCmd(cfg envConfig, log *logger.Logger) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "tegflow",
		Short:         "tegflow validates and plays declarative territorial game rules",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.dataDir, "dir", cfg.DataDir, "Directory holding variant data files")

	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newInspectCmd(flags))
	cmd.AddCommand(newPlayCmd(flags, cfg, log))
	cmd.AddCommand(newSessionsCmd(cfg))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
