package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tegflow/tegflow/internal/session"
)

func newSessionsCmd(cfg envConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored game sessions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.Open(cfg.SessionDB)
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(context.Background())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(out, "no sessions stored")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(out, "%s\t%s\tphase=%s\t%s\n",
					info.ID, info.Variant, info.Phase, info.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.Open(cfg.SessionDB)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %q deleted\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(remove)

	return cmd
}
