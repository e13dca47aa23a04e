package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Load and save the project, applying every repair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, p, err := a.openProject()
			if err != nil {
				return err
			}
			if err := a.saveProject(store, p); err != nil {
				return fmt.Errorf("save project: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Normalized %s\n", store.Root())
			return nil
		},
	}
}
