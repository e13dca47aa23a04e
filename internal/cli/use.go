package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tabledb/internal/paths"
)

func newUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <dir>",
		Short: "Make a project the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := paths.WriteActiveProject(a.configDir, args[0]); err != nil {
				return err
			}
			root, err := paths.ReadActiveProject(a.configDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active project: %s\n", root)
			return nil
		},
	}
}
