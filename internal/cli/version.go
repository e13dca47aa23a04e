package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tabledb/pkg/tabledb"
)

const modulePath = "github.com/mesh-intelligence/tabledb"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tabledb version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "tabledb v%s\nmodule: %s\n", tabledb.Version, modulePath)
			return nil
		},
	}
}
