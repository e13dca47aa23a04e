package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDocCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Inspect documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the documents of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, p, err := a.openProject()
			if err != nil {
				return err
			}
			info, err := collectInfo(store.Root(), p)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd, info.Documents)
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tTITLE\tBLOCKS")
			for _, d := range info.Documents {
				fmt.Fprintf(w, "%s\t%s\t%d\n", d.ID, d.Title, d.Blocks)
			}
			return w.Flush()
		},
	})
	return cmd
}
