package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

func newTableCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage tables",
	}
	cmd.AddCommand(newTableListCmd(a))
	cmd.AddCommand(newTableAddCmd(a))
	return cmd
}

func newTableListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tables of the project",
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
				return writeJSON(cmd, info.Tables)
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tCOLUMNS\tROWS\tVARIANTS")
			for _, t := range info.Tables {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", t.ID, t.Name, t.Columns, t.Rows, t.Variants)
			}
			return w.Flush()
		},
	}
}

func newTableAddCmd(a *app) *cobra.Command {
	var folderID string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an empty table with Id and Name columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, p, err := a.openProject()
			if err != nil {
				return err
			}
			name := args[0]
			if p.TableByName(name) != nil {
				return fmt.Errorf("%w: table %q already exists", types.ErrInvalidName, name)
			}

			t := storage.NewTable(name)
			if folderID != "" {
				f := p.FolderByID(folderID)
				if f == nil || f.Scope != types.ScopeTables {
					return fmt.Errorf("%w: %q is not a table folder", errUsage, folderID)
				}
				t.FolderID = folderID
			} else {
				t.FolderID = firstFolder(p, types.ScopeTables)
			}
			p.Tables = append(p.Tables, t)

			if err := a.saveProject(store, p); err != nil {
				return fmt.Errorf("save project: %w", err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd, map[string]string{"id": t.ID, "name": t.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", "", "table folder id (default: first table folder)")
	return cmd
}

func firstFolder(p *types.Project, scope types.FolderScope) string {
	for _, f := range p.Folders {
		if f.Scope == scope {
			return f.ID
		}
	}
	return ""
}
