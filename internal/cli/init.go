package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tabledb/internal/paths"
	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new project",
		Long: `Create a project directory holding a seeded manifest, one folder per
scope, a starter table and an empty document, then make it the active
project.

The directory defaults to --project, then project_dir from config.yaml,
then the working directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.flags.projectDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				dir = a.cfg.GetString(cfgKeyProjectDir)
			}
			if dir == "" {
				dir = "."
			}
			root, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			if storage.Exists(root) {
				return fmt.Errorf("%w: %s already holds a project", types.ErrInvalidProjectDir, root)
			}
			if name == "" {
				name = filepath.Base(root)
			}

			p := storage.SeedProject(name)
			if err := storage.NewStore(root, a.storeOptions()).Save(p); err != nil {
				return fmt.Errorf("initialize project: %w", err)
			}
			if err := paths.WriteActiveProject(a.configDir, root); err != nil {
				return fmt.Errorf("record active project: %w", err)
			}

			if a.flags.jsonMode {
				return writeJSON(cmd, map[string]string{"name": name, "root": root})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized project %q in %s\n", name, root)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name (default: directory name)")
	return cmd
}
