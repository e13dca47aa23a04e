package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tabledb/internal/index"
)

func newQueryCmd(a *app) *cobra.Command {
	var indexPath string
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL query over the project",
		Long: `Load the project into a SQLite index and run one SQL statement against it.

Tables: folders, tables, columns, variants, table_rows, cells, documents,
blocks. Variant rows and cells hold effective values, so a variant can be
read without applying its overlay by hand.

The index lives in memory unless --index or index_path in config.yaml
names a file; a file index is rebuilt on every run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := a.openProject()
			if err != nil {
				return err
			}
			if indexPath == "" {
				indexPath = a.cfg.GetString(cfgKeyIndexPath)
			}

			ix, err := index.Build(cmd.Context(), p, indexPath)
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}
			defer ix.Close()

			res, err := ix.Query(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}

			if a.flags.jsonMode {
				records := make([]map[string]any, 0, len(res.Rows))
				for _, row := range res.Rows {
					rec := make(map[string]any, len(res.Columns))
					for i, col := range res.Columns {
						rec[col] = row[i]
					}
					records = append(records, rec)
				}
				return writeJSON(cmd, records)
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, strings.Join(res.Columns, "\t"))
			for _, row := range res.Rows {
				fields := make([]string, len(row))
				for i, v := range row {
					if v != nil {
						fields[i] = fmt.Sprint(v)
					}
				}
				fmt.Fprintln(w, strings.Join(fields, "\t"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&indexPath, "index", "", "SQLite file to build the index in (default: in memory)")
	return cmd
}
