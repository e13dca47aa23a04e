package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// Export formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		variantID int
		format    string
	)
	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Print the effective rows of a table variant",
		Long: `Print the rows of a table as seen through one variant. Keys are column
names; the row id is written under "id". The table may be named by name
or id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := a.openProject()
			if err != nil {
				return err
			}
			t, err := findTable(p, args[0])
			if err != nil {
				return err
			}
			if !hasVariant(t, variantID) {
				return fmt.Errorf("%w: table %s has no variant %d", errUsage, t.Name, variantID)
			}

			rows := t.EffectiveRows(variantID)
			switch format {
			case formatJSON:
				return writeJSON(cmd, exportRecords(t, rows))
			case formatYAML:
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(exportNode(t, rows)); err != nil {
					return fmt.Errorf("marshal yaml: %w", err)
				}
				return enc.Close()
			default:
				return fmt.Errorf("%w: unknown format %q (valid: json, yaml)", errUsage, format)
			}
		},
	}
	cmd.Flags().IntVar(&variantID, "variant", types.BaseVariantID, "variant id (0 is the base)")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or yaml")
	return cmd
}

// findTable looks a table up by name, then by id.
func findTable(p *types.Project, ref string) (*types.Table, error) {
	if t := p.TableByName(ref); t != nil {
		return t, nil
	}
	if t := p.TableByID(ref); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrTableNotFound, ref)
}

func hasVariant(t *types.Table, id int) bool {
	if id == types.BaseVariantID {
		return true
	}
	for _, v := range t.Variants {
		if v.ID == id {
			return true
		}
	}
	return false
}

// exportKeys returns the output key of every column, in column order. Blank
// or repeated names fall back to the column id.
func exportKeys(t *types.Table) []string {
	keys := make([]string, len(t.Columns))
	used := map[string]bool{"id": true}
	for i, col := range t.Columns {
		key := col.Name
		if key == "" || used[key] {
			key = col.ID
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func exportRecords(t *types.Table, rows []types.Row) []map[string]any {
	keys := exportKeys(t)
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := map[string]any{"id": row.ID}
		for i, col := range t.Columns {
			if v, ok := row.Cells[col.ID]; ok {
				rec[keys[i]] = exportValue(v)
			}
		}
		out = append(out, rec)
	}
	return out
}

// exportNode builds the YAML document by hand so that keys keep column
// order.
func exportNode(t *types.Table, rows []types.Row) *yaml.Node {
	keys := exportKeys(t)
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		m.Content = append(m.Content, scalar("id"), scalar(row.ID))
		for i, col := range t.Columns {
			v, ok := row.Cells[col.ID]
			if !ok {
				continue
			}
			m.Content = append(m.Content, scalar(keys[i]), valueNode(v))
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func valueNode(v types.CellValue) *yaml.Node {
	switch v.Kind {
	case types.CellNumber:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: types.FormatNumber(v.Number)}
	case types.CellBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(v.Bool)}
	case types.CellVec2, types.CellVec3, types.CellVec4:
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for i := 0; i < v.Dims(); i++ {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: types.FormatNumber(v.Vec[i])})
		}
		return n
	default:
		return scalar(v.Text)
	}
}

func exportValue(v types.CellValue) any {
	switch v.Kind {
	case types.CellNumber:
		return v.Number
	case types.CellBool:
		return v.Bool
	case types.CellVec2, types.CellVec3, types.CellVec4:
		return append([]float64(nil), v.Vec[:v.Dims()]...)
	default:
		return v.Text
	}
}
