package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

type tableInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Derived  bool   `json:"derived"`
	Columns  int    `json:"columns"`
	Rows     int    `json:"rows"`
	Variants int    `json:"variants"`
	Views    int    `json:"views"`
	Bytes    uint64 `json:"bytes"`
}

type documentInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Blocks int    `json:"blocks"`
	Bytes  uint64 `json:"bytes"`
}

type projectInfo struct {
	Name      string         `json:"name"`
	Root      string         `json:"root"`
	Folders   int            `json:"folders"`
	Tables    []tableInfo    `json:"tables"`
	Documents []documentInfo `json:"documents"`
	Bytes     uint64         `json:"bytes"`
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Summarize the active project",
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
				return writeJSON(cmd, info)
			}
			printInfo(cmd, info)
			return nil
		},
	}
}

func collectInfo(root string, p *types.Project) (*projectInfo, error) {
	info := &projectInfo{
		Name:      p.Name,
		Root:      root,
		Folders:   len(p.Folders),
		Tables:    []tableInfo{},
		Documents: []documentInfo{},
	}
	info.Bytes = sizeOf(root, []string{storage.ManifestFile})

	for _, t := range p.Tables {
		files, err := storage.TableFiles(root, t.FileName)
		if err != nil {
			return nil, err
		}
		ti := tableInfo{
			ID:       t.ID,
			Name:     t.Name,
			Derived:  t.IsDerived(),
			Columns:  len(t.Columns),
			Rows:     len(t.Rows),
			Variants: len(t.Variants),
			Views:    len(t.Views),
			Bytes:    sizeOf(root, files),
		}
		info.Tables = append(info.Tables, ti)
		info.Bytes += ti.Bytes
	}
	for _, d := range p.Documents {
		di := documentInfo{
			ID:     d.ID,
			Title:  d.Title,
			Blocks: len(d.Blocks),
			Bytes:  sizeOf(root, storage.DocumentFiles(root, d.FileName)),
		}
		info.Documents = append(info.Documents, di)
		info.Bytes += di.Bytes
	}
	return info, nil
}

// sizeOf sums the sizes of the files at the given root-relative paths.
func sizeOf(root string, files []string) uint64 {
	var total uint64
	for _, f := range files {
		if fi, err := os.Stat(filepath.Join(root, f)); err == nil {
			total += uint64(fi.Size())
		}
	}
	return total
}

func printInfo(cmd *cobra.Command, info *projectInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project:   %s\n", info.Name)
	fmt.Fprintf(out, "Root:      %s\n", info.Root)
	fmt.Fprintf(out, "Folders:   %d\n", info.Folders)
	fmt.Fprintf(out, "Size:      %s\n\n", humanize.Bytes(info.Bytes))

	w := newTable(out)
	fmt.Fprintln(w, "TABLE\tKIND\tCOLUMNS\tROWS\tVARIANTS\tSIZE")
	for _, t := range info.Tables {
		kind := "regular"
		if t.Derived {
			kind = "derived"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", t.Name, kind, t.Columns, t.Rows, t.Variants, humanize.Bytes(t.Bytes))
	}
	w.Flush()

	fmt.Fprintln(out)
	w = newTable(out)
	fmt.Fprintln(w, "DOCUMENT\tBLOCKS\tSIZE")
	for _, d := range info.Documents {
		fmt.Fprintf(w, "%s\t%d\t%s\n", d.Title, d.Blocks, humanize.Bytes(d.Bytes))
	}
	w.Flush()
}
