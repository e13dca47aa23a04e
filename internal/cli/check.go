package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// errDrift reports that a project on disk differs from its normalized form.
var errDrift = errors.New("project is not normalized")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report repairs a save would make",
		Long: `Load the project, save it into a scratch directory and print a unified
diff of every file that differs from the copy on disk. Exits non-zero when
any file differs; run normalize to apply the repairs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, p, err := a.openProject()
			if err != nil {
				return err
			}

			scratch, err := os.MkdirTemp("", "tabledb-check-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(scratch)

			if err := storage.NewStore(scratch, a.storeOptions()).Save(p); err != nil {
				return fmt.Errorf("normalize into scratch: %w", err)
			}

			diffs, err := diffProjects(store.Root(), scratch, p)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				if err := writeJSON(cmd, diffs); err != nil {
					return err
				}
			} else {
				for _, d := range diffs {
					fmt.Fprint(cmd.OutOrStdout(), d.Diff)
				}
			}
			if len(diffs) > 0 {
				return fmt.Errorf("%w: %d files differ", errDrift, len(diffs))
			}
			if !a.flags.jsonMode {
				fmt.Fprintln(cmd.OutOrStdout(), "Project is normalized")
			}
			return nil
		},
	}
}

type fileDiff struct {
	Path string `json:"path"`
	Diff string `json:"diff"`
}

// diffProjects compares the files that belong to p in the two roots. A file
// present on only one side is compared against empty content.
func diffProjects(current, normalized string, p *types.Project) ([]fileDiff, error) {
	set := map[string]bool{storage.ManifestFile: true}
	for _, root := range []string{current, normalized} {
		for _, t := range p.Tables {
			files, err := storage.TableFiles(root, t.FileName)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				set[f] = true
			}
		}
		for _, d := range p.Documents {
			for _, f := range storage.DocumentFiles(root, d.FileName) {
				set[f] = true
			}
		}
	}
	rels := make([]string, 0, len(set))
	for f := range set {
		rels = append(rels, f)
	}
	sort.Strings(rels)

	var out []fileDiff
	for _, rel := range rels {
		before, err := readOptional(filepath.Join(current, rel))
		if err != nil {
			return nil, err
		}
		after, err := readOptional(filepath.Join(normalized, rel))
		if err != nil {
			return nil, err
		}
		if before == after {
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(before),
			B:        difflib.SplitLines(after),
			FromFile: filepath.ToSlash(filepath.Join("a", rel)),
			ToFile:   filepath.ToSlash(filepath.Join("b", rel)),
			Context:  3,
		})
		if err != nil {
			return nil, fmt.Errorf("diffing %s: %w", rel, err)
		}
		out = append(out, fileDiff{Path: filepath.ToSlash(rel), Diff: text})
	}
	return out, nil
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	return string(data), err
}
