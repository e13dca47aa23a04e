package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tabledb/internal/paths"
	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/tabledb"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// testEnv isolates one CLI test: its own config directory and no
// inherited project selection.
type testEnv struct {
	t         *testing.T
	configDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(paths.EnvProjectDir, "")
	t.Setenv(paths.EnvConfigDir, "")
	return &testEnv{t: t, configDir: t.TempDir()}
}

// run executes the root command and returns its standard output.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "tabledb %s", strings.Join(args, " "))
	return out
}

// initProject creates a seeded project and makes it active.
func (e *testEnv) initProject(name string) string {
	e.t.Helper()
	root := filepath.Join(e.t.TempDir(), name)
	e.mustRun("init", root, "--name", name)
	return root
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "tabledb v"+tabledb.Version)
	assert.Contains(t, out, modulePath)
}

func TestInitCreatesActiveProject(t *testing.T) {
	env := newTestEnv(t)
	root := env.initProject("demo")

	assert.True(t, storage.Exists(root))
	active, err := paths.ReadActiveProject(env.configDir)
	require.NoError(t, err)
	assert.Equal(t, root, active)
	assert.FileExists(t, filepath.Join(env.configDir, configFileExt))

	_, err = env.run("init", root)
	assert.ErrorIs(t, err, types.ErrInvalidProjectDir)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestUseSwitchesActiveProject(t *testing.T) {
	env := newTestEnv(t)
	first := env.initProject("first")
	second := env.initProject("second")

	out := env.mustRun("info", "--json")
	assert.Contains(t, out, `"name": "second"`)

	env.mustRun("use", first)
	out = env.mustRun("info", "--json")
	assert.Contains(t, out, `"name": "first"`)

	out = env.mustRun("--project", second, "info", "--json")
	assert.Contains(t, out, `"name": "second"`)

	_, err := env.run("use", t.TempDir())
	assert.ErrorIs(t, err, types.ErrInvalidProjectDir)
}

func TestNoProject(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("--project", t.TempDir(), "info")
	assert.ErrorIs(t, err, types.ErrProjectNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestInfoJSON(t *testing.T) {
	env := newTestEnv(t)
	root := env.initProject("demo")

	var info projectInfo
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("info", "--json")), &info))
	assert.Equal(t, "demo", info.Name)
	assert.Equal(t, root, info.Root)
	assert.Equal(t, 2, info.Folders)
	require.Len(t, info.Tables, 1)
	assert.Equal(t, storage.SeedTableName, info.Tables[0].Name)
	assert.Equal(t, 2, info.Tables[0].Columns)
	assert.NotZero(t, info.Tables[0].Bytes)
	require.Len(t, info.Documents, 1)
	assert.Equal(t, storage.SeedDocumentTitle, info.Documents[0].Title)
	assert.Greater(t, info.Bytes, info.Tables[0].Bytes)

	out := env.mustRun("info")
	assert.Contains(t, out, "Project:   demo")
	assert.Contains(t, out, storage.SeedTableName)
}

func TestTableAddAndList(t *testing.T) {
	env := newTestEnv(t)
	root := env.initProject("demo")

	id := strings.TrimSpace(env.mustRun("table", "add", "Items"))
	require.NotEmpty(t, id)

	p, err := storage.NewStore(root, storage.Options{}).Load()
	require.NoError(t, err)
	added := p.TableByName("Items")
	require.NotNil(t, added)
	assert.Equal(t, id, added.ID)
	assert.Equal(t, p.Tables[0].FolderID, added.FolderID)

	var tables []tableInfo
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("table", "list", "--json")), &tables))
	require.Len(t, tables, 2)
	assert.Equal(t, "Items", tables[1].Name)

	_, err = env.run("table", "add", "Items")
	assert.ErrorIs(t, err, types.ErrInvalidName)

	_, err = env.run("table", "add", "Other", "--folder", "missing")
	assert.ErrorIs(t, err, errUsage)

	_, ok, err := paths.ReadChangeSignal(root)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDocList(t *testing.T) {
	env := newTestEnv(t)
	env.initProject("demo")

	out := env.mustRun("doc", "list")
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, storage.SeedDocumentTitle)
}

func TestCheckAndNormalize(t *testing.T) {
	env := newTestEnv(t)
	root := env.initProject("demo")

	out := env.mustRun("check")
	assert.Contains(t, out, "Project is normalized")

	p, err := storage.NewStore(root, storage.Options{}).Load()
	require.NoError(t, err)
	stale := filepath.Join(storage.TablesDir, p.Tables[0].FileName+".variants.jsonl")
	require.NoError(t, os.WriteFile(filepath.Join(root, stale), []byte("\n"), 0o644))

	out, err = env.run("check")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDrift))
	assert.Equal(t, exitUserError, exitCode(err))
	assert.Contains(t, out, "--- a/"+filepath.ToSlash(stale))

	env.mustRun("normalize")
	assert.NoFileExists(t, filepath.Join(root, stale))
	out = env.mustRun("check")
	assert.Contains(t, out, "Project is normalized")
}

func TestQuery(t *testing.T) {
	env := newTestEnv(t)
	env.initProject("demo")

	out := env.mustRun("query", "--json", "SELECT name FROM tables")
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Equal(t, []map[string]any{{"name": storage.SeedTableName}}, records)

	out = env.mustRun("query", "SELECT kind FROM columns ORDER BY ordinal")
	assert.Equal(t, []string{"kind", "Id", "Text"}, strings.Fields(out))

	_, err := env.run("query", "SELECT * FROM nowhere")
	assert.ErrorIs(t, err, errUsage)
}

func TestQueryIndexFile(t *testing.T) {
	env := newTestEnv(t)
	env.initProject("demo")

	path := filepath.Join(t.TempDir(), "index.db")
	env.mustRun("query", "--index", path, "SELECT count(*) FROM documents")
	assert.FileExists(t, path)
}

// exportProject saves a project with one table and one variant overlay.
func exportProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	items := &types.Table{
		ID:       "t1",
		Name:     "Items",
		FileName: "items",
		Columns: []types.Column{
			types.NewColumn("c1", "Name", types.KindText),
			types.NewColumn("c2", "Qty", types.KindNumber),
			types.NewColumn("c3", "Pos", types.KindVec2),
		},
		Variants: []types.Variant{{ID: 1, Name: "Alt"}},
		Rows: []types.Row{{ID: "r1", Cells: map[string]types.CellValue{
			"c1": types.TextCell("bolt"),
			"c2": types.NumberCell(3),
			"c3": types.VectorCell(false, 1, 2),
		}}},
	}
	delta := types.VariantDelta{VariantID: 1}
	delta.SetCell("r1", "c2", types.NumberCell(5))
	delta.AddedRows = []types.Row{{ID: "r2", Cells: map[string]types.CellValue{"c1": types.TextCell("nut")}}}
	items.VariantDeltas = []types.VariantDelta{delta}

	p := &types.Project{Name: "export", Tables: []*types.Table{items}}
	require.NoError(t, storage.NewStore(root, storage.Options{}).Save(p))
	return root
}

func TestExportJSON(t *testing.T) {
	env := newTestEnv(t)
	root := exportProject(t)

	out := env.mustRun("--project", root, "export", "Items")
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Equal(t, []map[string]any{
		{"id": "r1", "Name": "bolt", "Qty": 3.0, "Pos": []any{1.0, 2.0}},
	}, records)

	out = env.mustRun("--project", root, "export", "t1", "--variant", "1")
	records = nil
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, 5.0, records[0]["Qty"])
	assert.Equal(t, map[string]any{"id": "r2", "Name": "nut"}, records[1])
}

func TestExportYAML(t *testing.T) {
	env := newTestEnv(t)
	root := exportProject(t)

	out := env.mustRun("--project", root, "export", "Items", "--variant", "1", "--format", "yaml")
	var records []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "bolt", records[0]["Name"])
	assert.Equal(t, 5, records[0]["Qty"])
	assert.Equal(t, []any{1, 2}, records[0]["Pos"])

	// Keys follow column order.
	assert.Less(t, strings.Index(out, "Name:"), strings.Index(out, "Qty:"))
	assert.Less(t, strings.Index(out, "Qty:"), strings.Index(out, "Pos:"))
}

func TestExportErrors(t *testing.T) {
	env := newTestEnv(t)
	root := exportProject(t)

	_, err := env.run("--project", root, "export", "Missing")
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	_, err = env.run("--project", root, "export", "Items", "--variant", "9")
	assert.ErrorIs(t, err, errUsage)

	_, err = env.run("--project", root, "export", "Items", "--format", "csv")
	assert.ErrorIs(t, err, errUsage)
}

func TestLogLevel(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("--log-level", "loud", "doc", "list")
	assert.ErrorIs(t, err, errUsage)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"missing manifest", types.ErrProjectNotFound, exitUserError},
		{"no active project", types.ErrNoActiveProject, exitUserError},
		{"drift", errDrift, exitUserError},
		{"bad schema", types.ErrInvalidSchema, exitSysError},
		{"other", errors.New("disk full"), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
