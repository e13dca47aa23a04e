// Package storage reads and writes a table database project directory.
//
// The on-disk layout anchored at a project root is:
//
//	project.json
//	tables/{fileName}.schema.json
//	tables/{fileName}.rows.jsonl            regular tables
//	tables/{fileName}.variants.jsonl        regular tables, overlay log
//	tables/{fileName}.own-data.jsonl        derived tables, base locals
//	tables/{fileName}.own-data@v{N}.jsonl   derived tables, per variant
//	tables/{fileName}.views.json            optional
//	docs/{fileName}.meta.json
//	docs/{fileName}.blocks.jsonl
//
// JSON files are the source of truth. Load repairs what it can and only
// fails when the manifest or a referenced schema is missing or unparseable.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/tabledb/internal/fsutil"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// File and directory names of a project.
const (
	ManifestFile = "project.json"
	TablesDir    = "tables"
	DocsDir      = "docs"

	schemaSuffix   = ".schema.json"
	rowsSuffix     = ".rows.jsonl"
	variantsSuffix = ".variants.jsonl"
)

// Store loads and saves one project directory. A Store holds no state
// between calls; every Load and Save is a single sequential pass.
type Store struct {
	root  string
	opts  Options
	codec *codec
}

// NewStore returns a store for the project rooted at root.
func NewStore(root string, opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{root: root, opts: opts, codec: newCodec(opts)}
}

// Root returns the project root directory.
func (s *Store) Root() string { return s.root }

// ManifestPath returns the path of project.json.
func (s *Store) ManifestPath() string { return filepath.Join(s.root, ManifestFile) }

// TablesPath returns the directory holding table files.
func (s *Store) TablesPath() string { return filepath.Join(s.root, TablesDir) }

// DocsPath returns the directory holding document files.
func (s *Store) DocsPath() string { return filepath.Join(s.root, DocsDir) }

// Exists reports whether root holds a project manifest.
func Exists(root string) bool {
	return fileExists(filepath.Join(root, ManifestFile))
}

func tablePath(dir, fileName, suffix string) string {
	return filepath.Join(dir, fileName+suffix)
}

// validFileName reports whether name can be used as an on-disk basename.
func validFileName(name string) bool {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// Load reads the project.
func (s *Store) Load() (*types.Project, error) {
	path := s.ManifestPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrProjectNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var pj projectJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidManifest, path, err)
	}

	p := &types.Project{
		Name:           pj.Name,
		PluginSettings: pj.PluginSettings,
	}
	if pj.UI != nil {
		p.UI.TableFolders = nonEmpty(pj.UI.TableFolders)
		p.UI.DocumentFolders = nonEmpty(pj.UI.DocumentFolders)
	}
	for _, f := range pj.Folders {
		p.Folders = append(p.Folders, types.Folder{
			ID:       f.ID,
			Name:     f.Name,
			Scope:    types.ParseFolderScope(f.Scope),
			ParentID: f.ParentID,
		})
	}

	tables := newDedup()
	for _, ref := range pj.Tables {
		fileName := ref.FileName
		if fileName == "" {
			fileName = ref.ID
		}
		log := s.opts.Logger.WithFields(logrus.Fields{"table": ref.ID, "file": fileName})
		if !validFileName(fileName) {
			log.Debug("skipping table with unusable file name")
			continue
		}
		if !tables.add(ref.ID, fileName) {
			log.Debug("skipping duplicate table reference")
			continue
		}
		t := &types.Table{ID: ref.ID, Name: ref.Name, FileName: fileName, FolderID: ref.FolderID}
		if err := s.loadTable(t, pj.Variants); err != nil {
			return nil, err
		}
		p.Tables = append(p.Tables, t)
	}

	docs := newDedup()
	for _, ref := range pj.Documents {
		fileName := ref.FileName
		if fileName == "" {
			fileName = ref.ID
		}
		log := s.opts.Logger.WithFields(logrus.Fields{"document": ref.ID, "file": fileName})
		if !validFileName(fileName) {
			log.Debug("skipping document with unusable file name")
			continue
		}
		if !docs.add(ref.ID, fileName) {
			log.Debug("skipping duplicate document reference")
			continue
		}
		d := &types.Document{ID: ref.ID, Title: ref.Title, FileName: fileName, FolderID: ref.FolderID}
		if err := s.codec.loadDocument(s.DocsPath(), d); err != nil {
			return nil, err
		}
		p.Documents = append(p.Documents, d)
	}

	if s.opts.SystemTables != nil {
		if err := s.opts.SystemTables.SyncSystemTables(p); err != nil {
			return nil, fmt.Errorf("syncing system tables: %w", err)
		}
	}
	if s.opts.SchemaLinks != nil {
		if err := s.opts.SchemaLinks.SyncSchemaLinks(p); err != nil {
			return nil, fmt.Errorf("syncing schema links: %w", err)
		}
	}
	normalizeFolders(p, s.opts.Logger)
	return p, nil
}

// loadTable reads the schema and the data files of t. legacy is the
// project-level variant list of older manifests; it applies only to tables
// that declare no variants of their own.
func (s *Store) loadTable(t *types.Table, legacy []variantJSON) error {
	dir := s.TablesPath()
	path := tablePath(dir, t.FileName, schemaSuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: table %s: %s", types.ErrSchemaNotFound, t.ID, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var sj schemaJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return fmt.Errorf("%w: table %s: %s: %v", types.ErrInvalidSchema, t.ID, path, err)
	}

	c := s.codec
	c.decodeSchema(t, sj)
	if len(t.Variants) == 0 && len(legacy) > 0 {
		t.Variants = decodeVariants(legacy)
	}

	cols := indexColumns(t)
	if t.IsDerived() {
		if err := c.loadOwnData(dir, t, cols); err != nil {
			return err
		}
	} else {
		rowsPath := tablePath(dir, t.FileName, rowsSuffix)
		records, skipped, err := fsutil.ReadJSONLOptional(rowsPath)
		if err != nil {
			return err
		}
		c.logSkipped(rowsPath, skipped)
		t.Rows = c.decodeRowRecords(t, cols, records, true)

		logPath := tablePath(dir, t.FileName, variantsSuffix)
		records, skipped, err = fsutil.ReadJSONLOptional(logPath)
		if err != nil {
			return err
		}
		c.logSkipped(logPath, skipped)
		t.VariantDeltas = c.decodeVariantLog(t, cols, records)
	}
	return c.loadViews(dir, t)
}

// Save writes the project. Tables and documents whose id or file name
// repeats an earlier one are not written. Files of tables that are no
// longer referenced are left on disk.
func (s *Store) Save(p *types.Project) error {
	if s.opts.SchemaLinks != nil {
		if err := s.opts.SchemaLinks.SyncSchemaLinks(p); err != nil {
			return fmt.Errorf("syncing schema links: %w", err)
		}
	}

	for _, dir := range []string{s.TablesPath(), s.DocsPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	pj := projectJSON{
		Name:           p.Name,
		Tables:         []tableRefJSON{},
		PluginSettings: nonEmptySettings(p.PluginSettings),
	}
	for _, f := range p.Folders {
		pj.Folders = append(pj.Folders, folderJSON{ID: f.ID, Name: f.Name, Scope: string(f.Scope), ParentID: f.ParentID})
	}
	if len(p.UI.TableFolders) > 0 || len(p.UI.DocumentFolders) > 0 {
		pj.UI = &uiStateJSON{TableFolders: nonEmpty(p.UI.TableFolders), DocumentFolders: nonEmpty(p.UI.DocumentFolders)}
	}

	var tables []*types.Table
	seenTables := newDedup()
	for _, t := range p.Tables {
		name := t.FileName
		if name == "" {
			name = t.ID
		}
		if !validFileName(name) {
			return fmt.Errorf("%w: table %s file name %q", types.ErrInvalidName, t.ID, name)
		}
		if !seenTables.add(t.ID, name) {
			s.opts.Logger.WithFields(logrus.Fields{"table": t.ID, "file": name}).Debug("not saving duplicate table")
			continue
		}
		// The copy shares row slices, so generated ids still reach the caller.
		tc := *t
		tc.FileName = name
		tables = append(tables, &tc)
		pj.Tables = append(pj.Tables, tableRefJSON{ID: t.ID, Name: t.Name, FileName: name, FolderID: t.FolderID})
	}

	var docs []*types.Document
	seenDocs := newDedup()
	for _, d := range p.Documents {
		name := d.FileName
		if name == "" {
			name = d.ID
		}
		if !validFileName(name) {
			return fmt.Errorf("%w: document %s file name %q", types.ErrInvalidName, d.ID, name)
		}
		if !seenDocs.add(d.ID, name) {
			s.opts.Logger.WithFields(logrus.Fields{"document": d.ID, "file": name}).Debug("not saving duplicate document")
			continue
		}
		dc := *d
		dc.FileName = name
		docs = append(docs, &dc)
		pj.Documents = append(pj.Documents, documentRefJSON{ID: d.ID, Title: d.Title, FileName: name, FolderID: d.FolderID})
	}

	if err := fsutil.WriteJSON(s.ManifestPath(), pj); err != nil {
		return err
	}
	for _, t := range tables {
		if err := s.saveTable(t); err != nil {
			return fmt.Errorf("saving table %s: %w", t.ID, err)
		}
	}
	for _, d := range docs {
		if err := saveDocument(s.DocsPath(), d); err != nil {
			return fmt.Errorf("saving document %s: %w", d.ID, err)
		}
	}
	return nil
}

func (s *Store) saveTable(t *types.Table) error {
	dir := s.TablesPath()
	c := s.codec
	if err := fsutil.WriteJSON(tablePath(dir, t.FileName, schemaSuffix), c.encodeSchema(t)); err != nil {
		return err
	}

	cols := indexColumns(t)
	rowsPath := tablePath(dir, t.FileName, rowsSuffix)
	logPath := tablePath(dir, t.FileName, variantsSuffix)
	if t.IsDerived() {
		if err := fsutil.RemoveIfExists(rowsPath); err != nil {
			return err
		}
		if err := fsutil.RemoveIfExists(logPath); err != nil {
			return err
		}
		if err := c.saveOwnData(dir, t, cols); err != nil {
			return err
		}
	} else {
		if err := removeOwnData(dir, t.FileName); err != nil {
			return err
		}
		records, err := c.encodeRowRecords(t, cols, t.Rows, true)
		if err != nil {
			return err
		}
		if err := fsutil.WriteJSONL(rowsPath, records); err != nil {
			return err
		}
		records, err = c.encodeVariantLog(t, cols)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			if err := fsutil.RemoveIfExists(logPath); err != nil {
				return err
			}
		} else if err := fsutil.WriteJSONL(logPath, records); err != nil {
			return err
		}
	}
	return saveViews(dir, t)
}

// dedup tracks ids and file names seen during one pass. The two axes are
// independent: an entry is rejected if either value was seen before.
type dedup struct {
	ids   map[string]bool
	files map[string]bool
}

func newDedup() *dedup {
	return &dedup{ids: make(map[string]bool), files: make(map[string]bool)}
}

func (d *dedup) add(id, fileName string) bool {
	if d.ids[id] || d.files[fileName] {
		return false
	}
	d.ids[id] = true
	d.files[fileName] = true
	return true
}

func nonEmpty(m map[string]bool) map[string]bool {
	if len(m) == 0 {
		return nil
	}
	return m
}

func nonEmptySettings(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

// TableFiles lists the files of the table stored as fileName that exist in
// the project at root, as paths relative to root.
func TableFiles(root, fileName string) ([]string, error) {
	dir := filepath.Join(root, TablesDir)
	var out []string
	for _, suffix := range []string{schemaSuffix, rowsSuffix, variantsSuffix, ownDataSuffix, viewsSuffix} {
		if fileExists(tablePath(dir, fileName, suffix)) {
			out = append(out, filepath.Join(TablesDir, fileName+suffix))
		}
	}
	names, _, err := ownDataVariantFiles(dir, fileName)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		out = append(out, filepath.Join(TablesDir, name))
	}
	return out, nil
}

// DocumentFiles lists the files of the document stored as fileName that
// exist in the project at root, as paths relative to root.
func DocumentFiles(root, fileName string) []string {
	var out []string
	for _, suffix := range []string{metaSuffix, blocksSuffix} {
		if fileExists(filepath.Join(root, DocsDir, fileName+suffix)) {
			out = append(out, filepath.Join(DocsDir, fileName+suffix))
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
