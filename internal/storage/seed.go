// This file implements new-project seeding.
package storage

import (
	"github.com/google/uuid"

	"github.com/mesh-intelligence/tabledb/internal/fracindex"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// Names of the seeded items.
const (
	SeedTablesFolder    = "Tables"
	SeedDocumentsFolder = "Documents"
	SeedTableName       = "Table 1"
	SeedDocumentTitle   = "Notes"
)

// NewID returns a new UUID v7 string.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// SeedProject returns a new project with one folder per scope, a starter
// table with Id and Name columns, and an empty document.
func SeedProject(name string) *types.Project {
	tablesFolder := types.Folder{ID: NewID(), Name: SeedTablesFolder, Scope: types.ScopeTables}
	docsFolder := types.Folder{ID: NewID(), Name: SeedDocumentsFolder, Scope: types.ScopeDocuments}

	table := NewTable(SeedTableName)
	table.FolderID = tablesFolder.ID

	doc := &types.Document{
		ID:       NewID(),
		Title:    SeedDocumentTitle,
		FolderID: docsFolder.ID,
	}
	doc.FileName = doc.ID
	doc.Blocks = []types.Block{{
		ID:    NewID(),
		Order: fracindex.Sequence(1)[0],
		Type:  types.BlockParagraph,
	}}

	return &types.Project{
		Name:      name,
		Folders:   []types.Folder{tablesFolder, docsFolder},
		Tables:    []*types.Table{table},
		Documents: []*types.Document{doc},
		UI: types.UIState{
			TableFolders:    map[string]bool{tablesFolder.ID: true},
			DocumentFolders: map[string]bool{docsFolder.ID: true},
		},
	}
}

// NewTable returns an empty regular table with an Id column and a Name
// column. The file name is the table id.
func NewTable(name string) *types.Table {
	id := NewID()
	return &types.Table{
		ID:       id,
		Name:     name,
		FileName: id,
		Columns: []types.Column{
			types.NewColumn(NewID(), "Id", types.KindID),
			types.NewColumn(NewID(), "Name", types.KindText),
		},
	}
}
