package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

func folderProject() *types.Project {
	return &types.Project{
		Name: "p",
		Folders: []types.Folder{
			{ID: "TF", Name: "Tables", Scope: types.ScopeTables},
			{ID: "TF2", Name: "Nested", Scope: types.ScopeTables, ParentID: "TF"},
			{ID: "DF", Name: "Docs", Scope: types.ScopeDocuments, ParentID: "gone"},
		},
		Tables: []*types.Table{
			{ID: "t1", FolderID: "TF2"},
			{ID: "t2", FolderID: "DF"},
			{ID: "t3", FolderID: "missing"},
			{ID: "t4", FolderID: "  "},
			{ID: "t5"},
		},
		Documents: []*types.Document{
			{ID: "d1", FolderID: "DF"},
			{ID: "d2", FolderID: "TF"},
		},
		UI: types.UIState{
			TableFolders:    map[string]bool{"TF": true, "DF": true, "missing": false},
			DocumentFolders: map[string]bool{"DF": true, "TF2": true},
		},
	}
}

func TestNormalizeFolders(t *testing.T) {
	p := folderProject()

	repairs := NormalizeFolders(p)
	assert.Equal(t, 8, repairs)

	assert.Equal(t, "TF", p.Folders[1].ParentID)
	assert.Empty(t, p.Folders[2].ParentID)

	assert.Equal(t, "TF2", p.Tables[0].FolderID)
	assert.Empty(t, p.Tables[1].FolderID)
	assert.Empty(t, p.Tables[2].FolderID)
	assert.Empty(t, p.Tables[3].FolderID)
	assert.Empty(t, p.Tables[4].FolderID)

	assert.Equal(t, "DF", p.Documents[0].FolderID)
	assert.Empty(t, p.Documents[1].FolderID)

	assert.Equal(t, map[string]bool{"TF": true}, p.UI.TableFolders)
	assert.Equal(t, map[string]bool{"DF": true}, p.UI.DocumentFolders)
}

func TestNormalizeFoldersIdempotent(t *testing.T) {
	once := folderProject()
	NormalizeFolders(once)

	twice := folderProject()
	NormalizeFolders(twice)
	assert.Zero(t, NormalizeFolders(twice))
	assert.Equal(t, once, twice)
}

func TestNormalizeFoldersWithoutFolders(t *testing.T) {
	p := &types.Project{
		Tables:    []*types.Table{{ID: "t1", FolderID: "F"}},
		Documents: []*types.Document{{ID: "d1", FolderID: "G"}},
		UI: types.UIState{
			TableFolders:    map[string]bool{"F": true},
			DocumentFolders: map[string]bool{},
		},
	}

	assert.Equal(t, 3, NormalizeFolders(p))
	assert.Empty(t, p.Tables[0].FolderID)
	assert.Empty(t, p.Documents[0].FolderID)
	assert.Nil(t, p.UI.TableFolders)
	assert.Nil(t, p.UI.DocumentFolders)

	assert.Zero(t, NormalizeFolders(p))
}
