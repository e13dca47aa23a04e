package types

// FolderScope says which kind of item a folder may contain.
type FolderScope string

// Folder scopes.
const (
	ScopeTables    FolderScope = "Tables"
	ScopeDocuments FolderScope = "Documents"
)

// ParseFolderScope returns the scope named by s. Unknown values fall back to
// ScopeTables.
func ParseFolderScope(s string) FolderScope {
	switch FolderScope(s) {
	case ScopeDocuments:
		return ScopeDocuments
	default:
		return ScopeTables
	}
}

// Folder groups tables or documents. ParentID is empty for top-level folders.
type Folder struct {
	ID       string
	Name     string
	Scope    FolderScope
	ParentID string
}

// UIState holds the folder expansion state of the two navigation trees,
// keyed by folder id.
type UIState struct {
	TableFolders    map[string]bool
	DocumentFolders map[string]bool
}

// Project is the root of the model. Identities of folders, tables and
// documents are assigned by the caller; the storage layer never generates
// them.
type Project struct {
	Name           string
	PluginSettings map[string]string
	Folders        []Folder
	Tables         []*Table
	Documents      []*Document
	UI             UIState
}

// FolderByID returns the folder with the given id, or nil.
func (p *Project) FolderByID(id string) *Folder {
	for i := range p.Folders {
		if p.Folders[i].ID == id {
			return &p.Folders[i]
		}
	}
	return nil
}

// TableByID returns the first table with the given id, or nil.
func (p *Project) TableByID(id string) *Table {
	for _, t := range p.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TableByName returns the first table with the given name, or nil.
func (p *Project) TableByName(name string) *Table {
	for _, t := range p.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// DocumentByID returns the first document with the given id, or nil.
func (p *Project) DocumentByID(id string) *Document {
	for _, d := range p.Documents {
		if d.ID == id {
			return d
		}
	}
	return nil
}
