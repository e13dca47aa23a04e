// This file implements folder-reference integrity.
package storage

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// NormalizeFolders clears every folder reference of p that is dangling or
// points at a folder of the wrong scope, and drops UI expansion entries for
// such folders. It never fails and returns the number of repairs made.
// Running it twice yields the same project.
func NormalizeFolders(p *types.Project) int {
	return normalizeFolders(p, logrus.StandardLogger())
}

func normalizeFolders(p *types.Project, log logrus.FieldLogger) int {
	repairs := 0

	if len(p.Folders) == 0 {
		for _, t := range p.Tables {
			if t.FolderID != "" {
				t.FolderID = ""
				repairs++
			}
		}
		for _, d := range p.Documents {
			if d.FolderID != "" {
				d.FolderID = ""
				repairs++
			}
		}
		repairs += len(p.UI.TableFolders) + len(p.UI.DocumentFolders)
		p.UI.TableFolders = nil
		p.UI.DocumentFolders = nil
		if repairs > 0 {
			log.WithField("repairs", repairs).Debug("project has no folders; cleared folder references")
		}
		return repairs
	}

	scopes := make(map[string]types.FolderScope, len(p.Folders))
	for _, f := range p.Folders {
		if _, dup := scopes[f.ID]; !dup {
			scopes[f.ID] = f.Scope
		}
	}

	for i := range p.Folders {
		f := &p.Folders[i]
		if f.ParentID == "" {
			continue
		}
		if _, ok := scopes[f.ParentID]; !ok {
			log.WithFields(logrus.Fields{"folder": f.ID, "parent": f.ParentID}).Debug("clearing dangling parent folder")
			f.ParentID = ""
			repairs++
		}
	}

	valid := func(id string, scope types.FolderScope) bool {
		if strings.TrimSpace(id) == "" {
			return false
		}
		s, ok := scopes[id]
		return ok && s == scope
	}

	for _, t := range p.Tables {
		if t.FolderID != "" && !valid(t.FolderID, types.ScopeTables) {
			log.WithFields(logrus.Fields{"table": t.ID, "folder": t.FolderID}).Debug("clearing table folder reference")
			t.FolderID = ""
			repairs++
		}
	}
	for _, d := range p.Documents {
		if d.FolderID != "" && !valid(d.FolderID, types.ScopeDocuments) {
			log.WithFields(logrus.Fields{"document": d.ID, "folder": d.FolderID}).Debug("clearing document folder reference")
			d.FolderID = ""
			repairs++
		}
	}

	repairs += pruneExpansion(p.UI.TableFolders, types.ScopeTables, valid)
	repairs += pruneExpansion(p.UI.DocumentFolders, types.ScopeDocuments, valid)
	return repairs
}

func pruneExpansion(m map[string]bool, scope types.FolderScope, valid func(string, types.FolderScope) bool) int {
	n := 0
	for id := range m {
		if !valid(id, scope) {
			delete(m, id)
			n++
		}
	}
	return n
}
