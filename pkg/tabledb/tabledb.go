// Package tabledb is the public entry point of the persistence layer. It
// loads and saves whole projects; the model lives in package types.
package tabledb

import (
	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// Version is the tabledb release.
const Version = "0.1.0"

// Options wires the external collaborators consulted during load and save.
type Options = storage.Options

// Load reads the project stored at root.
func Load(root string, opts Options) (*types.Project, error) {
	return storage.NewStore(root, opts).Load()
}

// Save writes p to root, creating the directory layout as needed.
func Save(root string, p *types.Project, opts Options) error {
	return storage.NewStore(root, opts).Save(p)
}

// NewProject returns a seeded project ready to be saved.
func NewProject(name string) *types.Project {
	return storage.SeedProject(name)
}

// IsProject reports whether root holds a project manifest.
func IsProject(root string) bool {
	return storage.Exists(root)
}
