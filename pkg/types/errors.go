package types

import "errors"

// Load and save errors. Only these conditions abort an operation; every other
// inconsistency in a project directory is repaired in place.
var (
	ErrProjectNotFound   = errors.New("project manifest not found")
	ErrSchemaNotFound    = errors.New("table schema not found")
	ErrInvalidManifest   = errors.New("invalid project manifest")
	ErrInvalidSchema     = errors.New("invalid table schema")
	ErrInvalidProjectDir = errors.New("invalid project directory")
)

// CLI and side-file errors.
var (
	ErrNoActiveProject = errors.New("no active project")
	ErrTableNotFound   = errors.New("table not found")
	ErrInvalidName     = errors.New("invalid name")
)
