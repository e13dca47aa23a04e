// Package types defines the in-memory model of a table database project:
// folders, tables with typed columns and rows, variant overlays, derived
// table configuration, and rich-text documents. It also declares the
// collaborator interfaces the storage layer consults (plugin cell codecs,
// column type mapping, relation resolution, post-load synchronizers) and the
// sentinel errors returned by load and save.
//
// See internal/storage for the on-disk format.
package types
