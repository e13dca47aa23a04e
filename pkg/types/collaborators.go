package types

import (
	"encoding/json"
	"strings"
)

// CellCodec decodes and encodes cells of externally registered column
// types. Both methods report whether the codec handled the type; a codec
// that declines leaves the cell to the generic textual fallback.
type CellCodec interface {
	TryDecode(col *Column, raw json.RawMessage) (CellValue, bool)
	TryEncode(col *Column, v CellValue) (json.RawMessage, bool)
}

// ColumnTypeMapper decides which column type implements a column.
type ColumnTypeMapper interface {
	// ResolveTypeID returns the effective type id for a column of the given
	// kind whose stored type id is typeID (possibly empty).
	ResolveTypeID(kind ColumnKind, typeID string) string
	// IsBuiltin reports whether typeID names a built-in type.
	IsBuiltin(typeID string) bool
}

// RelationResolver resolves the target table of a relation column.
type RelationResolver interface {
	ResolveTargetTable(owner *Table, mode RelationTargetMode, tableID string) string
}

// SystemTableSynchronizer injects or refreshes system-owned tables after a
// project loads.
type SystemTableSynchronizer interface {
	SyncSystemTables(p *Project) error
}

// SchemaLinkSynchronizer propagates schema from schema-source tables to the
// tables linked to them. It runs after load and before save.
type SchemaLinkSynchronizer interface {
	SyncSchemaLinks(p *Project) error
}

// BuiltinTypeMapper maps every column to its built-in type unless a
// non-built-in type id is stored.
type BuiltinTypeMapper struct{}

// ResolveTypeID implements ColumnTypeMapper.
func (BuiltinTypeMapper) ResolveTypeID(kind ColumnKind, typeID string) string {
	typeID = strings.TrimSpace(typeID)
	if typeID == "" {
		return BuiltinTypeID(kind)
	}
	return typeID
}

// IsBuiltin implements ColumnTypeMapper.
func (BuiltinTypeMapper) IsBuiltin(typeID string) bool {
	return typeID == "" || strings.HasPrefix(typeID, BuiltinTypePrefix)
}

// DefaultRelationResolver points self relations at the owning table and
// parent relations at the owner's parent table.
type DefaultRelationResolver struct{}

// ResolveTargetTable implements RelationResolver.
func (DefaultRelationResolver) ResolveTargetTable(owner *Table, mode RelationTargetMode, tableID string) string {
	switch mode {
	case RelationSelf:
		if owner != nil {
			return owner.ID
		}
	case RelationParent:
		if owner != nil && owner.ParentTableID != "" {
			return owner.ParentTableID
		}
	}
	return tableID
}

// CodecRegistry is a CellCodec that dispatches on column type id.
type CodecRegistry map[string]CellCodec

// TryDecode implements CellCodec.
func (r CodecRegistry) TryDecode(col *Column, raw json.RawMessage) (CellValue, bool) {
	if c, ok := r[col.TypeID]; ok {
		return c.TryDecode(col, raw)
	}
	return CellValue{}, false
}

// TryEncode implements CellCodec.
func (r CodecRegistry) TryEncode(col *Column, v CellValue) (json.RawMessage, bool) {
	if c, ok := r[col.TypeID]; ok {
		return c.TryEncode(col, v)
	}
	return nil, false
}
