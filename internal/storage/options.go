package storage

import (
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// Options wires the external collaborators consulted during load and save.
// Every field is optional.
type Options struct {
	// Plugins decodes and encodes cells of non-built-in column types.
	Plugins types.CellCodec
	// TypeMapper resolves column type ids. Defaults to types.BuiltinTypeMapper.
	TypeMapper types.ColumnTypeMapper
	// Relations resolves relation target tables. Defaults to
	// types.DefaultRelationResolver.
	Relations types.RelationResolver
	// SystemTables runs after tables and documents are loaded.
	SystemTables types.SystemTableSynchronizer
	// SchemaLinks runs after load and before save.
	SchemaLinks types.SchemaLinkSynchronizer
	// Logger receives repair notices at debug level. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.TypeMapper == nil {
		o.TypeMapper = types.BuiltinTypeMapper{}
	}
	if o.Relations == nil {
		o.Relations = types.DefaultRelationResolver{}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}
