// This file implements the table schema and column codec.
package storage

import (
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// codec holds the collaborators shared by every decode and encode step of a
// single load or save pass.
type codec struct {
	plugins   types.CellCodec
	mapper    types.ColumnTypeMapper
	relations types.RelationResolver
	log       logrus.FieldLogger
}

func newCodec(o Options) *codec {
	o = o.withDefaults()
	return &codec{
		plugins:   o.Plugins,
		mapper:    o.TypeMapper,
		relations: o.Relations,
		log:       o.Logger,
	}
}

// decodeSchema fills t from its schema file. Identity fields (id, name,
// file name, folder) come from the manifest and are left untouched.
func (c *codec) decodeSchema(t *types.Table, s schemaJSON) {
	t.SchemaSourceTableID = s.SchemaSourceTableID
	t.InheritanceSourceTableID = s.InheritanceSourceTableID
	t.ParentTableID = s.ParentTableID
	t.ParentRowColumnID = s.ParentRowColumnID
	t.SystemKey = s.SystemKey
	t.SystemSchemaLocked = s.SystemSchemaLocked
	t.SystemDataLocked = s.SystemDataLocked
	t.PluginTableTypeID = s.PluginTableTypeID
	t.PluginOwnerColumnTypeID = s.PluginOwnerColumnTypeID
	t.PluginSchemaLocked = s.PluginSchemaLocked

	t.Columns = make([]types.Column, 0, len(s.Columns))
	for _, cj := range s.Columns {
		t.Columns = append(t.Columns, c.decodeColumn(t, cj))
	}

	t.Variants = decodeVariants(s.Variants)

	if s.Keys != nil {
		keys := &types.TableKeys{PrimaryKeyColumnID: s.Keys.PrimaryKeyColumnID}
		for _, k := range s.Keys.SecondaryKeys {
			keys.SecondaryKeys = append(keys.SecondaryKeys, types.SecondaryKey{ColumnID: k.ColumnID, Unique: k.Unique})
		}
		t.Keys = keys
	}

	for _, v := range s.Variables {
		kind := types.ParseColumnKind(v.Kind)
		t.Variables = append(t.Variables, types.Variable{
			ID:         v.ID,
			Name:       v.Name,
			Kind:       kind,
			TypeID:     c.mapper.ResolveTypeID(kind, v.TypeID),
			Expression: v.Expression,
		})
	}

	if s.Derived != nil {
		t.Derived = decodeDerived(*s.Derived)
	}
	if s.Export != nil {
		t.Export = &types.ExportConfig{
			Enabled:   s.Export.Enabled,
			Namespace: s.Export.Namespace,
			TypeName:  s.Export.TypeName,
		}
	}
}

// decodeVariants drops the reserved base id and duplicate ids.
func decodeVariants(in []variantJSON) []types.Variant {
	var out []types.Variant
	seen := make(map[int]bool, len(in))
	for _, v := range in {
		if v.ID <= types.BaseVariantID || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, types.Variant{ID: v.ID, Name: v.Name})
	}
	return out
}

func encodeVariants(in []types.Variant) []variantJSON {
	var out []variantJSON
	for _, v := range in {
		if v.ID == types.BaseVariantID {
			continue
		}
		out = append(out, variantJSON{ID: v.ID, Name: v.Name})
	}
	return out
}

func (c *codec) decodeColumn(owner *types.Table, cj columnJSON) types.Column {
	cj = upgradeColumn(cj)

	kind := types.ParseColumnKind(cj.Kind)
	if string(kind) != cj.Kind {
		c.log.WithFields(logrus.Fields{"table": owner.ID, "column": cj.ID, "kind": cj.Kind}).
			Debug("unknown column kind, using Text")
	}

	col := types.Column{
		ID:             cj.ID,
		Name:           cj.Name,
		Kind:           kind,
		TypeID:         c.mapper.ResolveTypeID(kind, cj.TypeID),
		PluginSettings: cj.PluginSettings,
		Width:          cj.Width,
		Options:        cj.Options,
		Formula:        cj.Formula,

		RelationTableID:        cj.RelationTableID,
		RelationTableVariantID: cj.RelationTableVariantID,
		RelationDisplayColumn:  cj.RelationDisplayColumnID,

		TableRefBaseTableID: cj.TableRefBaseTableID,
		RowRefColumnID:      cj.RowRefColumnID,

		Hidden:    cj.Hidden,
		Projected: cj.Projected,
		Inherited: cj.Inherited,

		ExportType:     cj.ExportType,
		ExportEnumName: cj.ExportEnumName,
		ExportIgnore:   cj.ExportIgnore,

		Min: cj.Min,
		Max: cj.Max,

		SubtableDisplayColumnID: cj.SubtableDisplayColumnID,
		SubtablePreviewRows:     cj.SubtablePreviewRows,
	}

	if kind == types.KindRelation || cj.RelationTargetMode != "" {
		col.RelationTargetMode = types.ParseRelationTargetMode(cj.RelationTargetMode)
	}
	if kind == types.KindRelation {
		col.RelationTableID = c.relations.ResolveTargetTable(owner, col.RelationTargetMode, cj.RelationTableID)
	}

	if scope, ok := types.ParseEvalScope(cj.EvalScope); ok {
		col.EvalScope = scope
	}

	if kind == types.KindMeshAsset {
		col.MeshPreview = decodeMeshPreview(cj.MeshPreview)
	}
	return col
}

func (c *codec) encodeSchema(t *types.Table) schemaJSON {
	s := schemaJSON{
		Columns:  make([]columnJSON, 0, len(t.Columns)),
		Variants: encodeVariants(t.Variants),

		SchemaSourceTableID:      t.SchemaSourceTableID,
		InheritanceSourceTableID: t.InheritanceSourceTableID,
		ParentTableID:            t.ParentTableID,
		ParentRowColumnID:        t.ParentRowColumnID,

		SystemKey:               t.SystemKey,
		SystemSchemaLocked:      t.SystemSchemaLocked,
		SystemDataLocked:        t.SystemDataLocked,
		PluginTableTypeID:       t.PluginTableTypeID,
		PluginOwnerColumnTypeID: t.PluginOwnerColumnTypeID,
		PluginSchemaLocked:      t.PluginSchemaLocked,
	}
	for i := range t.Columns {
		s.Columns = append(s.Columns, encodeColumn(&t.Columns[i]))
	}
	if t.Keys != nil {
		keys := &keysJSON{PrimaryKeyColumnID: t.Keys.PrimaryKeyColumnID}
		for _, k := range t.Keys.SecondaryKeys {
			keys.SecondaryKeys = append(keys.SecondaryKeys, secondaryKeyJSON{ColumnID: k.ColumnID, Unique: k.Unique})
		}
		s.Keys = keys
	}
	for _, v := range t.Variables {
		s.Variables = append(s.Variables, variableJSON{
			ID:         v.ID,
			Name:       v.Name,
			Kind:       string(v.Kind),
			TypeID:     nonBuiltinTypeID(v.Kind, v.TypeID),
			Expression: v.Expression,
		})
	}
	if t.Derived != nil {
		d := encodeDerived(t.Derived)
		s.Derived = &d
	}
	if t.Export != nil {
		s.Export = &exportJSON{
			Enabled:   t.Export.Enabled,
			Namespace: t.Export.Namespace,
			TypeName:  t.Export.TypeName,
		}
	}
	return s
}

func encodeColumn(col *types.Column) columnJSON {
	cj := columnJSON{
		ID:             col.ID,
		Name:           col.Name,
		Kind:           string(col.Kind),
		TypeID:         nonBuiltinTypeID(col.Kind, col.TypeID),
		PluginSettings: col.PluginSettings,
		Width:          col.Width,
		Options:        col.Options,
		Formula:        col.Formula,

		RelationTableID:         col.RelationTableID,
		RelationTableVariantID:  col.RelationTableVariantID,
		RelationDisplayColumnID: col.RelationDisplayColumn,

		TableRefBaseTableID: col.TableRefBaseTableID,
		RowRefColumnID:      col.RowRefColumnID,

		Hidden:    col.Hidden,
		Projected: col.Projected,
		Inherited: col.Inherited,

		ExportType:     col.ExportType,
		ExportEnumName: col.ExportEnumName,
		ExportIgnore:   col.ExportIgnore,

		Min: col.Min,
		Max: col.Max,

		SubtableDisplayColumnID: col.SubtableDisplayColumnID,
		SubtablePreviewRows:     col.SubtablePreviewRows,

		EvalScope: col.EvalScope.String(),
	}
	if col.RelationTargetMode != "" && !(col.Kind == types.KindRelation && col.RelationTargetMode == types.RelationExternal) {
		cj.RelationTargetMode = string(col.RelationTargetMode)
	}
	if col.Kind == types.KindMeshAsset {
		cj.MeshPreview = encodeMeshPreview(col.MeshPreview)
	}
	return cj
}

// nonBuiltinTypeID returns typeID unless it is the built-in type of kind,
// which is implied and not written.
func nonBuiltinTypeID(kind types.ColumnKind, typeID string) string {
	if typeID == types.BuiltinTypeID(kind) {
		return ""
	}
	return typeID
}

// decodeMeshPreview starts from the defaults, applies the stored fields,
// clamps, and returns nil when nothing differs from the defaults.
func decodeMeshPreview(m *meshPreviewJSON) *types.MeshPreview {
	if m == nil {
		return nil
	}
	p := types.DefaultMeshPreview
	if m.Yaw != nil {
		p.Yaw = *m.Yaw
	}
	if m.Pitch != nil {
		p.Pitch = *m.Pitch
	}
	if m.PanX != nil {
		p.PanX = *m.PanX
	}
	if m.PanY != nil {
		p.PanY = *m.PanY
	}
	if m.Zoom != nil {
		p.Zoom = *m.Zoom
	}
	p.Texture = m.Texture
	return types.NormalizeMeshPreview(&p)
}

// encodeMeshPreview writes only the components that differ from the
// defaults, or nil when the normalized preview is the default.
func encodeMeshPreview(in *types.MeshPreview) *meshPreviewJSON {
	p := types.NormalizeMeshPreview(in)
	if p == nil {
		return nil
	}
	def := types.DefaultMeshPreview
	m := &meshPreviewJSON{Texture: p.Texture}
	if p.Yaw != def.Yaw {
		m.Yaw = float64Ptr(p.Yaw)
	}
	if p.Pitch != def.Pitch {
		m.Pitch = float64Ptr(p.Pitch)
	}
	if p.PanX != def.PanX {
		m.PanX = float64Ptr(p.PanX)
	}
	if p.PanY != def.PanY {
		m.PanY = float64Ptr(p.PanY)
	}
	if p.Zoom != def.Zoom {
		m.Zoom = float64Ptr(p.Zoom)
	}
	return m
}

func float64Ptr(f float64) *float64 { return &f }
