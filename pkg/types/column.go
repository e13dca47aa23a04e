package types

import (
	"math"
	"strings"
)

// ColumnKind is the closed set of column kinds.
type ColumnKind string

// Column kinds.
const (
	KindText         ColumnKind = "Text"
	KindNumber       ColumnKind = "Number"
	KindCheckbox     ColumnKind = "Checkbox"
	KindFormula      ColumnKind = "Formula"
	KindID           ColumnKind = "Id"
	KindTableRef     ColumnKind = "TableRef"
	KindRowRef       ColumnKind = "RowRef"
	KindRelation     ColumnKind = "Relation"
	KindAudioAsset   ColumnKind = "AudioAsset"
	KindUIAsset      ColumnKind = "UiAsset"
	KindMeshAsset    ColumnKind = "MeshAsset"
	KindTextureAsset ColumnKind = "TextureAsset"
	KindVec2         ColumnKind = "Vec2"
	KindVec3         ColumnKind = "Vec3"
	KindVec4         ColumnKind = "Vec4"
	KindColor        ColumnKind = "Color"
	KindSelect       ColumnKind = "Select"
	KindSubtable     ColumnKind = "Subtable"
)

// builtinTypeIDs maps every kind to the type id of its built-in
// implementation. The set of keys is the set of valid kinds.
var builtinTypeIDs = map[ColumnKind]string{
	KindText:         "builtin.text",
	KindNumber:       "builtin.number",
	KindCheckbox:     "builtin.checkbox",
	KindFormula:      "builtin.formula",
	KindID:           "builtin.id",
	KindTableRef:     "builtin.table-ref",
	KindRowRef:       "builtin.row-ref",
	KindRelation:     "builtin.relation",
	KindAudioAsset:   "builtin.audio-asset",
	KindUIAsset:      "builtin.ui-asset",
	KindMeshAsset:    "builtin.mesh-asset",
	KindTextureAsset: "builtin.texture-asset",
	KindVec2:         "builtin.vec2",
	KindVec3:         "builtin.vec3",
	KindVec4:         "builtin.vec4",
	KindColor:        "builtin.color",
	KindSelect:       "builtin.select",
	KindSubtable:     "builtin.subtable",
}

// BuiltinTypePrefix prefixes every built-in column type id.
const BuiltinTypePrefix = "builtin."

// ParseColumnKind returns the kind named by s. Unknown tags fall back to
// KindText.
func ParseColumnKind(s string) ColumnKind {
	k := ColumnKind(s)
	if _, ok := builtinTypeIDs[k]; ok {
		return k
	}
	return KindText
}

// BuiltinTypeID returns the type id of the built-in implementation of kind.
func BuiltinTypeID(kind ColumnKind) string {
	if id, ok := builtinTypeIDs[kind]; ok {
		return id
	}
	return builtinTypeIDs[KindText]
}

// VectorDims returns the number of components stored by vector-like kinds,
// or 0 for other kinds.
func (k ColumnKind) VectorDims() int {
	switch k {
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4, KindColor:
		return 4
	default:
		return 0
	}
}

// RelationTargetMode tells how a relation column picks its target table.
type RelationTargetMode string

// Relation target modes.
const (
	RelationExternal RelationTargetMode = "External"
	RelationSelf     RelationTargetMode = "Self"
	RelationParent   RelationTargetMode = "Parent"
)

// ParseRelationTargetMode returns the mode named by s, defaulting to
// RelationExternal.
func ParseRelationTargetMode(s string) RelationTargetMode {
	switch RelationTargetMode(s) {
	case RelationSelf:
		return RelationSelf
	case RelationParent:
		return RelationParent
	default:
		return RelationExternal
	}
}

// EvalScope is a set of contexts in which a formula column is evaluated.
type EvalScope uint8

// Evaluation scope flags.
const (
	EvalInteractive EvalScope = 1 << iota
	EvalExport
	EvalPreview

	EvalNone EvalScope = 0
)

var evalScopeNames = []struct {
	flag EvalScope
	name string
}{
	{EvalInteractive, "Interactive"},
	{EvalExport, "Export"},
	{EvalPreview, "Preview"},
}

// ParseEvalScope parses a comma separated flag list such as
// "Interactive, Export". The empty string and "None" parse to EvalNone.
// ok is false if any element is not a known flag name.
func ParseEvalScope(s string) (scope EvalScope, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return EvalNone, true
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		found := false
		for _, n := range evalScopeNames {
			if n.name == part {
				scope |= n.flag
				found = true
				break
			}
		}
		if !found {
			return EvalNone, false
		}
	}
	return scope, true
}

// String renders the flag list in declaration order, or "" for EvalNone.
func (s EvalScope) String() string {
	var names []string
	for _, n := range evalScopeNames {
		if s&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ", ")
}

// MeshPreview holds the 3D preview camera for mesh assets.
type MeshPreview struct {
	Yaw     float64
	Pitch   float64
	PanX    float64
	PanY    float64
	Zoom    float64
	Texture string
}

// Mesh preview limits.
const (
	MeshYawLimit   = 180.0
	MeshPitchLimit = 89.0
	MeshPanLimit   = 100.0
	MeshZoomMin    = 0.1
	MeshZoomMax    = 10.0
)

// DefaultMeshPreview is the preview used when none is stored.
var DefaultMeshPreview = MeshPreview{Zoom: 1}

// Clamp returns p with every component forced into range. NaN components
// take their default.
func (p MeshPreview) Clamp() MeshPreview {
	p.Yaw = clampOr(p.Yaw, -MeshYawLimit, MeshYawLimit, DefaultMeshPreview.Yaw)
	p.Pitch = clampOr(p.Pitch, -MeshPitchLimit, MeshPitchLimit, DefaultMeshPreview.Pitch)
	p.PanX = clampOr(p.PanX, -MeshPanLimit, MeshPanLimit, DefaultMeshPreview.PanX)
	p.PanY = clampOr(p.PanY, -MeshPanLimit, MeshPanLimit, DefaultMeshPreview.PanY)
	p.Zoom = clampOr(p.Zoom, MeshZoomMin, MeshZoomMax, DefaultMeshPreview.Zoom)
	p.Texture = strings.TrimSpace(p.Texture)
	return p
}

// IsDefault reports whether p equals DefaultMeshPreview.
func (p MeshPreview) IsDefault() bool {
	return p == DefaultMeshPreview
}

// NormalizeMeshPreview clamps p and returns nil when the result is the
// default, so that an absent preview and an explicit default are the same.
func NormalizeMeshPreview(p *MeshPreview) *MeshPreview {
	if p == nil {
		return nil
	}
	c := p.Clamp()
	if c.IsDefault() {
		return nil
	}
	return &c
}

func clampOr(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}

// Column describes one typed column of a table.
type Column struct {
	ID   string
	Name string
	Kind ColumnKind
	// TypeID distinguishes the built-in implementation of Kind from an
	// externally registered type sharing the same kind.
	TypeID         string
	PluginSettings string
	Width          float64
	Options        []string
	Formula        string

	RelationTargetMode     RelationTargetMode
	RelationTableID        string
	RelationTableVariantID int
	RelationDisplayColumn  string

	TableRefBaseTableID string
	RowRefColumnID      string

	Hidden    bool
	Projected bool
	Inherited bool

	ExportType     string
	ExportEnumName string
	ExportIgnore   bool

	Min *float64
	Max *float64

	SubtableDisplayColumnID string
	SubtablePreviewRows     int

	EvalScope EvalScope

	// MeshPreview is only kept for KindMeshAsset columns and is nil when the
	// preview equals DefaultMeshPreview.
	MeshPreview *MeshPreview
}

// NewColumn returns a column of the given kind bound to its built-in type.
func NewColumn(id, name string, kind ColumnKind) Column {
	return Column{ID: id, Name: name, Kind: kind, TypeID: BuiltinTypeID(kind)}
}

// IsLocal reports whether the column holds authored data on a derived table,
// as opposed to values projected or inherited from a source table.
func (c *Column) IsLocal() bool {
	return !c.Projected && !c.Inherited
}
