package types

import (
	"strconv"
	"strings"
)

// CellKind tags the variant held by a CellValue.
type CellKind uint8

// Cell value variants.
const (
	CellText CellKind = iota
	CellNumber
	CellBool
	CellVec2
	CellVec3
	CellVec4
	CellMesh
)

// CellValue is a tagged union over the value shapes a cell can hold. Only the
// fields belonging to Kind are meaningful.
//
// Formula, when non-blank, marks the value as a computed override of a live
// formula rather than an author-entered literal.
type CellValue struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
	// Vec holds vector and color components (x,y,z,w or r,g,b,a).
	Vec [4]float64
	// Named records that the vector was written as a named-component object
	// rather than a positional array.
	Named bool
	// Preview is the per-cell mesh preview of a CellMesh value, nil when
	// default.
	Preview *MeshPreview
	Formula string
}

// TextCell returns a text value.
func TextCell(s string) CellValue { return CellValue{Kind: CellText, Text: s} }

// NumberCell returns a numeric value.
func NumberCell(f float64) CellValue { return CellValue{Kind: CellNumber, Number: f} }

// BoolCell returns a boolean value.
func BoolCell(b bool) CellValue { return CellValue{Kind: CellBool, Bool: b} }

// VectorCell returns a vector value with len(components) dimensions (2 to 4).
func VectorCell(named bool, components ...float64) CellValue {
	v := CellValue{Named: named}
	switch len(components) {
	case 2:
		v.Kind = CellVec2
	case 3:
		v.Kind = CellVec3
	default:
		v.Kind = CellVec4
	}
	copy(v.Vec[:], components)
	return v
}

// MeshCell returns a mesh asset value with an optional preview.
func MeshCell(path string, preview *MeshPreview) CellValue {
	return CellValue{Kind: CellMesh, Text: path, Preview: NormalizeMeshPreview(preview)}
}

// WithFormula returns a copy of v carrying the given formula override.
func (v CellValue) WithFormula(expr string) CellValue {
	v.Formula = expr
	return v
}

// HasFormula reports whether v carries a non-blank formula override.
func (v CellValue) HasFormula() bool {
	return strings.TrimSpace(v.Formula) != ""
}

// Dims returns the number of vector components, or 0 for non-vector values.
func (v CellValue) Dims() int {
	switch v.Kind {
	case CellVec2:
		return 2
	case CellVec3:
		return 3
	case CellVec4:
		return 4
	default:
		return 0
	}
}

// IsBlank reports whether v is an empty text or mesh value.
func (v CellValue) IsBlank() bool {
	switch v.Kind {
	case CellText, CellMesh:
		return strings.TrimSpace(v.Text) == ""
	default:
		return false
	}
}

// String renders v as display text.
func (v CellValue) String() string {
	switch v.Kind {
	case CellNumber:
		return FormatNumber(v.Number)
	case CellBool:
		return strconv.FormatBool(v.Bool)
	case CellVec2, CellVec3, CellVec4:
		parts := make([]string, v.Dims())
		for i := range parts {
			parts[i] = FormatNumber(v.Vec[i])
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return v.Text
	}
}

// FormatNumber renders f in the culture-invariant form used whenever a
// number has to become text.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
