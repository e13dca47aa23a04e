// This file implements the cell value codec.
package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

var (
	vectorNames = [4]string{"x", "y", "z", "w"}
	colorNames  = [4]string{"r", "g", "b", "a"}
)

// meshCellJSON is the object form of a mesh asset cell.
type meshCellJSON struct {
	Value   string           `json:"value"`
	Preview *meshPreviewJSON `json:"preview,omitempty"`
}

// decodeCell decodes one persisted cell of col. ok is false when the payload
// holds no value.
func (c *codec) decodeCell(col *types.Column, raw json.RawMessage) (types.CellValue, bool) {
	raw = bytes.TrimSpace(raw)
	if formula, inner, ok := unwrapFormula(raw); ok {
		v, ok := c.decodeValue(col, inner)
		if !ok {
			v = emptyValue(col)
		}
		v.Formula = formula
		return v, true
	}
	return c.decodeValue(col, raw)
}

// unwrapFormula recognizes the {"f": text, "v": value} wrapper.
func unwrapFormula(raw json.RawMessage) (formula string, inner json.RawMessage, ok bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return "", nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, false
	}
	f, hasF := fields["f"]
	if !hasF {
		return "", nil, false
	}
	for k := range fields {
		if k != "f" && k != "v" {
			return "", nil, false
		}
	}
	if err := json.Unmarshal(f, &formula); err != nil {
		return "", nil, false
	}
	return formula, bytes.TrimSpace(fields["v"]), true
}

func (c *codec) decodeValue(col *types.Column, raw json.RawMessage) (types.CellValue, bool) {
	if isNull(raw) {
		return types.CellValue{}, false
	}
	if !c.mapper.IsBuiltin(col.TypeID) {
		if c.plugins != nil {
			if v, ok := c.plugins.TryDecode(col, raw); ok {
				return v, true
			}
		}
		return types.TextCell(decodeGeneric(raw)), true
	}

	switch col.Kind {
	case types.KindNumber:
		return decodeNumber(col, raw), true
	case types.KindCheckbox:
		return decodeCheckbox(col, raw), true
	case types.KindFormula:
		return decodeByShape(raw), true
	case types.KindMeshAsset:
		return decodeMesh(raw), true
	case types.KindVec2, types.KindVec3, types.KindVec4, types.KindColor:
		return decodeVector(col.Kind, raw), true
	default:
		return types.TextCell(decodeGeneric(raw)), true
	}
}

// emptyValue is the value of a formula wrapper whose inner value is missing.
func emptyValue(col *types.Column) types.CellValue {
	switch col.Kind {
	case types.KindNumber:
		return types.NumberCell(0)
	case types.KindCheckbox:
		return types.BoolCell(false)
	default:
		return types.TextCell("")
	}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// decodeGeneric renders any JSON value as text: strings stay text, numbers
// use the invariant format, booleans become "true"/"false", and objects and
// arrays keep their literal form.
func decodeGeneric(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case 't':
		return "true"
	case 'f':
		return "false"
	case 'n':
		return ""
	case '{', '[':
		return string(raw)
	default:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return types.FormatNumber(f)
		}
	}
	return string(raw)
}

func decodeByShape(raw json.RawMessage) types.CellValue {
	switch raw[0] {
	case 't', 'f':
		return types.BoolCell(raw[0] == 't')
	case '"', '{', '[':
		return types.TextCell(decodeGeneric(raw))
	default:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return types.NumberCell(f)
		}
		return types.TextCell(string(raw))
	}
}

// decodeNumber coerces a payload to a number. A Number column that carries
// a formula keeps a text payload as a live-formula placeholder.
func decodeNumber(col *types.Column, raw json.RawMessage) types.CellValue {
	switch raw[0] {
	case '"':
		s := decodeGeneric(raw)
		if col.Formula != "" {
			return types.TextCell(s)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return types.NumberCell(0)
		}
		return types.NumberCell(f)
	case 't':
		return types.NumberCell(1)
	case 'f':
		return types.NumberCell(0)
	case '{', '[':
		if col.Formula != "" {
			return types.TextCell(string(raw))
		}
		return types.NumberCell(0)
	default:
		f, _ := strconv.ParseFloat(string(raw), 64)
		return types.NumberCell(f)
	}
}

// decodeCheckbox coerces a payload to a boolean, with the same formula
// placeholder rule as decodeNumber.
func decodeCheckbox(col *types.Column, raw json.RawMessage) types.CellValue {
	switch raw[0] {
	case 't', 'f':
		return types.BoolCell(raw[0] == 't')
	case '"':
		s := decodeGeneric(raw)
		if col.Formula != "" {
			return types.TextCell(s)
		}
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return types.BoolCell(false)
		}
		return types.BoolCell(b)
	case '{', '[':
		if col.Formula != "" {
			return types.TextCell(string(raw))
		}
		return types.BoolCell(false)
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return types.BoolCell(err == nil && f != 0)
	}
}

func decodeMesh(raw json.RawMessage) types.CellValue {
	if raw[0] == '{' {
		var m meshCellJSON
		if err := json.Unmarshal(raw, &m); err == nil {
			return types.CellValue{Kind: types.CellMesh, Text: m.Value, Preview: decodeMeshPreview(m.Preview)}
		}
	}
	return types.CellValue{Kind: types.CellMesh, Text: decodeGeneric(raw)}
}

// decodeVector accepts a positional array or a named-component object.
// Missing components default to zero, except color alpha which defaults to
// one. Values are never clamped.
func decodeVector(kind types.ColumnKind, raw json.RawMessage) types.CellValue {
	dims := kind.VectorDims()
	v := types.VectorCell(false, make([]float64, dims)...)
	if kind == types.KindColor {
		v.Vec[3] = 1
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return v
		}
		for i := 0; i < dims && i < len(items); i++ {
			if f, ok := parseComponent(items[i]); ok {
				v.Vec[i] = f
			}
		}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return v
		}
		v.Named = true
		primary, alternate := vectorNames, colorNames
		if kind == types.KindColor {
			primary, alternate = colorNames, vectorNames
		}
		for i := 0; i < dims; i++ {
			item, ok := fields[primary[i]]
			if !ok {
				item, ok = fields[alternate[i]]
			}
			if !ok {
				continue
			}
			if f, ok := parseComponent(item); ok {
				v.Vec[i] = f
			}
		}
	default:
		return types.TextCell(decodeGeneric(raw))
	}
	return v
}

func parseComponent(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// encodeCell encodes v for col, wrapping it when it carries a formula
// override.
func (c *codec) encodeCell(col *types.Column, v types.CellValue) (json.RawMessage, error) {
	inner, err := c.encodeValue(col, v)
	if err != nil {
		return nil, err
	}
	if !v.HasFormula() {
		return inner, nil
	}
	return json.Marshal(formulaCellJSON{F: v.Formula, V: inner})
}

func (c *codec) encodeValue(col *types.Column, v types.CellValue) (json.RawMessage, error) {
	plugin := !c.mapper.IsBuiltin(col.TypeID)
	if plugin && c.plugins != nil {
		if raw, ok := c.plugins.TryEncode(col, v); ok {
			return raw, nil
		}
	}

	switch v.Kind {
	case types.CellNumber:
		return encodeNumber(v.Number)
	case types.CellBool:
		return json.Marshal(v.Bool)
	case types.CellVec2, types.CellVec3, types.CellVec4:
		return encodeVector(col.Kind, v)
	case types.CellMesh:
		p := types.NormalizeMeshPreview(v.Preview)
		if p == nil {
			return json.Marshal(v.Text)
		}
		return json.Marshal(meshCellJSON{Value: v.Text, Preview: encodeMeshPreview(p)})
	default:
		if plugin {
			if raw, ok := literalJSON(v.Text); ok {
				return raw, nil
			}
		}
		return json.Marshal(v.Text)
	}
}

// literalJSON returns text as a raw JSON value when decodeGeneric would turn
// that raw value back into exactly the same text. It lets the generic
// fallback preserve the shape of plugin payloads.
func literalJSON(text string) (json.RawMessage, bool) {
	if text == "" || text[0] == '"' || !json.Valid([]byte(text)) {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil || buf.String() != text {
		return nil, false
	}
	raw := json.RawMessage(text)
	if decodeGeneric(raw) != text {
		return nil, false
	}
	return raw, true
}

func encodeNumber(f float64) (json.RawMessage, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	return json.Marshal(f)
}

// encodeVector writes the array form, or the named form with components in
// x,y,z,w (or r,g,b,a) order when the value was read that way.
func encodeVector(kind types.ColumnKind, v types.CellValue) (json.RawMessage, error) {
	dims := v.Dims()
	if !v.Named {
		comps := make([]float64, dims)
		for i := range comps {
			comps[i] = finite(v.Vec[i])
		}
		return json.Marshal(comps)
	}

	names := vectorNames
	if kind == types.KindColor {
		names = colorNames
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < dims; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(names[i])
		num, err := json.Marshal(finite(v.Vec[i]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(num)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
