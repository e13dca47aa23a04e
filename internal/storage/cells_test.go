package storage

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

func roundTripCell(t *testing.T, c *codec, col *types.Column, raw string) (types.CellValue, string) {
	t.Helper()
	v, ok := c.decodeCell(col, json.RawMessage(raw))
	require.True(t, ok, "decode %s", raw)
	out, err := c.encodeCell(col, v)
	require.NoError(t, err)
	return v, string(out)
}

func TestCellRoundTripPerKind(t *testing.T) {
	c := newCodec(Options{})

	tests := []struct {
		name string
		kind types.ColumnKind
		raw  string
	}{
		{"text", types.KindText, `"hello"`},
		{"text with escapes", types.KindText, `"a\"b"`},
		{"number integer", types.KindNumber, `5`},
		{"number fraction", types.KindNumber, `2.5`},
		{"number negative", types.KindNumber, `-3`},
		{"checkbox true", types.KindCheckbox, `true`},
		{"checkbox false", types.KindCheckbox, `false`},
		{"formula number", types.KindFormula, `3`},
		{"formula text", types.KindFormula, `"x"`},
		{"id", types.KindID, `"r1"`},
		{"select", types.KindSelect, `"Open"`},
		{"relation", types.KindRelation, `"row-9"`},
		{"ui asset", types.KindUIAsset, `"ui/panel.ui"`},
		{"vec2 array", types.KindVec2, `[1,2]`},
		{"vec2 object", types.KindVec2, `{"x":1,"y":2}`},
		{"vec3 array", types.KindVec3, `[1.5,-2,3]`},
		{"vec3 object", types.KindVec3, `{"x":1,"y":2,"z":3}`},
		{"vec4 array", types.KindVec4, `[1,2,3,4]`},
		{"vec4 object", types.KindVec4, `{"x":1,"y":2,"z":3,"w":4}`},
		{"color array", types.KindColor, `[1,0,0,1]`},
		{"color object", types.KindColor, `{"r":0.5,"g":0.25,"b":1,"a":0.75}`},
		{"mesh path", types.KindMeshAsset, `"meshes/crate.obj"`},
		{"mesh with preview", types.KindMeshAsset, `{"value":"meshes/crate.obj","preview":{"yaw":45,"zoom":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := types.NewColumn("c1", "C", tt.kind)
			_, out := roundTripCell(t, c, &col, tt.raw)
			assert.Equal(t, tt.raw, out)
		})
	}
}

func TestVectorDecodeDefaults(t *testing.T) {
	c := newCodec(Options{})

	color := types.NewColumn("c", "Color", types.KindColor)
	v, out := roundTripCell(t, c, &color, `{"r":1}`)
	assert.Equal(t, [4]float64{1, 0, 0, 1}, v.Vec)
	assert.True(t, v.Named)
	assert.Equal(t, `{"r":1,"g":0,"b":0,"a":1}`, out)

	vec := types.NewColumn("v", "Pos", types.KindVec3)
	v, _ = roundTripCell(t, c, &vec, `[7]`)
	assert.Equal(t, types.CellVec3, v.Kind)
	assert.Equal(t, [4]float64{7, 0, 0, 0}, v.Vec)

	// Alternate component names are accepted on read.
	v, out = roundTripCell(t, c, &vec, `{"r":1,"g":2,"b":3}`)
	assert.Equal(t, [4]float64{1, 2, 3, 0}, v.Vec)
	assert.Equal(t, `{"x":1,"y":2,"z":3}`, out)

	// Cell data is never clamped.
	v, _ = roundTripCell(t, c, &color, `[5,-2,300,1]`)
	assert.Equal(t, [4]float64{5, -2, 300, 1}, v.Vec)
}

func TestMeshCellPreviewNormalized(t *testing.T) {
	c := newCodec(Options{})
	col := types.NewColumn("m", "Mesh", types.KindMeshAsset)

	v, out := roundTripCell(t, c, &col, `{"value":"a.obj","preview":{"zoom":1}}`)
	assert.Nil(t, v.Preview)
	assert.Equal(t, `"a.obj"`, out)

	v, out = roundTripCell(t, c, &col, `{"value":"a.obj","preview":{"pitch":120,"zoom":50}}`)
	require.NotNil(t, v.Preview)
	assert.Equal(t, 89.0, v.Preview.Pitch)
	assert.Equal(t, 10.0, v.Preview.Zoom)
	assert.Equal(t, `{"value":"a.obj","preview":{"pitch":89,"zoom":10}}`, out)
}

func TestFormulaOverrideWrapper(t *testing.T) {
	c := newCodec(Options{})
	col := types.NewColumn("n", "N", types.KindNumber)

	v, out := roundTripCell(t, c, &col, `{"f":"=a+b","v":2}`)
	assert.Equal(t, types.CellNumber, v.Kind)
	assert.Equal(t, 2.0, v.Number)
	assert.Equal(t, "=a+b", v.Formula)
	assert.Equal(t, `{"f":"=a+b","v":2}`, out)

	raw, err := c.encodeCell(&col, types.NumberCell(4).WithFormula("=x*2"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"f":"=x*2","v":4}`, string(raw))

	// A blank formula is not an override.
	raw, err = c.encodeCell(&col, types.NumberCell(4).WithFormula("  "))
	require.NoError(t, err)
	assert.Equal(t, `4`, string(raw))

	// An object with other keys is a plain value, not a wrapper.
	text := types.NewColumn("t", "T", types.KindText)
	v, _ = roundTripCell(t, c, &text, `{"f":"x","other":1}`)
	assert.Empty(t, v.Formula)
	assert.Equal(t, `{"f":"x","other":1}`, v.Text)
}

func TestFormulaPlaceholderOnTypedColumns(t *testing.T) {
	c := newCodec(Options{})

	num := types.NewColumn("n", "N", types.KindNumber)
	num.Formula = "=price*qty"
	v, out := roundTripCell(t, c, &num, `"#pending"`)
	assert.Equal(t, types.CellText, v.Kind)
	assert.Equal(t, "#pending", v.Text)
	assert.Equal(t, `"#pending"`, out)

	box := types.NewColumn("b", "B", types.KindCheckbox)
	box.Formula = "=done"
	v, _ = roundTripCell(t, c, &box, `"?"`)
	assert.Equal(t, types.CellText, v.Kind)

	// Without a formula the payload is coerced.
	plain := types.NewColumn("p", "P", types.KindNumber)
	v, out = roundTripCell(t, c, &plain, `"12.5"`)
	assert.Equal(t, types.NumberCell(12.5), v)
	assert.Equal(t, `12.5`, out)

	v, _ = roundTripCell(t, c, &plain, `"abc"`)
	assert.Equal(t, types.NumberCell(0), v)
}

func TestNullCellIsAbsent(t *testing.T) {
	c := newCodec(Options{})
	col := types.NewColumn("t", "T", types.KindText)
	_, ok := c.decodeCell(&col, json.RawMessage(`null`))
	assert.False(t, ok)
}

type upperCodec struct{}

func (u upperCodec) TryDecode(col *types.Column, raw json.RawMessage) (types.CellValue, bool) {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return types.CellValue{}, false
	}
	return types.TextCell("plugin:" + s), true
}

func (u upperCodec) TryEncode(col *types.Column, v types.CellValue) (json.RawMessage, bool) {
	if !strings.HasPrefix(v.Text, "plugin:") {
		return nil, false
	}
	data, _ := json.Marshal(strings.TrimPrefix(v.Text, "plugin:"))
	return data, true
}

func TestPluginCodecAndGenericFallback(t *testing.T) {
	plugins := types.CodecRegistry{"ext.upper": upperCodec{}}
	c := newCodec(Options{Plugins: plugins})

	col := types.Column{ID: "p", Name: "P", Kind: types.KindText, TypeID: "ext.upper"}
	v, out := roundTripCell(t, c, &col, `"abc"`)
	assert.Equal(t, "plugin:abc", v.Text)
	assert.Equal(t, `"abc"`, out)

	// The plugin declines non-string payloads; the generic fallback keeps
	// their shape.
	for _, raw := range []string{`{"a":1}`, `[1,2]`, `true`, `12`} {
		_, out := roundTripCell(t, c, &col, raw)
		assert.Equal(t, raw, out)
	}

	unknown := types.Column{ID: "u", Name: "U", Kind: types.KindNumber, TypeID: "ext.unregistered"}
	v, out = roundTripCell(t, c, &unknown, `1.25`)
	assert.Equal(t, types.TextCell("1.25"), v)
	assert.Equal(t, `1.25`, out)
}

func TestDecodeGeneric(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"text"`, "text"},
		{`3`, "3"},
		{`1e3`, "1000"},
		{`0.1`, "0.1"},
		{`true`, "true"},
		{`false`, "false"},
		{`null`, ""},
		{`{"a": 1}`, `{"a": 1}`},
		{`[1, 2]`, `[1, 2]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, decodeGeneric(json.RawMessage(tt.raw)), tt.raw)
	}
}
