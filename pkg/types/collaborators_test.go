package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltinTypeMapper(t *testing.T) {
	m := BuiltinTypeMapper{}
	assert.Equal(t, "builtin.number", m.ResolveTypeID(KindNumber, ""))
	assert.Equal(t, "builtin.number", m.ResolveTypeID(KindNumber, "  "))
	assert.Equal(t, "acme.money", m.ResolveTypeID(KindNumber, "acme.money"))
	assert.True(t, m.IsBuiltin(""))
	assert.True(t, m.IsBuiltin("builtin.text"))
	assert.False(t, m.IsBuiltin("acme.money"))
}

func TestDefaultRelationResolver(t *testing.T) {
	r := DefaultRelationResolver{}
	owner := &Table{ID: "child", ParentTableID: "parent"}
	assert.Equal(t, "child", r.ResolveTargetTable(owner, RelationSelf, "other"))
	assert.Equal(t, "parent", r.ResolveTargetTable(owner, RelationParent, "other"))
	assert.Equal(t, "other", r.ResolveTargetTable(&Table{ID: "x"}, RelationParent, "other"))
	assert.Equal(t, "other", r.ResolveTargetTable(owner, RelationExternal, "other"))
	assert.Equal(t, "other", r.ResolveTargetTable(nil, RelationSelf, "other"))
}

type constCodec struct{ text string }

func (c constCodec) TryDecode(*Column, json.RawMessage) (CellValue, bool) {
	return TextCell(c.text), true
}

func (c constCodec) TryEncode(*Column, CellValue) (json.RawMessage, bool) {
	return json.RawMessage(`"` + c.text + `"`), true
}

func TestCodecRegistry(t *testing.T) {
	reg := CodecRegistry{"acme.money": constCodec{text: "$"}}

	v, ok := reg.TryDecode(&Column{TypeID: "acme.money"}, json.RawMessage(`1`))
	assert.True(t, ok)
	assert.Equal(t, TextCell("$"), v)

	_, ok = reg.TryDecode(&Column{TypeID: "acme.other"}, json.RawMessage(`1`))
	assert.False(t, ok)

	raw, ok := reg.TryEncode(&Column{TypeID: "acme.money"}, TextCell("x"))
	assert.True(t, ok)
	assert.JSONEq(t, `"$"`, string(raw))
}
