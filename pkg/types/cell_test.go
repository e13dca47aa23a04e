package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellValueString(t *testing.T) {
	assert.Equal(t, "hello", TextCell("hello").String())
	assert.Equal(t, "2.5", NumberCell(2.5).String())
	assert.Equal(t, "1000000", NumberCell(1e6).String())
	assert.Equal(t, "true", BoolCell(true).String())
	assert.Equal(t, "(1, 2.5, 3)", VectorCell(false, 1, 2.5, 3).String())
	assert.Equal(t, "mesh.obj", MeshCell("mesh.obj", nil).String())
}

func TestVectorCell(t *testing.T) {
	v := VectorCell(true, 1, 2)
	assert.Equal(t, CellVec2, v.Kind)
	assert.Equal(t, 2, v.Dims())
	assert.True(t, v.Named)
	assert.Equal(t, 4, VectorCell(false, 1, 2, 3, 4).Dims())
	assert.Equal(t, 0, TextCell("x").Dims())
}

func TestFormulaOverride(t *testing.T) {
	v := NumberCell(3)
	assert.False(t, v.HasFormula())
	w := v.WithFormula("=a+b")
	assert.True(t, w.HasFormula())
	assert.False(t, v.HasFormula())
	assert.False(t, v.WithFormula("   ").HasFormula())
}

func TestIsBlank(t *testing.T) {
	assert.True(t, TextCell(" ").IsBlank())
	assert.True(t, MeshCell("", nil).IsBlank())
	assert.False(t, TextCell("a").IsBlank())
	assert.False(t, NumberCell(0).IsBlank())
}

func TestMeshCellNormalizesPreview(t *testing.T) {
	assert.Nil(t, MeshCell("m", &MeshPreview{Zoom: 1}).Preview)
	assert.Equal(t, &MeshPreview{Yaw: 10, Zoom: 1}, MeshCell("m", &MeshPreview{Yaw: 10, Zoom: 1}).Preview)
}
