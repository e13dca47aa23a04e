package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

func stepIDs(d *types.DerivedConfig) []string {
	ids := make([]string, len(d.Steps))
	for i, s := range d.Steps {
		ids[i] = s.ID
	}
	return ids
}

func TestDerivedStepIDRules(t *testing.T) {
	tests := []struct {
		name  string
		steps []stepJSON
		want  []string
	}{
		{
			name:  "explicit ids kept",
			steps: []stepJSON{{ID: "s1", Kind: "Append", SourceTableID: "A"}},
			want:  []string{"s1"},
		},
		{
			name:  "missing id defaults to source",
			steps: []stepJSON{{Kind: "Append", SourceTableID: "A"}, {Kind: "Join", SourceTableID: "B"}},
			want:  []string{"A", "B"},
		},
		{
			name:  "append of base gets suffix",
			steps: []stepJSON{{Kind: "Append", SourceTableID: "BASE"}},
			want:  []string{"BASE#append"},
		},
		{
			name:  "join of base keeps plain id",
			steps: []stepJSON{{Kind: "Join", SourceTableID: "BASE"}},
			want:  []string{"BASE"},
		},
		{
			name: "repeated appends numbered by position",
			steps: []stepJSON{
				{Kind: "Append", SourceTableID: "A"},
				{Kind: "Join", SourceTableID: "J"},
				{Kind: "Append", SourceTableID: "A"},
				{Kind: "Append", SourceTableID: "A"},
			},
			want: []string{"A", "J", "A#2", "A#3"},
		},
		{
			name: "repeated base appends",
			steps: []stepJSON{
				{Kind: "Append", SourceTableID: "BASE"},
				{Kind: "Append", SourceTableID: "BASE"},
			},
			want: []string{"BASE#append", "BASE#append#1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decodeDerived(derivedJSON{BaseTableID: "BASE", Steps: tt.steps})
			assert.Equal(t, tt.want, stepIDs(d))

			// Ids are stable across a save and reload.
			again := decodeDerived(encodeDerived(d))
			assert.Equal(t, tt.want, stepIDs(again))
		})
	}
}

func TestDerivedConfigRoundTrip(t *testing.T) {
	in := derivedJSON{
		BaseTableID: "items",
		Filter:      "price > 0",
		Steps: []stepJSON{
			{ID: "prices", Kind: "Join", SourceTableID: "prices", JoinKind: "Inner", Keys: []keyMappingJSON{{BaseColumnID: "sku", SourceColumnID: "sku"}}},
			{Kind: "Append", SourceTableID: "extra"},
		},
		Projections: []projectionJSON{{SourceTableID: "prices", SourceColumnID: "amount", OutputColumnID: "price", Alias: "Price"}},
		Suppressed:  []suppressedJSON{{SourceTableID: "items", SourceColumnID: "internal"}},
	}
	d := decodeDerived(in)
	require.Len(t, d.Steps, 2)
	assert.Equal(t, types.StepJoin, d.Steps[0].Kind)
	assert.Equal(t, types.JoinInner, d.Steps[0].JoinKind)
	assert.Equal(t, []types.KeyMapping{{BaseColumnID: "sku", SourceColumnID: "sku"}}, d.Steps[0].Keys)
	assert.Equal(t, types.StepAppend, d.Steps[1].Kind)
	assert.Equal(t, "extra", d.Steps[1].ID)
	assert.Equal(t, []types.Projection{{SourceTableID: "prices", SourceColumnID: "amount", OutputColumnID: "price", Alias: "Price"}}, d.Projections)
	assert.Equal(t, []types.SuppressedProjection{{SourceTableID: "items", SourceColumnID: "internal"}}, d.Suppressed)

	assert.Equal(t, d, decodeDerived(encodeDerived(d)))
}

func TestDerivedUnknownKindsFallBack(t *testing.T) {
	d := decodeDerived(derivedJSON{BaseTableID: "b", Steps: []stepJSON{{Kind: "Merge", SourceTableID: "s", JoinKind: "Cross"}}})
	assert.Equal(t, types.StepAppend, d.Steps[0].Kind)
	assert.Equal(t, types.JoinLeft, d.Steps[0].JoinKind)

	d = decodeDerived(derivedJSON{BaseTableID: "b", Steps: []stepJSON{{Kind: "Join", SourceTableID: "s"}}})
	assert.Equal(t, types.JoinLeft, d.Steps[0].JoinKind)
}
