// This file implements the derived-table configuration codec.
package storage

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

const appendSuffix = "#append"

// decodeDerived converts the stored configuration and assigns stable step
// ids. Row ids of appended rows are derived from step ids, so the rules
// below must produce the same ids on every load:
//
//  1. a step without an id takes its source table id;
//  2. an Append step whose defaulted id equals the base table id gets the
//     "#append" suffix so it cannot collide with base-seeded rows;
//  3. Append steps that still share an id keep the first one and suffix
//     the rest with "#<n>", n being the step's position in the list.
func decodeDerived(dj derivedJSON) *types.DerivedConfig {
	d := &types.DerivedConfig{
		BaseTableID: dj.BaseTableID,
		Filter:      dj.Filter,
	}

	for _, sj := range dj.Steps {
		step := types.DerivedStep{
			ID:            strings.TrimSpace(sj.ID),
			Kind:          types.ParseStepKind(sj.Kind),
			SourceTableID: sj.SourceTableID,
		}
		if step.Kind == types.StepJoin {
			step.JoinKind = types.ParseJoinKind(sj.JoinKind)
		} else if sj.JoinKind != "" {
			step.JoinKind = types.ParseJoinKind(sj.JoinKind)
		}
		for _, k := range sj.Keys {
			step.Keys = append(step.Keys, types.KeyMapping{BaseColumnID: k.BaseColumnID, SourceColumnID: k.SourceColumnID})
		}
		if step.ID == "" {
			step.ID = step.SourceTableID
			if step.Kind == types.StepAppend && step.ID == d.BaseTableID {
				step.ID += appendSuffix
			}
		}
		d.Steps = append(d.Steps, step)
	}

	seen := make(map[string]bool)
	for i := range d.Steps {
		step := &d.Steps[i]
		if step.Kind != types.StepAppend {
			continue
		}
		if seen[step.ID] {
			step.ID += "#" + strconv.Itoa(i)
		}
		seen[step.ID] = true
	}

	for _, p := range dj.Projections {
		d.Projections = append(d.Projections, types.Projection{
			SourceTableID:  p.SourceTableID,
			SourceColumnID: p.SourceColumnID,
			OutputColumnID: p.OutputColumnID,
			Alias:          p.Alias,
		})
	}
	for _, s := range dj.Suppressed {
		d.Suppressed = append(d.Suppressed, types.SuppressedProjection{
			SourceTableID:  s.SourceTableID,
			SourceColumnID: s.SourceColumnID,
		})
	}
	return d
}

func encodeDerived(d *types.DerivedConfig) derivedJSON {
	dj := derivedJSON{
		BaseTableID: d.BaseTableID,
		Filter:      d.Filter,
	}
	for _, s := range d.Steps {
		sj := stepJSON{
			ID:            s.ID,
			Kind:          string(s.Kind),
			SourceTableID: s.SourceTableID,
			JoinKind:      string(s.JoinKind),
		}
		if sj.Kind == "" {
			sj.Kind = string(types.StepAppend)
		}
		for _, k := range s.Keys {
			sj.Keys = append(sj.Keys, keyMappingJSON{BaseColumnID: k.BaseColumnID, SourceColumnID: k.SourceColumnID})
		}
		dj.Steps = append(dj.Steps, sj)
	}
	for _, p := range d.Projections {
		dj.Projections = append(dj.Projections, projectionJSON{
			SourceTableID:  p.SourceTableID,
			SourceColumnID: p.SourceColumnID,
			OutputColumnID: p.OutputColumnID,
			Alias:          p.Alias,
		})
	}
	for _, s := range d.Suppressed {
		dj.Suppressed = append(dj.Suppressed, suppressedJSON{
			SourceTableID:  s.SourceTableID,
			SourceColumnID: s.SourceColumnID,
		})
	}
	return dj
}
