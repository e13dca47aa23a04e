package types

// StepKind is the operation a derived-table step applies.
type StepKind string

// Step kinds.
const (
	StepAppend StepKind = "Append"
	StepJoin   StepKind = "Join"
)

// ParseStepKind returns the step kind named by s, defaulting to StepAppend.
func ParseStepKind(s string) StepKind {
	if StepKind(s) == StepJoin {
		return StepJoin
	}
	return StepAppend
}

// JoinKind selects which unmatched rows a join keeps.
type JoinKind string

// Join kinds.
const (
	JoinLeft  JoinKind = "Left"
	JoinInner JoinKind = "Inner"
	JoinFull  JoinKind = "Full"
)

// ParseJoinKind returns the join kind named by s, defaulting to JoinLeft.
func ParseJoinKind(s string) JoinKind {
	switch JoinKind(s) {
	case JoinInner, JoinFull:
		return JoinKind(s)
	default:
		return JoinLeft
	}
}

// KeyMapping pairs a base column with a source column for a join.
type KeyMapping struct {
	BaseColumnID   string
	SourceColumnID string
}

// DerivedStep appends or joins one source table.
type DerivedStep struct {
	ID            string
	Kind          StepKind
	SourceTableID string
	JoinKind      JoinKind
	Keys          []KeyMapping
}

// Projection maps a source column to an output column.
type Projection struct {
	SourceTableID  string
	SourceColumnID string
	OutputColumnID string
	Alias          string
}

// SuppressedProjection excludes a column that would otherwise be inherited.
type SuppressedProjection struct {
	SourceTableID  string
	SourceColumnID string
}

// DerivedConfig describes how a derived table's rows are computed. The
// computation itself happens outside this module.
type DerivedConfig struct {
	BaseTableID string
	Filter      string
	Steps       []DerivedStep
	Projections []Projection
	Suppressed  []SuppressedProjection
}
