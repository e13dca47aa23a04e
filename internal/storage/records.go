// JSON record structures for the project directory. These structs mirror
// the on-disk shape exactly; conversion to and from pkg/types happens in the
// codec files. Optional fields carry omitempty so defaults are not written.
package storage

import "encoding/json"

// projectJSON is project.json.
type projectJSON struct {
	Name           string            `json:"name"`
	Folders        []folderJSON      `json:"folders,omitempty"`
	Tables         []tableRefJSON    `json:"tables"`
	Documents      []documentRefJSON `json:"documents,omitempty"`
	UI             *uiStateJSON      `json:"ui,omitempty"`
	PluginSettings map[string]string `json:"pluginSettings,omitempty"`
	// Variants is the legacy project-wide variant list. It is read for
	// migration and never written.
	Variants []variantJSON `json:"variants,omitempty"`
}

type folderJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	ParentID string `json:"parentId,omitempty"`
}

type tableRefJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FileName string `json:"fileName"`
	FolderID string `json:"folderId,omitempty"`
}

type documentRefJSON struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	FileName string `json:"fileName"`
	FolderID string `json:"folderId,omitempty"`
}

type uiStateJSON struct {
	TableFolders    map[string]bool `json:"tableFolders,omitempty"`
	DocumentFolders map[string]bool `json:"documentFolders,omitempty"`
}

type variantJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// schemaJSON is tables/{file}.schema.json.
type schemaJSON struct {
	Columns   []columnJSON   `json:"columns"`
	Variants  []variantJSON  `json:"variants,omitempty"`
	Keys      *keysJSON      `json:"keys,omitempty"`
	Variables []variableJSON `json:"variables,omitempty"`
	Derived   *derivedJSON   `json:"derived,omitempty"`
	Export    *exportJSON    `json:"export,omitempty"`

	SchemaSourceTableID      string `json:"schemaSourceTableId,omitempty"`
	InheritanceSourceTableID string `json:"inheritanceSourceTableId,omitempty"`
	ParentTableID            string `json:"parentTableId,omitempty"`
	ParentRowColumnID        string `json:"parentRowColumnId,omitempty"`

	SystemKey               string `json:"systemKey,omitempty"`
	SystemSchemaLocked      bool   `json:"systemSchemaLocked,omitempty"`
	SystemDataLocked        bool   `json:"systemDataLocked,omitempty"`
	PluginTableTypeID       string `json:"pluginTableTypeId,omitempty"`
	PluginOwnerColumnTypeID string `json:"pluginOwnerColumnTypeId,omitempty"`
	PluginSchemaLocked      bool   `json:"pluginSchemaLocked,omitempty"`
}

type columnJSON struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Kind           string   `json:"kind"`
	TypeID         string   `json:"typeId,omitempty"`
	PluginSettings string   `json:"pluginSettings,omitempty"`
	Width          float64  `json:"width,omitempty"`
	Options        []string `json:"options,omitempty"`
	Formula        string   `json:"formula,omitempty"`

	RelationTargetMode      string `json:"relationTargetMode,omitempty"`
	RelationTableID         string `json:"relationTableId,omitempty"`
	RelationTableVariantID  int    `json:"relationTableVariantId,omitempty"`
	RelationDisplayColumnID string `json:"relationDisplayColumnId,omitempty"`

	TableRefBaseTableID string `json:"tableRefBaseTableId,omitempty"`
	RowRefColumnID      string `json:"rowRefColumnId,omitempty"`

	Hidden    bool `json:"hidden,omitempty"`
	Projected bool `json:"projected,omitempty"`
	Inherited bool `json:"inherited,omitempty"`

	ExportType     string `json:"exportType,omitempty"`
	ExportEnumName string `json:"exportEnumName,omitempty"`
	ExportIgnore   bool   `json:"exportIgnore,omitempty"`

	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	SubtableDisplayColumnID string `json:"subtableDisplayColumnId,omitempty"`
	SubtablePreviewRows     int    `json:"subtablePreviewRows,omitempty"`

	EvalScope string `json:"evalScope,omitempty"`
	// LivePreviewPriority is the legacy spelling of EvalScope.
	LivePreviewPriority string `json:"livePreviewPriority,omitempty"`

	MeshPreview *meshPreviewJSON `json:"meshPreview,omitempty"`
}

// meshPreviewJSON uses pointers so a missing field takes its default rather
// than zero.
type meshPreviewJSON struct {
	Yaw     *float64 `json:"yaw,omitempty"`
	Pitch   *float64 `json:"pitch,omitempty"`
	PanX    *float64 `json:"panX,omitempty"`
	PanY    *float64 `json:"panY,omitempty"`
	Zoom    *float64 `json:"zoom,omitempty"`
	Texture string   `json:"texture,omitempty"`
}

type keysJSON struct {
	PrimaryKeyColumnID string             `json:"primaryKeyColumnId,omitempty"`
	SecondaryKeys      []secondaryKeyJSON `json:"secondaryKeys,omitempty"`
}

type secondaryKeyJSON struct {
	ColumnID string `json:"columnId"`
	Unique   bool   `json:"unique,omitempty"`
}

type variableJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	TypeID     string `json:"typeId,omitempty"`
	Expression string `json:"expression,omitempty"`
}

type exportJSON struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	TypeName  string `json:"typeName,omitempty"`
}

type derivedJSON struct {
	BaseTableID string           `json:"baseTableId"`
	Filter      string           `json:"filter,omitempty"`
	Steps       []stepJSON       `json:"steps,omitempty"`
	Projections []projectionJSON `json:"projections,omitempty"`
	Suppressed  []suppressedJSON `json:"suppressed,omitempty"`
}

type stepJSON struct {
	ID            string           `json:"id,omitempty"`
	Kind          string           `json:"kind"`
	SourceTableID string           `json:"sourceTableId"`
	JoinKind      string           `json:"joinKind,omitempty"`
	Keys          []keyMappingJSON `json:"keys,omitempty"`
}

type keyMappingJSON struct {
	BaseColumnID   string `json:"baseColumnId"`
	SourceColumnID string `json:"sourceColumnId"`
}

type projectionJSON struct {
	SourceTableID  string `json:"sourceTableId"`
	SourceColumnID string `json:"sourceColumnId"`
	OutputColumnID string `json:"outputColumnId"`
	Alias          string `json:"alias,omitempty"`
}

type suppressedJSON struct {
	SourceTableID  string `json:"sourceTableId"`
	SourceColumnID string `json:"sourceColumnId"`
}

// rowJSON is one line of rows.jsonl and of the own-data files.
type rowJSON struct {
	ID    string                     `json:"id"`
	Cells map[string]json.RawMessage `json:"cells,omitempty"`
}

// Variant log operations.
const (
	opRowDelete = "row_delete"
	opRowAdd    = "row_add"
	opCellSet   = "cell_set"
)

// variantOpJSON is one line of variants.jsonl.
type variantOpJSON struct {
	VariantID int                        `json:"variantId"`
	Op        string                     `json:"op"`
	RowID     string                     `json:"rowId,omitempty"`
	ColumnID  string                     `json:"columnId,omitempty"`
	Cells     map[string]json.RawMessage `json:"cells,omitempty"`
	Value     json.RawMessage            `json:"value,omitempty"`
}

// formulaCellJSON wraps a cell value that overrides a live formula.
type formulaCellJSON struct {
	F string          `json:"f"`
	V json.RawMessage `json:"v,omitempty"`
}

// viewsJSON is tables/{file}.views.json.
type viewsJSON struct {
	Views []viewJSON `json:"views"`
}

type viewJSON struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	Filter          string         `json:"filter,omitempty"`
	Sorts           []viewSortJSON `json:"sorts,omitempty"`
	GroupByColumnID string         `json:"groupByColumnId,omitempty"`
	HiddenColumnIDs []string       `json:"hiddenColumnIds,omitempty"`
}

type viewSortJSON struct {
	ColumnID   string `json:"columnId"`
	Descending bool   `json:"descending,omitempty"`
}

// documentMetaJSON is docs/{file}.meta.json.
type documentMetaJSON struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// blockJSON is one line of docs/{file}.blocks.jsonl.
type blockJSON struct {
	ID        string             `json:"id"`
	Order     string             `json:"order,omitempty"`
	Type      string             `json:"type"`
	Indent    int                `json:"indent,omitempty"`
	Checked   bool               `json:"checked,omitempty"`
	Language  string             `json:"language,omitempty"`
	Table     *embeddedTableJSON `json:"table,omitempty"`
	Variables map[string]string  `json:"variables,omitempty"`
	Text      string             `json:"text,omitempty"`
	Spans     []spanJSON         `json:"spans,omitempty"`
}

type embeddedTableJSON struct {
	TableID   string  `json:"tableId"`
	VariantID int     `json:"variantId,omitempty"`
	ViewID    string  `json:"viewId,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
}

type spanJSON struct {
	Start  int    `json:"start"`
	Length int    `json:"length"`
	Style  uint32 `json:"style"`
}
