package index

// Schema DDL of the query index. Every table is rebuilt from the project on
// each Build; nothing here is ever written back.
const (
	createFolders = `CREATE TABLE folders (
    folder_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    scope TEXT NOT NULL,
    parent_id TEXT
);`

	createTables = `CREATE TABLE tables (
    table_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    file_name TEXT NOT NULL,
    folder_id TEXT,
    derived INTEGER NOT NULL,
    base_table_id TEXT
);`

	createColumns = `CREATE TABLE columns (
    table_id TEXT NOT NULL,
    column_id TEXT NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    type_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    hidden INTEGER NOT NULL,
    projected INTEGER NOT NULL,
    inherited INTEGER NOT NULL,
    formula TEXT,
    PRIMARY KEY (table_id, column_id),
    FOREIGN KEY (table_id) REFERENCES tables(table_id)
);`

	createVariants = `CREATE TABLE variants (
    table_id TEXT NOT NULL,
    variant_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (table_id, variant_id),
    FOREIGN KEY (table_id) REFERENCES tables(table_id)
);`

	createRows = `CREATE TABLE table_rows (
    table_id TEXT NOT NULL,
    variant_id INTEGER NOT NULL,
    row_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (table_id, variant_id, row_id),
    FOREIGN KEY (table_id) REFERENCES tables(table_id)
);`

	createCells = `CREATE TABLE cells (
    table_id TEXT NOT NULL,
    variant_id INTEGER NOT NULL,
    row_id TEXT NOT NULL,
    column_id TEXT NOT NULL,
    value_kind TEXT NOT NULL,
    text_value TEXT NOT NULL,
    number_value REAL,
    formula TEXT,
    PRIMARY KEY (table_id, variant_id, row_id, column_id),
    FOREIGN KEY (table_id, variant_id, row_id) REFERENCES table_rows(table_id, variant_id, row_id)
);`

	createDocuments = `CREATE TABLE documents (
    document_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    file_name TEXT NOT NULL,
    folder_id TEXT
);`

	createBlocks = `CREATE TABLE blocks (
    document_id TEXT NOT NULL,
    block_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    order_key TEXT NOT NULL,
    type TEXT NOT NULL,
    indent INTEGER NOT NULL,
    checked INTEGER NOT NULL,
    text TEXT NOT NULL,
    table_id TEXT,
    PRIMARY KEY (document_id, block_id),
    FOREIGN KEY (document_id) REFERENCES documents(document_id)
);`
)

// Index DDL for common queries.
const (
	idxColumnsKind    = `CREATE INDEX idx_columns_kind ON columns(kind);`
	idxRowsTable      = `CREATE INDEX idx_rows_table ON table_rows(table_id, variant_id, ordinal);`
	idxCellsColumn    = `CREATE INDEX idx_cells_column ON cells(table_id, column_id);`
	idxCellsText      = `CREATE INDEX idx_cells_text ON cells(text_value);`
	idxBlocksDocument = `CREATE INDEX idx_blocks_document ON blocks(document_id, ordinal);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createFolders,
	createTables,
	createColumns,
	createVariants,
	createRows,
	createCells,
	createDocuments,
	createBlocks,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxColumnsKind,
	idxRowsTable,
	idxCellsColumn,
	idxCellsText,
	idxBlocksDocument,
}
