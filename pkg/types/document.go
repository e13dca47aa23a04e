package types

// BlockType is the presentation of a document block.
type BlockType string

// Block types.
const (
	BlockParagraph BlockType = "Paragraph"
	BlockHeading1  BlockType = "Heading1"
	BlockHeading2  BlockType = "Heading2"
	BlockHeading3  BlockType = "Heading3"
	BlockBullet    BlockType = "BulletList"
	BlockNumbered  BlockType = "NumberedList"
	BlockChecklist BlockType = "Checklist"
	BlockCode      BlockType = "Code"
	BlockQuote     BlockType = "Quote"
	BlockDivider   BlockType = "Divider"
	BlockTable     BlockType = "Table"
	BlockFormula   BlockType = "Formula"
)

var validBlockTypes = map[BlockType]bool{
	BlockParagraph: true,
	BlockHeading1:  true,
	BlockHeading2:  true,
	BlockHeading3:  true,
	BlockBullet:    true,
	BlockNumbered:  true,
	BlockChecklist: true,
	BlockCode:      true,
	BlockQuote:     true,
	BlockDivider:   true,
	BlockTable:     true,
	BlockFormula:   true,
}

// ParseBlockType returns the block type named by s, defaulting to
// BlockParagraph.
func ParseBlockType(s string) BlockType {
	if validBlockTypes[BlockType(s)] {
		return BlockType(s)
	}
	return BlockParagraph
}

// SpanStyle is a bitmask of inline text styles.
type SpanStyle uint32

// Inline styles.
const (
	StyleBold SpanStyle = 1 << iota
	StyleItalic
	StyleUnderline
	StyleStrikethrough
	StyleCode
	StyleHighlight
)

// Span styles a run of a block's text. Start and Length count runes.
type Span struct {
	Start  int
	Length int
	Style  SpanStyle
}

// RichText is plain text plus styled spans.
type RichText struct {
	Text  string
	Spans []Span
}

// EmbeddedTable places a table view inside a block.
type EmbeddedTable struct {
	TableID   string
	VariantID int
	ViewID    string
	Width     float64
	Height    float64
}

// Block is one paragraph-level element of a document.
type Block struct {
	ID string
	// Order is a fractional index; blocks sort by ordinal comparison of Order.
	Order    string
	Type     BlockType
	Indent   int
	Checked  bool
	Language string
	Table    *EmbeddedTable
	// Variables overrides table variable expressions for an embedded table,
	// keyed by variable id.
	Variables map[string]string
	Text      RichText
}

// Document is a rich-text page of a project.
type Document struct {
	ID       string
	Title    string
	FolderID string
	FileName string
	Blocks   []Block
}
