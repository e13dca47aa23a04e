// This file implements document metadata and block persistence.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mesh-intelligence/tabledb/internal/fracindex"
	"github.com/mesh-intelligence/tabledb/internal/fsutil"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

const (
	metaSuffix   = ".meta.json"
	blocksSuffix = ".blocks.jsonl"
)

// loadDocument fills d from its meta and blocks files. Both files are
// optional; a document whose files are missing loads empty.
func (c *codec) loadDocument(docsDir string, d *types.Document) error {
	metaPath := filepath.Join(docsDir, d.FileName+metaSuffix)
	data, err := os.ReadFile(metaPath)
	switch {
	case err == nil:
		var meta documentMetaJSON
		if err := json.Unmarshal(data, &meta); err != nil {
			c.log.WithField("file", metaPath).WithError(err).Debug("ignoring malformed document meta")
		} else if meta.Title != "" {
			d.Title = meta.Title
		}
	case os.IsNotExist(err):
		c.log.WithField("file", metaPath).Debug("document meta missing")
	default:
		return fmt.Errorf("reading %s: %w", metaPath, err)
	}

	blocksPath := filepath.Join(docsDir, d.FileName+blocksSuffix)
	records, skipped, err := fsutil.ReadJSONLOptional(blocksPath)
	if err != nil {
		return err
	}
	c.logSkipped(blocksPath, skipped)

	d.Blocks = nil
	for _, rec := range records {
		var bj blockJSON
		if err := json.Unmarshal(rec, &bj); err != nil {
			c.log.WithField("file", blocksPath).WithError(err).Debug("skipping malformed block")
			continue
		}
		d.Blocks = append(d.Blocks, decodeBlock(bj))
	}

	// Stored order keys are not trusted; file order is.
	for i, key := range fracindex.Sequence(len(d.Blocks)) {
		d.Blocks[i].Order = key
	}
	return nil
}

func decodeBlock(bj blockJSON) types.Block {
	b := types.Block{
		ID:        bj.ID,
		Order:     bj.Order,
		Type:      types.ParseBlockType(bj.Type),
		Indent:    bj.Indent,
		Checked:   bj.Checked,
		Language:  bj.Language,
		Variables: bj.Variables,
		Text:      types.RichText{Text: bj.Text},
	}
	if b.Indent < 0 {
		b.Indent = 0
	}
	if bj.Table != nil {
		b.Table = &types.EmbeddedTable{
			TableID:   bj.Table.TableID,
			VariantID: bj.Table.VariantID,
			ViewID:    bj.Table.ViewID,
			Width:     bj.Table.Width,
			Height:    bj.Table.Height,
		}
	}
	for _, s := range bj.Spans {
		b.Text.Spans = append(b.Text.Spans, types.Span{Start: s.Start, Length: s.Length, Style: types.SpanStyle(s.Style)})
	}
	return b
}

func encodeBlock(b *types.Block) blockJSON {
	bj := blockJSON{
		ID:        b.ID,
		Order:     b.Order,
		Type:      string(b.Type),
		Indent:    b.Indent,
		Checked:   b.Checked,
		Language:  b.Language,
		Variables: b.Variables,
		Text:      b.Text.Text,
	}
	if bj.Type == "" {
		bj.Type = string(types.BlockParagraph)
	}
	if len(bj.Variables) == 0 {
		bj.Variables = nil
	}
	if b.Table != nil {
		bj.Table = &embeddedTableJSON{
			TableID:   b.Table.TableID,
			VariantID: b.Table.VariantID,
			ViewID:    b.Table.ViewID,
			Width:     b.Table.Width,
			Height:    b.Table.Height,
		}
	}
	for _, s := range b.Text.Spans {
		bj.Spans = append(bj.Spans, spanJSON{Start: s.Start, Length: s.Length, Style: uint32(s.Style)})
	}
	return bj
}

// saveDocument writes the meta file and the blocks sorted by order key.
// The document's own block slice is left in its original order.
func saveDocument(docsDir string, d *types.Document) error {
	meta := documentMetaJSON{ID: d.ID, Title: d.Title}
	if err := fsutil.WriteJSON(filepath.Join(docsDir, d.FileName+metaSuffix), meta); err != nil {
		return err
	}

	blocks := make([]*types.Block, len(d.Blocks))
	for i := range d.Blocks {
		blocks[i] = &d.Blocks[i]
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Order < blocks[j].Order })

	records := make([]json.RawMessage, 0, len(blocks))
	for _, b := range blocks {
		data, err := json.Marshal(encodeBlock(b))
		if err != nil {
			return fmt.Errorf("encoding block %s: %w", b.ID, err)
		}
		records = append(records, data)
	}
	return fsutil.WriteJSONL(filepath.Join(docsDir, d.FileName+blocksSuffix), records)
}
