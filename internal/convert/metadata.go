package convert

import (
	"strconv"
	"strings"

	"redline/internal/domain/models/doc"
)

// MetadataToState builds the in-memory block tree from the persisted flat
// block-metadata list. Legacy type names normalize to the canonical union
// without content loss; content that cannot be parsed into runs recovers as
// a single unformatted run of the stripped text. Block ids are preserved so
// comments and suggestions keep correlating across the conversion.
func MetadataToState(id, title string, metadata []doc.BlockMetadata) *doc.State {
	state := &doc.State{
		ID:     id,
		Title:  title,
		Blocks: make([]doc.Block, 0, len(metadata)),
	}
	for i, m := range metadata {
		state.Blocks = append(state.Blocks, metadataToBlock(m, i))
	}
	return state
}

func metadataToBlock(m doc.BlockMetadata, order int) doc.Block {
	kind, level := normalizeType(m)
	base := baseFor(m, order)

	switch kind {
	case doc.BlockHeading:
		return &doc.Heading{BlockBase: base, Level: clampLevel(level), Text: contentRuns(m.Content)}
	case doc.BlockList:
		return &doc.List{BlockBase: base, Style: listStyle(m), Items: metadataItems(m)}
	case doc.BlockTable:
		return &doc.Table{BlockBase: base, Columns: m.Columns, Rows: m.Rows}
	case doc.BlockDivider:
		return &doc.Divider{BlockBase: base}
	case doc.BlockNote:
		return &doc.Note{BlockBase: base, Text: contentRuns(m.Content)}
	case doc.BlockImage:
		img := &doc.Image{BlockBase: base, Src: m.Src, Description: m.Description}
		if img.Description == "" && !m.Content.Structured {
			img.Description = m.Content.Raw
		}
		return img
	case doc.BlockPreformatted:
		return &doc.Preformatted{BlockBase: base, Text: rawText(m.Content), Language: m.Language}
	default:
		return &doc.Paragraph{BlockBase: base, Text: contentRuns(m.Content)}
	}
}

func baseFor(m doc.BlockMetadata, order int) doc.BlockBase {
	id := m.ID
	if id == "" {
		id = doc.NewID("b")
	}
	return doc.BlockBase{
		ID:         id,
		SectionKey: m.SectionKey,
		Order:      order,
		Meta: &doc.Provenance{
			Page:      m.Page,
			BlockNum:  m.BlockNum,
			StartLine: m.StartLine,
			EndLine:   m.EndLine,
		},
	}
}

// normalizeType maps persisted and legacy type names onto the canonical
// union. "heading3", "h2" and friends carry their level in the name.
func normalizeType(m doc.BlockMetadata) (doc.BlockType, int) {
	name := strings.ToLower(strings.TrimSpace(m.Type))
	level := m.Level

	switch name {
	case "heading", "title":
		return doc.BlockHeading, level
	case "paragraph", "text", "":
		return doc.BlockParagraph, 0
	case "list", "bulleted_list", "bullet_list", "unordered_list",
		"numbered_list", "ordered_list":
		return doc.BlockList, 0
	case "table":
		return doc.BlockTable, 0
	case "divider", "hr", "horizontal_rule", "rule":
		return doc.BlockDivider, 0
	case "note", "quote", "blockquote", "callout":
		return doc.BlockNote, 0
	case "image", "figure":
		return doc.BlockImage, 0
	case "code", "code_block", "preformatted", "pre":
		return doc.BlockPreformatted, 0
	}

	// headingN / hN legacy forms.
	for _, prefix := range []string{"heading", "h"} {
		if n, ok := strings.CutPrefix(name, prefix); ok {
			if lv, err := strconv.Atoi(n); err == nil {
				return doc.BlockHeading, lv
			}
		}
	}

	// Unknown types keep their content as a paragraph.
	return doc.BlockParagraph, 0
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func listStyle(m doc.BlockMetadata) doc.ListStyle {
	name := strings.ToLower(m.Type)
	if m.ListType == "number" || m.ListType == "numbered" ||
		strings.HasPrefix(name, "numbered") || strings.HasPrefix(name, "ordered") {
		return doc.ListNumber
	}
	return doc.ListBullet
}

func metadataItems(m doc.BlockMetadata) []doc.ListItem {
	items := make([]doc.ListItem, 0, len(m.Items))
	for i, it := range m.Items {
		items = append(items, metadataItem(m.ID, i, it))
	}
	if len(items) == 0 && rawText(m.Content) != "" {
		// Legacy single-string list content: one item per line.
		for i, line := range strings.Split(rawText(m.Content), "\n") {
			items = append(items, doc.ListItem{
				ID:   m.ID + "_item_" + strconv.Itoa(i),
				Text: ParseInlineHTML(line),
			})
		}
	}
	return items
}

func metadataItem(blockID string, idx int, it doc.MetadataItem) doc.ListItem {
	item := doc.ListItem{
		ID:   blockID + "_item_" + strconv.Itoa(idx),
		Text: ParseInlineHTML(it.Text),
	}
	for j, child := range it.Children {
		item.Children = append(item.Children, metadataItem(item.ID, j, child))
	}
	return item
}

// contentRuns converts persisted content into a run sequence. Empty content
// produces a single empty run, never an empty slice.
func contentRuns(c doc.BlockContent) []doc.TextRun {
	if c.Structured {
		runs := make([]doc.TextRun, 0, len(c.Segments))
		for _, seg := range c.Segments {
			runs = append(runs, doc.TextRun{
				Text:      seg.Text,
				Bold:      seg.Bold,
				Italic:    seg.Italic,
				Underline: seg.Underline,
				Code:      seg.Code,
			})
		}
		return doc.MergeRuns(runs)
	}
	if c.Raw == "" {
		return []doc.TextRun{{}}
	}
	if strings.ContainsRune(c.Raw, '<') {
		return ParseInlineHTML(c.Raw)
	}
	return []doc.TextRun{{Text: c.Raw}}
}

func rawText(c doc.BlockContent) string {
	if c.Structured {
		var b strings.Builder
		for _, seg := range c.Segments {
			b.WriteString(seg.Text)
		}
		return b.String()
	}
	return c.Raw
}

// StateToMetadata is the inverse conversion. Plain runs persist as plain
// strings; formatted runs persist as a canonical HTML-bearing string, so a
// metadata round-trip is lossless modulo tag canonicalization. List and
// table structure persists in their dedicated fields.
func StateToMetadata(state *doc.State) []doc.BlockMetadata {
	out := make([]doc.BlockMetadata, 0, len(state.Blocks))
	for i, b := range state.Blocks {
		out = append(out, blockToMetadata(b, i))
	}
	return out
}

func blockToMetadata(b doc.Block, order int) doc.BlockMetadata {
	m := doc.BlockMetadata{
		ID:         b.BlockID(),
		Type:       string(b.Type()),
		SectionKey: b.Section(),
		BlockNum:   order,
	}
	if p := b.Origin(); p != nil {
		m.Page = p.Page
		m.BlockNum = p.BlockNum
		m.StartLine = p.StartLine
		m.EndLine = p.EndLine
	}

	switch v := b.(type) {
	case *doc.Heading:
		m.Level = v.Level
		m.Content = runsContent(v.Text)
	case *doc.Paragraph:
		m.Content = runsContent(v.Text)
	case *doc.Note:
		m.Content = runsContent(v.Text)
	case *doc.List:
		m.ListType = string(v.Style)
		m.Items = itemsToMetadata(v.Items)
		m.Content = doc.StringContent("")
	case *doc.Table:
		m.Columns = v.Columns
		m.Rows = v.Rows
		m.Content = doc.StringContent("")
	case *doc.Divider:
		m.Content = doc.StringContent("")
	case *doc.Image:
		m.Src = v.Src
		m.Description = v.Description
		m.Content = doc.StringContent("")
	case *doc.Preformatted:
		m.Language = v.Language
		m.Content = doc.StringContent(v.Text)
	}
	return m
}

func runsContent(runs []doc.TextRun) doc.BlockContent {
	if Plain(runs) {
		return doc.StringContent(doc.RunsText(runs))
	}
	return doc.StringContent(RenderInlineHTML(runs))
}

func itemsToMetadata(items []doc.ListItem) []doc.MetadataItem {
	out := make([]doc.MetadataItem, 0, len(items))
	for _, it := range items {
		m := doc.MetadataItem{Text: itemText(it)}
		m.Children = itemsToMetadata(it.Children)
		out = append(out, m)
	}
	return out
}

func itemText(it doc.ListItem) string {
	if Plain(it.Text) {
		return doc.RunsText(it.Text)
	}
	return RenderInlineHTML(it.Text)
}
