package doc

import (
	"encoding/json"
	"fmt"
)

// BlockType discriminates the Block union.
type BlockType string

const (
	BlockHeading      BlockType = "heading"
	BlockParagraph    BlockType = "paragraph"
	BlockList         BlockType = "list"
	BlockTable        BlockType = "table"
	BlockDivider      BlockType = "divider"
	BlockNote         BlockType = "note"
	BlockImage        BlockType = "image"
	BlockPreformatted BlockType = "preformatted"
)

// Provenance records where a block came from in the source document.
type Provenance struct {
	Page      int `json:"page,omitempty"`
	BlockNum  int `json:"block_num,omitempty"`
	StartLine int `json:"start_line,omitempty"`
	EndLine   int `json:"end_line,omitempty"`
}

// BlockBase carries the fields common to every block variant. The ID is the
// stable key correlating comments and suggestions to blocks across
// conversions and edits.
type BlockBase struct {
	ID         string      `json:"id"`
	SectionKey string      `json:"section_key,omitempty"`
	Order      int         `json:"order,omitempty"`
	Meta       *Provenance `json:"meta,omitempty"`
}

func (b *BlockBase) BlockID() string     { return b.ID }
func (b *BlockBase) Section() string     { return b.SectionKey }
func (b *BlockBase) Origin() *Provenance { return b.Meta }
func (b *BlockBase) SetOrder(n int)      { b.Order = n }

// Block is the tagged union of document block variants. Implementations are
// exhaustively matched by type switches; there is no loosely typed dispatch.
type Block interface {
	BlockID() string
	Type() BlockType
	Section() string
	Origin() *Provenance
}

// TextBlock is a block variant whose content is a run sequence. Heading,
// Paragraph and Note implement it; lists expose runs per item instead.
type TextBlock interface {
	Block
	Runs() []TextRun
	SetRuns([]TextRun)
}

type Heading struct {
	BlockBase
	Level int       `json:"level"`
	Text  []TextRun `json:"text"`
}

type Paragraph struct {
	BlockBase
	Text []TextRun `json:"text"`
}

type Note struct {
	BlockBase
	Text []TextRun `json:"text"`
}

// ListItem nests recursively.
type ListItem struct {
	ID       string     `json:"id"`
	Text     []TextRun  `json:"text"`
	Children []ListItem `json:"children,omitempty"`
}

type ListStyle string

const (
	ListBullet ListStyle = "bullet"
	ListNumber ListStyle = "number"
)

type List struct {
	BlockBase
	Style ListStyle  `json:"style"`
	Items []ListItem `json:"items"`
}

type Table struct {
	BlockBase
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type Divider struct {
	BlockBase
}

type Image struct {
	BlockBase
	Src         string `json:"src"`
	Description string `json:"description,omitempty"`
}

type Preformatted struct {
	BlockBase
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

func (*Heading) Type() BlockType      { return BlockHeading }
func (*Paragraph) Type() BlockType    { return BlockParagraph }
func (*Note) Type() BlockType         { return BlockNote }
func (*List) Type() BlockType         { return BlockList }
func (*Table) Type() BlockType        { return BlockTable }
func (*Divider) Type() BlockType      { return BlockDivider }
func (*Image) Type() BlockType        { return BlockImage }
func (*Preformatted) Type() BlockType { return BlockPreformatted }

func (h *Heading) Runs() []TextRun       { return h.Text }
func (h *Heading) SetRuns(rs []TextRun)  { h.Text = rs }
func (p *Paragraph) Runs() []TextRun     { return p.Text }
func (p *Paragraph) SetRuns(rs []TextRun) { p.Text = rs }
func (n *Note) Runs() []TextRun          { return n.Text }
func (n *Note) SetRuns(rs []TextRun)     { n.Text = rs }

// RunSlots returns addressable run slices of b in document order: one slot
// for heading/paragraph/note, one per item (depth-first) for lists, none for
// the remaining variants. Selection offsets and highlight ranges are rune
// positions into the concatenation of these slots.
func RunSlots(b Block) []*[]TextRun {
	switch v := b.(type) {
	case *Heading:
		return []*[]TextRun{&v.Text}
	case *Paragraph:
		return []*[]TextRun{&v.Text}
	case *Note:
		return []*[]TextRun{&v.Text}
	case *List:
		var slots []*[]TextRun
		for i := range v.Items {
			slots = append(slots, itemSlots(&v.Items[i])...)
		}
		return slots
	default:
		return nil
	}
}

func itemSlots(item *ListItem) []*[]TextRun {
	slots := []*[]TextRun{&item.Text}
	for i := range item.Children {
		slots = append(slots, itemSlots(&item.Children[i])...)
	}
	return slots
}

// BlockText returns the concatenated text of all text-bearing leaves of b.
func BlockText(b Block) string {
	if p, ok := b.(*Preformatted); ok {
		return p.Text
	}
	text := ""
	for _, slot := range RunSlots(b) {
		text += RunsText(*slot)
	}
	return text
}

// envelope is the wire form of a block: the variant fields plus a "type" tag.
type envelope struct {
	Type BlockType `json:"type"`
}

// MarshalBlock encodes a block with its type tag injected, so the wire form
// round-trips through UnmarshalBlock.
func MarshalBlock(b Block) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(b.Type())
	m["type"] = tag
	return json.Marshal(m)
}

// UnmarshalBlock decodes a block envelope by its type tag.
func UnmarshalBlock(data []byte) (Block, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("block envelope: %w", err)
	}

	var b Block
	switch env.Type {
	case BlockHeading:
		b = &Heading{}
	case BlockParagraph:
		b = &Paragraph{}
	case BlockList:
		b = &List{}
	case BlockTable:
		b = &Table{}
	case BlockDivider:
		b = &Divider{}
	case BlockNote:
		b = &Note{}
	case BlockImage:
		b = &Image{}
	case BlockPreformatted:
		b = &Preformatted{}
	default:
		return nil, fmt.Errorf("unknown block type %q", env.Type)
	}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("decode %s block: %w", env.Type, err)
	}
	return b, nil
}
