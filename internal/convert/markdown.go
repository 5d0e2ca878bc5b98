package convert

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"redline/internal/domain/models/doc"
)

// StateToMarkdown renders the block tree to the markdown persisted alongside
// block metadata. Bold and italic render as markdown marks; underline keeps
// its inline tag since markdown has no native form for it.
func StateToMarkdown(state *doc.State) string {
	var b strings.Builder
	for _, block := range state.Blocks {
		renderBlock(&b, block)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderBlock(b *strings.Builder, block doc.Block) {
	switch v := block.(type) {
	case *doc.Heading:
		b.WriteString(strings.Repeat("#", v.Level))
		b.WriteByte(' ')
		b.WriteString(runsToMarkdown(v.Text))
		b.WriteString("\n\n")
	case *doc.Paragraph:
		b.WriteString(runsToMarkdown(v.Text))
		b.WriteString("\n\n")
	case *doc.Note:
		for _, line := range strings.Split(runsToMarkdown(v.Text), "\n") {
			b.WriteString("> ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	case *doc.List:
		renderItems(b, v.Style, v.Items, 0)
		b.WriteByte('\n')
	case *doc.Table:
		renderTable(b, v)
	case *doc.Divider:
		b.WriteString("---\n\n")
	case *doc.Image:
		fmt.Fprintf(b, "![%s](%s)\n\n", v.Description, v.Src)
	case *doc.Preformatted:
		fmt.Fprintf(b, "```%s\n%s\n```\n\n", v.Language, strings.TrimRight(v.Text, "\n"))
	}
}

func renderItems(b *strings.Builder, style doc.ListStyle, items []doc.ListItem, depth int) {
	for i, item := range items {
		b.WriteString(strings.Repeat("  ", depth))
		if style == doc.ListNumber {
			fmt.Fprintf(b, "%d. ", i+1)
		} else {
			b.WriteString("- ")
		}
		b.WriteString(runsToMarkdown(item.Text))
		b.WriteByte('\n')
		renderItems(b, style, item.Children, depth+1)
	}
}

func renderTable(b *strings.Builder, t *doc.Table) {
	b.WriteString("| " + strings.Join(t.Columns, " | ") + " |\n")
	sep := make([]string, len(t.Columns))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range t.Rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteByte('\n')
}

func runsToMarkdown(runs []doc.TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		text := r.Text
		if r.Code {
			text = "`" + text + "`"
		}
		if r.Bold {
			text = "**" + text + "**"
		}
		if r.Italic {
			text = "*" + text + "*"
		}
		if r.Underline {
			text = "<u>" + text + "</u>"
		}
		b.WriteString(text)
	}
	return b.String()
}

var mdParser = goldmark.New(goldmark.WithExtensions(extension.Table))

// MarkdownToState parses markdown into a block tree for documents that
// arrive without block metadata. Generated blocks get fresh stable ids.
func MarkdownToState(id, title, markdown string) (*doc.State, error) {
	source := []byte(markdown)
	root := mdParser.Parser().Parse(text.NewReader(source))

	state := &doc.State{ID: id, Title: title}
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		block, err := nodeToBlock(node, source)
		if err != nil {
			return nil, err
		}
		if block != nil {
			state.Blocks = append(state.Blocks, block)
		}
	}
	for i, b := range state.Blocks {
		if s, ok := b.(interface{ SetOrder(int) }); ok {
			s.SetOrder(i)
		}
	}
	return state, nil
}

func nodeToBlock(node ast.Node, source []byte) (doc.Block, error) {
	base := doc.BlockBase{ID: doc.NewID("b")}

	switch n := node.(type) {
	case *ast.Heading:
		return &doc.Heading{BlockBase: base, Level: n.Level, Text: inlineRuns(n, source)}, nil
	case *ast.Paragraph:
		// A paragraph holding a single image becomes an image block.
		if img, ok := soleImage(n); ok {
			return &doc.Image{
				BlockBase:   base,
				Src:         string(img.Destination),
				Description: string(nodeText(img, source)),
			}, nil
		}
		return &doc.Paragraph{BlockBase: base, Text: inlineRuns(n, source)}, nil
	case *ast.Blockquote:
		return &doc.Note{BlockBase: base, Text: blockquoteRuns(n, source)}, nil
	case *ast.List:
		style := doc.ListBullet
		if n.IsOrdered() {
			style = doc.ListNumber
		}
		return &doc.List{BlockBase: base, Style: style, Items: listItems(base.ID, n, source)}, nil
	case *ast.ThematicBreak:
		return &doc.Divider{BlockBase: base}, nil
	case *ast.FencedCodeBlock:
		return &doc.Preformatted{
			BlockBase: base,
			Text:      codeLines(n, source),
			Language:  string(n.Language(source)),
		}, nil
	case *ast.CodeBlock:
		return &doc.Preformatted{BlockBase: base, Text: codeLines(n, source)}, nil
	case *extast.Table:
		return tableBlock(base, n, source), nil
	case *ast.HTMLBlock:
		// Raw HTML degrades to a paragraph of stripped text.
		stripped := StripTags(strings.TrimSpace(string(nodeLines(n, source))))
		if stripped == "" {
			return nil, nil
		}
		return &doc.Paragraph{BlockBase: base, Text: []doc.TextRun{{Text: stripped}}}, nil
	default:
		text := strings.TrimSpace(string(nodeText(node, source)))
		if text == "" {
			return nil, nil
		}
		return &doc.Paragraph{BlockBase: base, Text: []doc.TextRun{{Text: text}}}, nil
	}
}

// inlineRuns walks a node's inline children, mapping emphasis and code spans
// onto run formatting.
func inlineRuns(node ast.Node, source []byte) []doc.TextRun {
	var runs []doc.TextRun
	collectRuns(node, source, doc.TextRun{}, &runs)
	if len(runs) == 0 {
		return []doc.TextRun{{}}
	}
	return doc.MergeRuns(runs)
}

func collectRuns(node ast.Node, source []byte, format doc.TextRun, out *[]doc.TextRun) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			r := format
			r.Text = string(c.Segment.Value(source))
			if r.Text != "" {
				*out = append(*out, r)
			}
			if c.SoftLineBreak() || c.HardLineBreak() {
				sp := format
				sp.Text = " "
				*out = append(*out, sp)
			}
		case *ast.Emphasis:
			f := format
			if c.Level >= 2 {
				f.Bold = true
			} else {
				f.Italic = true
			}
			collectRuns(c, source, f, out)
		case *ast.CodeSpan:
			f := format
			f.Code = true
			r := f
			r.Text = string(nodeText(c, source))
			if r.Text != "" {
				*out = append(*out, r)
			}
		case *ast.Link:
			collectRuns(c, source, format, out)
		case *ast.AutoLink:
			r := format
			r.Text = string(c.URL(source))
			*out = append(*out, r)
		case *ast.RawHTML:
			// Inline tags like <u> arrive as raw HTML around text nodes;
			// the tags themselves carry no text.
		default:
			collectRuns(c, source, format, out)
		}
	}
}

func blockquoteRuns(n *ast.Blockquote, source []byte) []doc.TextRun {
	var runs []doc.TextRun
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if len(runs) > 0 {
			runs = append(runs, doc.TextRun{Text: "\n"})
		}
		runs = append(runs, inlineRuns(child, source)...)
	}
	if len(runs) == 0 {
		return []doc.TextRun{{}}
	}
	return doc.MergeRuns(runs)
}

func listItems(blockID string, list *ast.List, source []byte) []doc.ListItem {
	var items []doc.ListItem
	idx := 0
	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		li, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		item := doc.ListItem{ID: fmt.Sprintf("%s_item_%d", blockID, idx)}
		for sub := li.FirstChild(); sub != nil; sub = sub.NextSibling() {
			switch s := sub.(type) {
			case *ast.List:
				item.Children = append(item.Children, listItems(item.ID, s, source)...)
			default:
				item.Text = append(item.Text, inlineRuns(s, source)...)
			}
		}
		item.Text = doc.MergeRuns(item.Text)
		items = append(items, item)
		idx++
	}
	return items
}

func tableBlock(base doc.BlockBase, table *extast.Table, source []byte) *doc.Table {
	t := &doc.Table{BlockBase: base}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, string(nodeText(cell, source)))
		}
		if _, ok := row.(*extast.TableHeader); ok {
			t.Columns = cells
		} else {
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

func soleImage(p *ast.Paragraph) (*ast.Image, bool) {
	if p.ChildCount() != 1 {
		return nil, false
	}
	img, ok := p.FirstChild().(*ast.Image)
	return img, ok
}

func codeLines(n ast.Node, source []byte) string {
	return string(nodeLines(n, source))
}

func nodeLines(n ast.Node, source []byte) []byte {
	var b []byte
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b = append(b, seg.Value(source)...)
	}
	return b
}

func nodeText(n ast.Node, source []byte) []byte {
	var b []byte
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := node.(*ast.Text); ok {
			b = append(b, t.Segment.Value(source)...)
		}
		return ast.WalkContinue, nil
	})
	return b
}
