package spansource

import (
	"bytes"
	"io"
	"strings"

	"github.com/docstruct/docstruct/internal/layout"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownSource handles Markdown files using goldmark. ATX heading levels
// drive the synthetic span styles.
type MarkdownSource struct{}

func (s *MarkdownSource) Load(r io.Reader, filename string) (*layout.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	sd := newSynthDoc(baseName(filename))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			sd.add(string(node.Text(src)), node.Level)
		default:
			sd.add(nodeText(n, src), 0)
		}
	}
	return sd.document(), nil
}

// nodeText gets the text content of a goldmark AST node. Leaf blocks
// carry their raw source lines; container blocks (lists, quotes) only
// have text through their children.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := nodeText(c, src); t != "" {
			buf.WriteString(t)
			buf.WriteByte('\n')
		}
	}
	return strings.TrimSpace(buf.String())
}
