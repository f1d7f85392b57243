package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings and
// block text are flattened into paragraphs; the first level-1 heading
// becomes the title.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (Extracted, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Extracted{}, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	title := titleFromFilename(filename)
	sawTitle := false
	var paragraphs []string

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			heading := string(node.Text(src))
			if heading == "" {
				continue
			}
			if node.Level == 1 && !sawTitle {
				title = heading
				sawTitle = true
				continue
			}
			paragraphs = append(paragraphs, heading)
		default:
			if t := extractText(n, src); t != "" {
				paragraphs = append(paragraphs, t)
			}
		}
	}

	return Extracted{
		Title: title,
		Text:  joinParagraphs(paragraphs),
	}, nil
}

// extractText gets the text content of a goldmark AST node. Blocks with
// source lines are taken verbatim; container blocks (lists, quotes)
// recurse instead so text is never emitted twice.
func extractText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := extractText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
