package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraph text is flattened in document
// order; a leading Heading1 paragraph becomes the title.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (Extracted, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "underwriter-docx-*.docx")
	if err != nil {
		return Extracted{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return Extracted{}, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return Extracted{}, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return Extracted{}, fmt.Errorf("parse docx: %w", err)
	}

	title := titleFromFilename(filename)
	sawTitle := false
	var paragraphs []string

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if !sawTitle && docxHeadingLevel(para) == 1 {
			title = text
			sawTitle = true
			continue
		}
		paragraphs = append(paragraphs, text)
	}

	return Extracted{
		Title: title,
		Text:  joinParagraphs(paragraphs),
	}, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level := 1; level <= 6; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
