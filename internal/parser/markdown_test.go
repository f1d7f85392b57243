package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_TitleAndBody(t *testing.T) {
	input := `# My Essay

Opening thoughts.

## A Section

Section prose here.
`
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(input), "essay.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Title != "My Essay" {
		t.Errorf("expected title from h1, got %q", got.Title)
	}
	if !strings.Contains(got.Text, "Opening thoughts.") {
		t.Errorf("expected body to contain opening, got %q", got.Text)
	}
	if !strings.Contains(got.Text, "A Section") {
		t.Errorf("expected body to keep later headings, got %q", got.Text)
	}
	if strings.Count(got.Text, "Section prose here.") != 1 {
		t.Errorf("expected prose to appear exactly once, got %q", got.Text)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader("Just some plain text.\n\nAnother line."), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "plain" {
		t.Errorf("expected filename title, got %q", got.Title)
	}
	if !strings.Contains(got.Text, "Just some plain text.") {
		t.Errorf("expected text kept, got %q", got.Text)
	}
}

func TestMarkdownParser_ListItems(t *testing.T) {
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader("- first point\n- second point\n"), "list.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got.Text, "first point") || !strings.Contains(got.Text, "second point") {
		t.Errorf("expected list items extracted, got %q", got.Text)
	}
}

func TestHTMLParser_BodyProse(t *testing.T) {
	input := `<html><head><title>Harbor Notes</title><style>p{}</style></head>
<body><header>site chrome</header><p>First paragraph.</p><p>Second paragraph.</p>
<script>var x = 1;</script></body></html>`
	p := &HTMLParser{}
	got, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Harbor Notes" {
		t.Errorf("expected title from <title>, got %q", got.Title)
	}
	if !strings.Contains(got.Text, "First paragraph.") || !strings.Contains(got.Text, "Second paragraph.") {
		t.Errorf("expected paragraphs kept, got %q", got.Text)
	}
	if strings.Contains(got.Text, "var x") {
		t.Errorf("expected script dropped, got %q", got.Text)
	}
	if strings.Contains(got.Text, "site chrome") {
		t.Errorf("expected header dropped, got %q", got.Text)
	}
}
