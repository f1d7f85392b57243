package parser

import (
	"strings"
	"testing"
)

func TestTextParser_ParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", got.Title)
	}
	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if got.Text != want {
		t.Errorf("expected text %q, got %q", want, got.Text)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", got.Title)
	}
	if got.Text != "" {
		t.Errorf("expected empty text, got %q", got.Text)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Runs of blank lines should not produce empty paragraphs.
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader("Para one.\n\n\n\nPara two."), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Para one.\n\nPara two." {
		t.Errorf("unexpected text %q", got.Text)
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader("Para one.\n   \nPara two."), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Para one.\n\nPara two." {
		t.Errorf("unexpected text %q", got.Text)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		ok       bool
	}{
		{"essay.txt", true},
		{"essay.md", true},
		{"essay.html", true},
		{"essay.pdf", true},
		{"essay.docx", true},
		{"essay.csv", false},
		{"essay.exe", false},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err == nil) != tt.ok {
			t.Errorf("ForFile(%q): unexpected err=%v", tt.filename, err)
		}
		if IsSupportedExtension(tt.filename) != tt.ok {
			t.Errorf("IsSupportedExtension(%q) != %v", tt.filename, tt.ok)
		}
	}
}
