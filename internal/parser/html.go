package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML files, keeping body prose and dropping chrome
// (scripts, navigation, headers/footers).
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (Extracted, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Extracted{}, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}

	var paragraphs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "li", "td", "blockquote":
				if t := textContent(n); t != "" {
					paragraphs = append(paragraphs, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	text := joinParagraphs(paragraphs)
	if text == "" {
		// Documents without block markup still carry raw text nodes.
		if body := findBody(doc); body != nil {
			text = textContent(body)
		}
	}

	return Extracted{Title: title, Text: text}, nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
