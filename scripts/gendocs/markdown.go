package main

import (
	"bytes"
	"fmt"
	"strings"
)

// generatedHeader marks files produced by this generator.
const generatedHeader = "<!-- Generated by scripts/gendocs. DO NOT EDIT. -->"

// MarkdownWriter accumulates a markdown document.
type MarkdownWriter struct {
	buf bytes.Buffer
}

// NewMarkdownWriter creates an empty writer.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Frontmatter writes a YAML frontmatter block.
func (w *MarkdownWriter) Frontmatter(title, description string) {
	fmt.Fprintf(&w.buf, "---\ntitle: %s\ndescription: %s\n---\n\n", title, description)
}

// GeneratedMarker writes the do-not-edit marker comment.
func (w *MarkdownWriter) GeneratedMarker() {
	w.buf.WriteString(generatedHeader + "\n\n")
}

// Header writes a header at the given level.
func (w *MarkdownWriter) Header(level int, text string) {
	fmt.Fprintf(&w.buf, "%s %s\n\n", strings.Repeat("#", level), text)
}

// Paragraph writes a paragraph followed by a blank line.
func (w *MarkdownWriter) Paragraph(text string) {
	w.buf.WriteString(strings.TrimSpace(text) + "\n\n")
}

// CodeBlock writes a fenced code block.
func (w *MarkdownWriter) CodeBlock(lang, code string) {
	fmt.Fprintf(&w.buf, "```%s\n%s\n```\n\n", lang, strings.TrimRight(code, "\n"))
}

// BulletList writes a bulleted list.
func (w *MarkdownWriter) BulletList(items []string) {
	for _, item := range items {
		fmt.Fprintf(&w.buf, "- %s\n", item)
	}
	w.buf.WriteByte('\n')
}

// Table writes a table with a header row.
func (w *MarkdownWriter) Table(headers []string, rows [][]string) {
	w.buf.WriteString("| " + strings.Join(headers, " | ") + " |\n")

	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	w.buf.WriteString("| " + strings.Join(seps, " | ") + " |\n")

	for _, row := range rows {
		w.buf.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	w.buf.WriteByte('\n')
}

// Text writes raw markdown verbatim.
func (w *MarkdownWriter) Text(s string) {
	w.buf.WriteString(s)
}

// String returns the document built so far.
func (w *MarkdownWriter) String() string {
	return w.buf.String()
}

// Bytes returns the document built so far.
func (w *MarkdownWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// InlineCode wraps text in backticks.
func InlineCode(s string) string {
	return "`" + s + "`"
}

// cleanDescription flattens a description onto one line and escapes pipes
// so it can sit inside a table cell.
func cleanDescription(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", `\|`)
	return s
}
