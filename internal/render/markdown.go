// Package render writes document body elements as plain text and Markdown
// pipe tables.
package render

import (
	"io"
	"strings"

	"github.com/dgallion1/docmd/internal/doctree"
)

// Stats counts what a Writer has emitted.
type Stats struct {
	Paragraphs  int // Non-empty paragraphs written
	Tables      int // Tables visited, including zero-row tables
	EmptyTables int // Tables with no rows
	RaggedRows  int // Body rows whose cell count differs from the header
}

// Writer renders elements to an underlying io.Writer, one element at a time.
// The first write error is kept and returned by every later call.
type Writer struct {
	w     io.Writer
	err   error
	stats Stats
}

func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Document renders every body element in order.
func (rw *Writer) Document(doc *doctree.Document) error {
	for _, e := range doc.Body {
		if err := rw.Element(e); err != nil {
			return err
		}
	}
	return rw.err
}

// Element renders a single body element. Elements other than paragraphs
// and tables produce no output.
func (rw *Writer) Element(e doctree.Element) error {
	switch el := e.(type) {
	case *doctree.Paragraph:
		rw.paragraph(el)
	case *doctree.Table:
		rw.table(el)
	}
	return rw.err
}

func (rw *Writer) Stats() Stats { return rw.stats }

func (rw *Writer) paragraph(p *doctree.Paragraph) {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return
	}
	rw.write(text + "\n\n")
	if rw.err == nil {
		rw.stats.Paragraphs++
	}
}

func (rw *Writer) table(t *doctree.Table) {
	rw.stats.Tables++
	if len(t.Rows) == 0 {
		rw.stats.EmptyTables++
		rw.write("\n")
		return
	}

	var sb strings.Builder
	header := cells(t.Rows[0])
	sb.WriteString(Row(header))
	sb.WriteByte('\n')
	sb.WriteString(Separator(len(header)))
	sb.WriteByte('\n')
	for _, r := range t.Rows[1:] {
		if len(r) != len(header) {
			rw.stats.RaggedRows++
		}
		sb.WriteString(Row(cells(r)))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	rw.write(sb.String())
}

func (rw *Writer) write(s string) {
	if rw.err != nil {
		return
	}
	_, rw.err = io.WriteString(rw.w, s)
}

// Cell normalizes a cell's text to a single trimmed line.
func Cell(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
}

func cells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = Cell(c)
	}
	return out
}

// Row formats cells as a pipe-delimited table line, without a newline.
func Row(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

// Separator returns the header separator line for n columns.
func Separator(n int) string {
	seps := make([]string, n)
	for i := range seps {
		seps[i] = "---"
	}
	return Row(seps)
}
