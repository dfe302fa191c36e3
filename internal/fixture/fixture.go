// Package fixture builds small DOCX files for tests using go-docx's writer.
package fixture

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fumiama/go-docx"
)

// Builder accumulates body elements for a generated document.
type Builder struct {
	doc *docx.Docx
}

// New starts an empty document with the default theme.
func New() *Builder {
	return &Builder{doc: docx.New().WithDefaultTheme()}
}

// Paragraph appends a paragraph. An empty string adds a paragraph with no runs.
func (b *Builder) Paragraph(text string) *Builder {
	p := b.doc.AddParagraph()
	if text != "" {
		p.AddText(text)
	}
	return b
}

// Table appends a table. Every row gets len(row) cells; rows need not agree.
func (b *Builder) Table(rows ...[]string) *Builder {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	tbl := b.doc.AddTable(len(rows), cols, 0, nil)
	for i, r := range rows {
		tr := tbl.TableRows[i]
		tr.TableCells = tr.TableCells[:len(r)]
		for j, text := range r {
			tr.TableCells[j].AddParagraph().AddText(text)
		}
	}
	return b
}

// A4 appends section properties, a body child that is neither paragraph nor table.
func (b *Builder) A4() *Builder {
	b.doc.WithA4Page()
	return b
}

// Bytes serializes the document.
func (b *Builder) Bytes(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := b.doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

// Write serializes the document to dir/name and returns the path.
func (b *Builder) Write(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(t), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
