package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/docmd/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

// ParseFile opens and parses the document at path.
func (p *DOCXParser) ParseFile(path string) (*doctree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return p.Parse(f, info.Size(), path)
}

func (p *DOCXParser) Parse(r io.ReaderAt, size int64, filename string) (*doctree.Document, error) {
	doc, err := docx.Parse(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &doctree.Document{
		Title: titleFromFilename(filename),
		Body:  make([]doctree.Element, 0, len(doc.Document.Body.Items)),
	}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			out.Body = append(out.Body, &doctree.Paragraph{Text: docxParagraphText(it)})
		case *docx.Table:
			out.Body = append(out.Body, &doctree.Table{Rows: docxTableRows(it)})
		case *docx.SectPr:
			out.Body = append(out.Body, &doctree.Other{Name: "sectPr"})
		default:
			out.Body = append(out.Body, &doctree.Other{Name: fmt.Sprintf("%T", item)})
		}
	}
	return out, nil
}

// docxParagraphText concatenates the paragraph's run text. Tabs become '\t'
// and line breaks become '\n'. The result is not trimmed.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			writeRunText(&buf, &c.Run)
		}
	}
	return buf.String()
}

func writeRunText(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			// Page and column breaks carry no text.
			if t.Type == "" || t.Type == "textWrapping" {
				buf.WriteByte('\n')
			}
		}
	}
}

// docxTableRows returns the cell texts of each row, one entry per grid
// column: a cell spanning n columns is repeated n times, and a vertically
// merged continuation cell takes the text of the cell above it.
func docxTableRows(tbl *docx.Table) [][]string {
	rows := make([][]string, 0, len(tbl.TableRows))
	var prev []string
	for _, tr := range tbl.TableRows {
		if tr == nil {
			continue
		}
		var row []string
		for _, tc := range tr.TableCells {
			if tc == nil {
				continue
			}
			span := 1
			var continued bool
			if pr := tc.TableCellProperties; pr != nil {
				if pr.GridSpan != nil && pr.GridSpan.Val > 1 {
					span = pr.GridSpan.Val
				}
				continued = pr.VMerge != nil && pr.VMerge.Val != "restart"
			}
			text := docxCellText(tc)
			if continued && len(row) < len(prev) {
				text = prev[len(row)]
			}
			for i := 0; i < span; i++ {
				row = append(row, text)
			}
		}
		rows = append(rows, row)
		prev = row
	}
	return rows
}

// docxCellText joins the cell's own paragraphs with '\n'. Nested tables
// are ignored.
func docxCellText(tc *docx.WTableCell) string {
	parts := make([]string, 0, len(tc.Paragraphs))
	for _, p := range tc.Paragraphs {
		parts = append(parts, docxParagraphText(p))
	}
	return strings.Join(parts, "\n")
}
