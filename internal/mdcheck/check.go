// Package mdcheck re-reads rendered Markdown to confirm its block structure.
package mdcheck

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Summary counts top-level blocks as a GFM reader sees them.
type Summary struct {
	Paragraphs int
	Headings   int
	Tables     int
	TableRows  int // Body rows across all tables, header excluded
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Inspect parses src and counts its top-level blocks.
func Inspect(src []byte) Summary {
	doc := md.Parser().Parse(text.NewReader(src))

	var s Summary
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Paragraph:
			s.Paragraphs++
		case *ast.Heading:
			s.Headings++
		case *east.Table:
			s.Tables++
			for r := node.FirstChild(); r != nil; r = r.NextSibling() {
				if _, ok := r.(*east.TableRow); ok {
					s.TableRows++
				}
			}
		}
	}
	return s
}
