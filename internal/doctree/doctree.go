package doctree

// Kind tags a body element.
type Kind int

const (
	KindOther Kind = iota
	KindParagraph
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	}
	return "other"
}

// Document is a parsed word-processing document.
type Document struct {
	Title string    // From filename
	Body  []Element // Body children in document order
}

// Element is a direct child of the document body.
type Element interface {
	Kind() Kind
}

// Paragraph holds the raw text of a paragraph (untrimmed).
type Paragraph struct {
	Text string
}

func (*Paragraph) Kind() Kind { return KindParagraph }

// Table holds cell texts row by row. Rows[0] is the header row.
// Rows may have differing cell counts.
type Table struct {
	Rows [][]string
}

func (*Table) Kind() Kind { return KindTable }

// Other is any body child that is neither a paragraph nor a table.
type Other struct {
	Name string // e.g. "sectPr"
}

func (*Other) Kind() Kind { return KindOther }

// Count returns the number of body elements of kind k.
func (d *Document) Count(k Kind) int {
	n := 0
	for _, e := range d.Body {
		if e.Kind() == k {
			n++
		}
	}
	return n
}
